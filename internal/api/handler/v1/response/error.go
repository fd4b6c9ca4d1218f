package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON error envelope every failure renders. No error is
// swallowed silently: internal errors are logged and replaced with a
// generic message, everything else is surfaced as-is.
type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error"`
	// Redirect is the client-visible destination for guard rejections
	// (full event, past event, upgrade prompt, already a member).
	Redirect string `json:"redirect,omitempty"`
}

func (e *Err) Error() string {
	return e.Msg
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Msg:        err.Error(),
	}
}

func ErrMissingSession() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "missing session token",
	}
}

func ErrInvalidSession(err error) *Err {
	zap.L().Info("invalid session token", zap.Error(err))

	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "invalid session token",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        err.Error(),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Msg:        err.Error(),
	}
}

func ErrNotFound(resource, key string, value interface{}) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Msg:        fmt.Sprintf("%v with %v %v is not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Msg:        err.Error(),
	}
}

// ErrGuardRejected carries the redirect destination alongside the
// failure so clients can route to the terminal view.
func ErrGuardRejected(status int, err error, redirect string) *Err {
	return &Err{
		StatusCode: status,
		Msg:        err.Error(),
		Redirect:   redirect,
	}
}

func ErrPaymentFailed(err error) *Err {
	// Gateway messages are shown verbatim; they are written for end
	// users ("Your card was declined.").
	return &Err{
		StatusCode: http.StatusPaymentRequired,
		Msg:        err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		StatusCode: http.StatusInternalServerError,
		Msg:        "something went wrong",
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.JSON(err.StatusCode, err)
}

func AbortWithErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
