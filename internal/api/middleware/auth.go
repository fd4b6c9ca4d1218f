package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/pkg/jwthelper"
)

// ContextKeyUserID is where the authenticator stores the authenticated
// user's ID on the gin context.
const ContextKeyUserID = "userID"

type Authenticator struct {
	signingKey []byte
	cookieName string
}

func NewAuthenticator(signingKey, cookieName string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
		cookieName: cookieName,
	}
}

// VerifySession authenticates the request from the session cookie, with
// a bearer Authorization header as fallback. A missing token is a hard
// 401 before any handler work happens.
func (a *Authenticator) VerifySession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := a.extractToken(ctx)
		if token == "" {
			response.AbortWithErr(ctx, response.ErrMissingSession())

			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, token)
		if err != nil {
			response.AbortWithErr(ctx, response.ErrInvalidSession(err))

			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Next()
	}
}

func (a *Authenticator) extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(a.cookieName); err == nil && cookie != "" {
		return cookie
	}

	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
