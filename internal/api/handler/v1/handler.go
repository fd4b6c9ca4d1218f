package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/api/middleware"
	"github.com/ubcma/membership-portal-api/internal/domain"
)

// CurrentUserProvider loads the authenticated user behind a request.
type CurrentUserProvider interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getCurrentUser resolves the authenticated user from the session claims
// set by the authenticator. It renders the error response itself; callers
// bail out when ok is false.
func getCurrentUser(ctx *gin.Context, users CurrentUserProvider) (domain.User, bool) {
	raw, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		response.RenderErr(ctx, response.ErrMissingSession())

		return domain.User{}, false
	}

	userID, ok := raw.(uint)
	if !ok {
		err := fmt.Errorf("v1.getCurrentUser -> unexpected user ID type %T", raw)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return domain.User{}, false
	}

	user, err := users.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.getCurrentUser -> users.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return domain.User{}, false
	}

	return user, true
}
