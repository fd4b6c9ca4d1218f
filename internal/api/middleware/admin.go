package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/domain"
)

type userLoader interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// RequireAdmin gates a route group to admin users. It runs after
// VerifySession, which guarantees the user ID is on the context.
func RequireAdmin(users userLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, exists := ctx.Get(ContextKeyUserID)
		if !exists {
			response.AbortWithErr(ctx, response.ErrMissingSession())

			return
		}

		userID, ok := raw.(uint)
		if !ok {
			response.AbortWithErr(ctx, response.ErrMissingSession())

			return
		}

		user, err := users.GetUser(ctx.Request.Context(), userID)
		if err != nil {
			response.AbortWithErr(ctx, response.ErrInternalServerError(err))

			return
		}

		if !user.Role.IsAdmin() {
			response.AbortWithErr(ctx, response.ErrPermissionDenied(errors.New("admin access required")))

			return
		}

		ctx.Next()
	}
}
