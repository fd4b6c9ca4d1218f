package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/request"
	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	UpdateProfile(ctx context.Context, userID uint, update service.ProfileUpdate) (domain.User, error)
	CompleteOnboarding(ctx context.Context, userID uint, update service.ProfileUpdate) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Success      200      {object}   domain.User
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /me [get]
// @Security     ApiKeyAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	user, ok := getCurrentUser(ctx, h.svc)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleUpdateMe godoc
// @Summary      Update the authenticated user's profile
// @Tags         users
// @Produce      json
// @Param        request   body      request.UpdateProfileRequest true "request body"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /me [put]
// @Security     ApiKeyAuth
func (h *UserHandler) HandleUpdateMe(ctx *gin.Context) {
	user, ok := getCurrentUser(ctx, h.svc)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updated, err := h.svc.UpdateProfile(ctx.Request.Context(), user.ID, service.ProfileUpdate{
		Name:        req.Name,
		Avatar:      req.Avatar,
		Bio:         req.Bio,
		Faculty:     req.Faculty,
		Year:        req.Year,
		Major:       req.Major,
		LinkedinURL: req.LinkedinURL,
		Diet:        req.Diet,
		Interests:   req.Interests,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateMe -> h.svc.UpdateProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleCompleteOnboarding godoc
// @Summary      Submit the onboarding form
// @Tags         users
// @Produce      json
// @Param        request   body      request.OnboardingRequest true "request body"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /me/onboarding [post]
// @Security     ApiKeyAuth
func (h *UserHandler) HandleCompleteOnboarding(ctx *gin.Context) {
	user, ok := getCurrentUser(ctx, h.svc)
	if !ok {
		return
	}

	var req request.OnboardingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updated, err := h.svc.CompleteOnboarding(ctx.Request.Context(), user.ID, service.ProfileUpdate{
		Name:      req.Name,
		Faculty:   req.Faculty,
		Year:      req.Year,
		Major:     req.Major,
		Diet:      req.Diet,
		Interests: req.Interests,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCompleteOnboarding -> h.svc.CompleteOnboarding -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, updated)
}
