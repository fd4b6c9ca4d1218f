package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/request"
	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/service"
)

type JobService interface {
	ListJobs(ctx context.Context) ([]domain.Job, error)
	GetJob(ctx context.Context, id uint) (domain.Job, error)
	CreateJob(ctx context.Context, job domain.Job) (domain.Job, error)
	DeleteJob(ctx context.Context, id uint) error
}

type JobHandler struct {
	svc   JobService
	users CurrentUserProvider
}

func NewJobHandler(svc JobService, users CurrentUserProvider) *JobHandler {
	return &JobHandler{
		svc:   svc,
		users: users,
	}
}

// HandleListJobs godoc
// @Summary      List active job postings
// @Tags         jobs
// @Produce      json
// @Success      200      {object}   []domain.Job
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /jobs [get]
// @Security     ApiKeyAuth
func (h *JobHandler) HandleListJobs(ctx *gin.Context) {
	jobs, err := h.svc.ListJobs(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListJobs -> h.svc.ListJobs -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, jobs)
}

// HandleGetJob godoc
// @Summary      Get a job posting
// @Tags         jobs
// @Produce      json
// @Param        jobID   path      int true "job ID"
// @Success      200      {object}   domain.Job
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /jobs/{jobID} [get]
// @Security     ApiKeyAuth
func (h *JobHandler) HandleGetJob(ctx *gin.Context) {
	jobID, ok := parseIDParam(ctx, "jobID")
	if !ok {
		return
	}

	job, err := h.svc.GetJob(ctx.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("job", "ID", jobID))

			return
		}

		err = fmt.Errorf("v1.HandleGetJob -> h.svc.GetJob -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, job)
}

// HandleCreateJob godoc
// @Summary      Post a job (admin)
// @Tags         jobs
// @Produce      json
// @Param        request   body      request.CreateJobRequest true "request body"
// @Success      201      {object}   domain.Job
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/jobs [post]
// @Security     ApiKeyAuth
func (h *JobHandler) HandleCreateJob(ctx *gin.Context) {
	user, ok := getCurrentUser(ctx, h.users)
	if !ok {
		return
	}

	var req request.CreateJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	job := req.ToDomain()
	job.PostedByID = user.ID

	created, err := h.svc.CreateJob(ctx.Request.Context(), job)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateJob -> h.svc.CreateJob -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleDeleteJob godoc
// @Summary      Delete a job posting (admin)
// @Tags         jobs
// @Produce      json
// @Param        jobID   path      int true "job ID"
// @Success      204
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/jobs/{jobID} [delete]
// @Security     ApiKeyAuth
func (h *JobHandler) HandleDeleteJob(ctx *gin.Context) {
	jobID, ok := parseIDParam(ctx, "jobID")
	if !ok {
		return
	}

	if err := h.svc.DeleteJob(ctx.Request.Context(), jobID); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("job", "ID", jobID))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteJob -> h.svc.DeleteJob -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}
