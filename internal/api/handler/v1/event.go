package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/request"
	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/service"
)

type EventService interface {
	ListEvents(ctx context.Context, user domain.User, filter domain.EventFilter) ([]domain.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, update service.EventUpdate) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	ListRegistrations(ctx context.Context, eventID uint) ([]domain.Registration, error)
}

type EventHandler struct {
	svc   EventService
	users CurrentUserProvider
}

func NewEventHandler(svc EventService, users CurrentUserProvider) *EventHandler {
	return &EventHandler{
		svc:   svc,
		users: users,
	}
}

// HandleListEvents godoc
// @Summary      List visible events
// @Description  Filter with status, search, tags (comma separated) and registered=true
// @Tags         events
// @Produce      json
// @Param        status     query     string false "upcoming, ongoing or past"
// @Param        search     query     string false "search term"
// @Param        tags       query     string false "comma separated tags"
// @Param        registered query     bool   false "only events the user registered for"
// @Success      200      {object}   []domain.Event
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events [get]
// @Security     ApiKeyAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	user, ok := getCurrentUser(ctx, h.users)
	if !ok {
		return
	}

	filter := domain.EventFilter{
		Status:         domain.EventStatus(ctx.Query("status")),
		Search:         ctx.Query("search"),
		RegisteredOnly: ctx.Query("registered") == "true",
	}
	if tags := ctx.Query("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), user, filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event by slug with its registration questions
// @Tags         events
// @Produce      json
// @Param        slug   path      string true "event slug"
// @Success      200      {object}   response.EventDetailsResponse
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{slug} [get]
// @Security     ApiKeyAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	slug := ctx.Param("slug")

	event, err := h.svc.GetEventBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "slug", slug))

			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEventBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	questions := event.Questions
	domain.SortQuestions(questions)

	ctx.JSON(http.StatusOK, response.EventDetailsResponse{
		Event:     event,
		Questions: questions,
		Tags:      event.Tags,
	})
}

// HandleCreateEvent godoc
// @Summary      Create an event (admin)
// @Tags         events
// @Produce      json
// @Param        request   body      request.CreateEventRequest true "request body"
// @Success      201      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/events [post]
// @Security     ApiKeyAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, service.ErrEventSlugExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrEventSlugExists))

			return
		}
		if errors.Is(err, service.ErrQuestionOptionsRequired) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrQuestionOptionsRequired))

			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event (admin). Questions are fixed at creation.
// @Tags         events
// @Produce      json
// @Param        eventID   path      int true "event ID"
// @Param        request   body      request.UpdateEventRequest true "request body"
// @Success      200      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/events/{eventID} [put]
// @Security     ApiKeyAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventID")
	if !ok {
		return
	}

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), eventID, service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AttendeeCap: req.AttendeeCap,
		IsVisible:   req.IsVisible,
		MembersOnly: req.MembersOnly,
		Tags:        req.Tags,
	})
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

			return
		}
		if errors.Is(err, service.ErrCapBelowAttendance) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrCapBelowAttendance))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event (admin)
// @Tags         events
// @Produce      json
// @Param        eventID   path      int true "event ID"
// @Success      204
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/events/{eventID} [delete]
// @Security     ApiKeyAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventID")
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), eventID); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListRegistrations godoc
// @Summary      List registrations for an event (admin)
// @Tags         events
// @Produce      json
// @Param        eventID   path      int true "event ID"
// @Success      200      {object}   []domain.Registration
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/events/{eventID}/registrations [get]
// @Security     ApiKeyAuth
func (h *EventHandler) HandleListRegistrations(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventID")
	if !ok {
		return
	}

	registrations, err := h.svc.ListRegistrations(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

			return
		}

		err = fmt.Errorf("v1.HandleListRegistrations -> h.svc.ListRegistrations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %v %q", name, raw)))

		return 0, false
	}

	return uint(id), true
}
