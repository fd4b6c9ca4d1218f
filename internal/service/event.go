package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository"
)

var (
	ErrEventNotFound   = repository.ErrEventNotFound
	ErrEventSlugExists = repository.ErrEventSlugExists

	ErrQuestionOptionsRequired = errors.New("select, checkbox and radio questions require options")
	ErrCapBelowAttendance      = errors.New("attendee cap cannot be lower than the current attendee count")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
}

type EventRegistrationRepository interface {
	FindByEventID(ctx context.Context, eventID uint) ([]domain.Registration, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Registration, error)
}

type EventService struct {
	repo    EventRepository
	regRepo EventRegistrationRepository
}

func NewEventService(repo EventRepository, regRepo EventRegistrationRepository) *EventService {
	return &EventService{
		repo:    repo,
		regRepo: regRepo,
	}
}

// ListEvents returns the user's filtered view of the event directory.
// Filtering is a pure derivation over the directory, the user's
// registrations and the filter state.
func (s *EventService) ListEvents(ctx context.Context, user domain.User, filter domain.EventFilter) ([]domain.Event, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	registrations, err := s.regRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("s.regRepo.FindByUserID -> %w", err)
	}

	return domain.FilterEvents(events, registrations, filter, time.Now()), nil
}

// GetEventBySlug loads an event with its question set, ordered for
// display.
func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return event, nil
}

func (s *EventService) GetEventByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// CreateEvent persists a new event and its question set. The question
// set becomes immutable once created.
func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	for _, q := range event.Questions {
		if q.Type.RequiresOptions() && len(q.Options) == 0 {
			return domain.Event{}, ErrQuestionOptionsRequired
		}
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrEventSlugExists) {
			return domain.Event{}, ErrEventSlugExists
		}

		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// EventUpdate carries the editable event fields. Questions are not
// editable post-creation.
type EventUpdate struct {
	Title       string
	Description string
	Location    string
	Price       float64
	StartsAt    time.Time
	EndsAt      time.Time
	AttendeeCap *int
	IsVisible   bool
	MembersOnly bool
	Tags        []string
}

func (s *EventService) UpdateEvent(ctx context.Context, id uint, update EventUpdate) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if update.AttendeeCap != nil && *update.AttendeeCap < event.AttendeeCount {
		return domain.Event{}, ErrCapBelowAttendance
	}

	event.Title = update.Title
	event.Description = update.Description
	event.Location = update.Location
	event.Price = update.Price
	event.StartsAt = update.StartsAt
	event.EndsAt = update.EndsAt
	event.AttendeeCap = update.AttendeeCap
	event.IsVisible = update.IsVisible
	event.MembersOnly = update.MembersOnly
	event.Tags = update.Tags

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// ListRegistrations returns the registrations for an event, for admin
// reporting.
func (s *EventService) ListRegistrations(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	registrations, err := s.regRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.regRepo.FindByEventID -> %w", err)
	}

	return registrations, nil
}
