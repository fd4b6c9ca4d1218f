package repository

import (
	"context"
	"fmt"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository/dao"
)

var (
	ErrEventNotFound   = dao.ErrEventNotFound
	ErrEventSlugExists = dao.ErrEventSlugExists
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindBySlug(ctx context.Context, slug string) (dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id uint) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (domain.Event, error) {
	found, err := r.dao.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindBySlug -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	questions := make([]domain.EventQuestion, len(e.Questions))
	for i, q := range e.Questions {
		questions[i] = domain.EventQuestion{
			ID:          q.ID,
			EventID:     q.EventID,
			Label:       q.Label,
			Type:        domain.QuestionType(q.Type),
			IsRequired:  q.IsRequired,
			Options:     splitList(q.Options),
			Placeholder: q.Placeholder,
			SortOrder:   q.SortOrder,
		}
	}
	domain.SortQuestions(questions)

	return domain.Event{
		ID:            e.ID,
		Slug:          e.Slug,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		Price:         e.Price,
		StartsAt:      e.StartsAt,
		EndsAt:        e.EndsAt,
		AttendeeCap:   e.AttendeeCap,
		AttendeeCount: e.AttendeeCount,
		IsVisible:     e.IsVisible,
		MembersOnly:   e.MembersOnly,
		Tags:          splitList(e.Tags),
		Questions:     questions,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (r *EventRepository) domainToDAO(e domain.Event) dao.Event {
	questions := make([]dao.EventQuestion, len(e.Questions))
	for i, q := range e.Questions {
		questions[i] = dao.EventQuestion{
			ID:          q.ID,
			EventID:     q.EventID,
			Label:       q.Label,
			Type:        string(q.Type),
			IsRequired:  q.IsRequired,
			Options:     joinList(q.Options),
			Placeholder: q.Placeholder,
			SortOrder:   q.SortOrder,
		}
	}

	return dao.Event{
		ID:            e.ID,
		Slug:          e.Slug,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		Price:         e.Price,
		StartsAt:      e.StartsAt,
		EndsAt:        e.EndsAt,
		AttendeeCap:   e.AttendeeCap,
		AttendeeCount: e.AttendeeCount,
		IsVisible:     e.IsVisible,
		MembersOnly:   e.MembersOnly,
		Tags:          joinList(e.Tags),
		Questions:     questions,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
