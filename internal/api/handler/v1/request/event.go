package request

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

var (
	slugExp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	errEndsBeforeStarts = errors.New("ends_at must be after starts_at")
)

var questionTypes = []interface{}{
	string(domain.QuestionShortText),
	string(domain.QuestionLongText),
	string(domain.QuestionEmail),
	string(domain.QuestionNumber),
	string(domain.QuestionDate),
	string(domain.QuestionTime),
	string(domain.QuestionSelect),
	string(domain.QuestionCheckbox),
	string(domain.QuestionRadio),
	string(domain.QuestionYesNo),
	string(domain.QuestionFileUpload),
}

type EventQuestionInput struct {
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	IsRequired  bool     `json:"is_required"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	SortOrder   int      `json:"sort_order"`
}

func (q *EventQuestionInput) Validate() error {
	err := validation.ValidateStruct(
		q,
		validation.Field(&q.Label, validation.Required, validation.Length(1, 200)),
		validation.Field(&q.Type, validation.Required, validation.In(questionTypes...)),
	)
	if err != nil {
		return err
	}

	if domain.QuestionType(q.Type).RequiresOptions() && len(q.Options) == 0 {
		return fmt.Errorf("question %q of type %v requires options", q.Label, q.Type)
	}

	return nil
}

func (q *EventQuestionInput) ToDomain() domain.EventQuestion {
	return domain.EventQuestion{
		Label:       q.Label,
		Type:        domain.QuestionType(q.Type),
		IsRequired:  q.IsRequired,
		Options:     q.Options,
		Placeholder: q.Placeholder,
		SortOrder:   q.SortOrder,
	}
}

type CreateEventRequest struct {
	Slug        string               `json:"slug"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Location    string               `json:"location"`
	Price       float64              `json:"price"`
	StartsAt    time.Time            `json:"starts_at"`
	EndsAt      time.Time            `json:"ends_at"`
	AttendeeCap *int                 `json:"attendee_cap,omitempty"`
	IsVisible   bool                 `json:"is_visible"`
	MembersOnly bool                 `json:"members_only"`
	Tags        []string             `json:"tags,omitempty"`
	Questions   []EventQuestionInput `json:"questions,omitempty"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Slug, validation.Required, validation.Match(slugExp)),
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Price, validation.Min(0.0)),
		validation.Field(&req.StartsAt, validation.Required),
		validation.Field(&req.EndsAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.EndsAt.After(req.StartsAt) {
		return errEndsBeforeStarts
	}

	if req.AttendeeCap != nil && *req.AttendeeCap < 1 {
		return errors.New("attendee_cap must be at least 1")
	}

	for i := range req.Questions {
		if err := req.Questions[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (req *CreateEventRequest) ToDomain() domain.Event {
	questions := make([]domain.EventQuestion, 0, len(req.Questions))
	for i := range req.Questions {
		questions = append(questions, req.Questions[i].ToDomain())
	}

	return domain.Event{
		Slug:        req.Slug,
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
		Questions:   questions,
	}
}

// UpdateEventRequest deliberately carries no questions field: the
// question set is fixed at creation so stored responses always match
// the questions they answered.
type UpdateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	AttendeeCap *int      `json:"attendee_cap,omitempty"`
	IsVisible   bool      `json:"is_visible"`
	MembersOnly bool      `json:"members_only"`
	Tags        []string  `json:"tags,omitempty"`
}

func (req *UpdateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Price, validation.Min(0.0)),
		validation.Field(&req.StartsAt, validation.Required),
		validation.Field(&req.EndsAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.EndsAt.After(req.StartsAt) {
		return errEndsBeforeStarts
	}

	return nil
}
