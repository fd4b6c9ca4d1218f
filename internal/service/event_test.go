package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

type fakeEventRegRepo struct {
	byEvent map[uint][]domain.Registration
	byUser  map[uint][]domain.Registration
}

func (f *fakeEventRegRepo) FindByEventID(_ context.Context, eventID uint) ([]domain.Registration, error) {
	return f.byEvent[eventID], nil
}

func (f *fakeEventRegRepo) FindByUserID(_ context.Context, userID uint) ([]domain.Registration, error) {
	return f.byUser[userID], nil
}

func TestEventService_CreateEvent(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{events: map[uint]domain.Event{}}, &fakeEventRegRepo{})

	t.Run("option questions need options", func(t *testing.T) {
		_, err := svc.CreateEvent(context.Background(), domain.Event{
			Slug: "gala",
			Questions: []domain.EventQuestion{
				{Label: "Pick one", Type: domain.QuestionSelect},
			},
		})

		require.ErrorIs(t, err, ErrQuestionOptionsRequired)
	})

	t.Run("text questions need none", func(t *testing.T) {
		_, err := svc.CreateEvent(context.Background(), domain.Event{
			Slug: "gala",
			Questions: []domain.EventQuestion{
				{Label: "Anything to add?", Type: domain.QuestionLongText},
			},
		})

		require.NoError(t, err)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	event := domain.Event{
		ID:            5,
		Slug:          "gala",
		Title:         "Gala",
		AttendeeCount: 10,
		Questions: []domain.EventQuestion{
			{ID: 1, Label: "Diet", Type: domain.QuestionShortText},
		},
	}
	repo := &fakeEventRepo{events: map[uint]domain.Event{5: event}}
	svc := NewEventService(repo, &fakeEventRegRepo{})

	t.Run("cap below attendance is rejected", func(t *testing.T) {
		cap := 5
		_, err := svc.UpdateEvent(context.Background(), 5, EventUpdate{Title: "Gala", AttendeeCap: &cap})

		require.ErrorIs(t, err, ErrCapBelowAttendance)
	})

	t.Run("update keeps the question set intact", func(t *testing.T) {
		updated, err := svc.UpdateEvent(context.Background(), 5, EventUpdate{Title: "Winter Gala"})

		require.NoError(t, err)
		assert.Equal(t, "Winter Gala", updated.Title)
		require.Len(t, updated.Questions, 1)
		assert.Equal(t, "Diet", updated.Questions[0].Label)
	})
}

func TestEventService_ListEvents(t *testing.T) {
	now := time.Now()
	repo := &fakeEventRepo{events: map[uint]domain.Event{
		1: {ID: 1, Title: "Visible", IsVisible: true, StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour)},
		2: {ID: 2, Title: "Hidden", IsVisible: false, StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour)},
	}}
	regs := &fakeEventRegRepo{byUser: map[uint][]domain.Registration{7: {{EventID: 1}}}}
	svc := NewEventService(repo, regs)

	t.Run("hidden events are excluded", func(t *testing.T) {
		events, err := svc.ListEvents(context.Background(), domain.User{ID: 7}, domain.EventFilter{})

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, uint(1), events[0].ID)
	})

	t.Run("registered filter uses the user's registrations", func(t *testing.T) {
		events, err := svc.ListEvents(context.Background(), domain.User{ID: 7}, domain.EventFilter{RegisteredOnly: true})
		require.NoError(t, err)
		assert.Len(t, events, 1)

		events, err = svc.ListEvents(context.Background(), domain.User{ID: 8}, domain.EventFilter{RegisteredOnly: true})
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
