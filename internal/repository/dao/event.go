package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventSlugExists = errors.New("event slug already exists")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Slug        string `gorm:"unique;not null"`
	Title       string `gorm:"not null"`
	Description string
	Location    string

	Price    float64   `gorm:"not null;default:0"`
	StartsAt time.Time `gorm:"not null"`
	EndsAt   time.Time `gorm:"not null"`

	AttendeeCap   *int
	AttendeeCount int `gorm:"not null;default:0"`

	IsVisible   bool `gorm:"not null;default:true"`
	MembersOnly bool `gorm:"not null;default:false"`

	// Comma-joined tag list.
	Tags string

	Questions []EventQuestion `gorm:"foreignKey:EventID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventQuestion struct {
	ID      uint `gorm:"primaryKey"`
	EventID uint `gorm:"not null;index"`

	Label      string `gorm:"not null"`
	Type       string `gorm:"not null"`
	IsRequired bool   `gorm:"not null;default:false"`

	// Comma-joined option list for select/checkbox/radio questions.
	Options     string
	Placeholder string
	SortOrder   int `gorm:"not null;default:0"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_events_slug"`) {
			return Event{}, ErrEventSlugExists
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event
	result := d.db.WithContext(ctx).Preload("Questions").First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindBySlug(ctx context.Context, slug string) (Event, error) {
	var event Event
	result := d.db.WithContext(ctx).Preload("Questions").Where("slug = ?", slug).First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	var events []Event
	result := d.db.WithContext(ctx).Order("starts_at").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// Update persists event fields. Questions are immutable after creation
// and are deliberately not touched here.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Omit("Questions").Save(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}
