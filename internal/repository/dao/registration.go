package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("user already registered for event")
	ErrEventFull            = errors.New("event is at capacity")
)

type Registration struct {
	ID uint `gorm:"primaryKey"`

	EventID uint `gorm:"not null;uniqueIndex:idx_registrations_event_user"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_registrations_event_user"`

	TicketCode          string `gorm:"not null"`
	StripeTransactionID string
	PaymentVerified     bool `gorm:"not null;default:false"`

	Responses []QuestionResponse `gorm:"foreignKey:RegistrationID"`

	CreatedAt time.Time `gorm:"not null"`
}

type QuestionResponse struct {
	ID             uint   `gorm:"primaryKey"`
	RegistrationID uint   `gorm:"not null;index"`
	QuestionID     uint   `gorm:"not null"`
	Response       string `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// Insert books one seat atomically: it locks the event row, re-checks the
// attendee cap, rejects duplicates and bumps the attendee count in the
// same transaction. Capacity is enforced here, not by the client.
func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, reg.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		if event.AttendeeCap != nil && event.AttendeeCount >= *event.AttendeeCap {
			return ErrEventFull
		}

		var existing int64
		if err := tx.Model(&Registration{}).
			Where("event_id = ? AND user_id = ?", reg.EventID, reg.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyRegistered
		}

		if err := tx.Create(&reg).Error; err != nil {
			return err
		}

		return tx.Model(&Event{}).Where("id = ?", reg.EventID).
			Update("attendee_count", gorm.Expr("attendee_count + 1")).Error
	})
	if err != nil {
		return Registration{}, err
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByEventID(ctx context.Context, eventID uint) ([]Registration, error) {
	var regs []Registration
	result := d.db.WithContext(ctx).Preload("Responses").Where("event_id = ?", eventID).Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

func (d *RegistrationDAO) FindByUserID(ctx context.Context, userID uint) ([]Registration, error) {
	var regs []Registration
	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

// MarkPaymentVerified flips the verification flag once the webhook
// reports the intent as succeeded.
func (d *RegistrationDAO) MarkPaymentVerified(ctx context.Context, stripeTransactionID string) error {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("stripe_transaction_id = ?", stripeTransactionID).
		Update("payment_verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}
