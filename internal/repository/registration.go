package repository

import (
	"context"
	"fmt"

	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrAlreadyRegistered    = dao.ErrAlreadyRegistered
	ErrEventFull            = dao.ErrEventFull
)

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Registration, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Registration, error)
	MarkPaymentVerified(ctx context.Context, stripeTransactionID string) error
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(reg))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByEventID(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	found, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	regs := make([]domain.Registration, len(found))
	for i, reg := range found {
		regs[i] = r.daoToDomain(reg)
	}

	return regs, nil
}

func (r *RegistrationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Registration, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	regs := make([]domain.Registration, len(found))
	for i, reg := range found {
		regs[i] = r.daoToDomain(reg)
	}

	return regs, nil
}

func (r *RegistrationRepository) MarkPaymentVerified(ctx context.Context, stripeTransactionID string) error {
	if err := r.dao.MarkPaymentVerified(ctx, stripeTransactionID); err != nil {
		return fmt.Errorf("r.dao.MarkPaymentVerified -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	responses := make([]domain.QuestionResponse, len(reg.Responses))
	for i, resp := range reg.Responses {
		responses[i] = domain.QuestionResponse{
			ID:             resp.ID,
			RegistrationID: resp.RegistrationID,
			QuestionID:     resp.QuestionID,
			Response:       resp.Response,
		}
	}

	return domain.Registration{
		ID:                  reg.ID,
		EventID:             reg.EventID,
		UserID:              reg.UserID,
		TicketCode:          reg.TicketCode,
		StripeTransactionID: reg.StripeTransactionID,
		PaymentVerified:     reg.PaymentVerified,
		Responses:           responses,
		CreatedAt:           reg.CreatedAt,
	}
}

func (r *RegistrationRepository) domainToDAO(reg domain.Registration) dao.Registration {
	responses := make([]dao.QuestionResponse, len(reg.Responses))
	for i, resp := range reg.Responses {
		responses[i] = dao.QuestionResponse{
			QuestionID: resp.QuestionID,
			Response:   resp.Response,
		}
	}

	return dao.Registration{
		ID:                  reg.ID,
		EventID:             reg.EventID,
		UserID:              reg.UserID,
		TicketCode:          reg.TicketCode,
		StripeTransactionID: reg.StripeTransactionID,
		PaymentVerified:     reg.PaymentVerified,
		Responses:           responses,
	}
}
