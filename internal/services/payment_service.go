package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentService struct {
	repo *repositories.Repository
	cfg  *config.Config
	now  func() time.Time
}

func NewPaymentService(repo *repositories.Repository, cfg *config.Config) *PaymentService {
	return &PaymentService{repo: repo, cfg: cfg, now: time.Now}
}

// RecordPaymentRequest takes the amount as sent: a JSON number or a numeric
// string. Negative amounts are refunds.
type RecordPaymentRequest struct {
	Amount      any    `json:"amount_gbp"`
	PaymentDate string `json:"payment_date"`
	PaymentNote string `json:"payment_note" validate:"max=500"`
}

func optionalUserID(userID string) *uuid.UUID {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &id
}

// RecordPayment stores a payment against the event and notes it in the
// communication log, both in one transaction.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID, eventID, userID string, req RecordPaymentRequest) (*models.EventPayment, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, eventID)
	if err != nil {
		return nil, err
	}

	amount, err := pricing.ParseStrictAmount(req.Amount)
	if err != nil {
		return nil, amountError("amount", err)
	}
	amount = pricing.RoundMoney(amount)
	if amount.IsZero() {
		return nil, invalid("amount cannot be zero")
	}

	date := datatypes.Date(s.now().UTC())
	if strings.TrimSpace(req.PaymentDate) != "" {
		if date, err = parseDate(req.PaymentDate); err != nil {
			return nil, err
		}
	}

	payment := &models.EventPayment{
		TenantID:    event.TenantID,
		EventID:     event.ID,
		AmountGBP:   amount,
		PaymentDate: date,
		PaymentNote: strings.TrimSpace(req.PaymentNote),
		CreatedBy:   optionalUserID(userID),
	}

	summary := fmt.Sprintf("Payment of %s recorded", pricing.FormatGBP(amount))
	if payment.PaymentNote != "" {
		summary += ": " + payment.PaymentNote
	}

	err = s.repo.Transaction(ctx, func(tx *repositories.Repository) error {
		if err := tx.PaymentRepo.CreatePayment(ctx, payment); err != nil {
			return err
		}
		return tx.CommunicationRepo.CreateCommunicationLog(ctx, &models.CommunicationLog{
			TenantID:   event.TenantID,
			EventID:    event.ID,
			CustomerID: event.CustomerID,
			Kind:       models.CommunicationPayment,
			Summary:    summary,
			CreatedBy:  payment.CreatedBy,
		})
	})
	if err != nil {
		return nil, dbError("failed to record payment", err)
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, tenantID, eventID string) ([]models.EventPayment, error) {
	if _, err := requireEvent(ctx, s.repo, tenantID, eventID); err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentRepo.ListPayments(ctx, tenantID, eventID)
	if err != nil {
		return nil, dbError("failed to list payments", err)
	}
	return payments, nil
}
