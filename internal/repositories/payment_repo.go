package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) CreatePayment(ctx context.Context, payment *models.EventPayment) error {
	if payment == nil {
		return errors.New("payment cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepo) ListPayments(ctx context.Context, tenantID, eventID string) ([]models.EventPayment, error) {
	var payments []models.EventPayment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
