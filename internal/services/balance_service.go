package services

import (
	"context"
	"errors"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/balance"
	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// BalanceService runs manual balance overrides. Nothing is written until the
// user confirms the review with an explicit risk acknowledgement.
type BalanceService struct {
	repo  *repositories.Repository
	cfg   *config.Config
	store balance.PendingStore
	now   func() time.Time
}

func NewBalanceService(repo *repositories.Repository, cfg *config.Config, store balance.PendingStore) *BalanceService {
	return &BalanceService{repo: repo, cfg: cfg, store: store, now: time.Now}
}

type BalanceEditRequest struct {
	NewBalance any    `json:"new_balance"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}

type ConfirmBalanceEditRequest struct {
	RiskAcknowledged bool `json:"risk_acknowledged"`
}

type BalanceEditResult struct {
	Modification *models.BalanceModification `json:"modification"`
	Payment      *models.EventPayment        `json:"payment,omitempty"`
	Summary      *EventSummary               `json:"summary"`
}

func (s *BalanceService) ttl() time.Duration {
	if s.cfg == nil || s.cfg.BalanceEditTTL <= 0 {
		return 15 * time.Minute
	}
	return s.cfg.BalanceEditTTL
}

// RequestEdit opens an edit on the event's current live balance and returns
// the review the user has to confirm.
func (s *BalanceService) RequestEdit(ctx context.Context, tenantID, eventID, userID string, req BalanceEditRequest) (*balance.Review, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, eventID)
	if err != nil {
		return nil, err
	}

	newBalance, err := pricing.ParseStrictAmount(req.NewBalance)
	if err != nil {
		return nil, amountError("new balance", err)
	}

	summary, _, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}

	editor := balance.NewEditor(tenantID, eventID, userID, summary.RemainingBalance)
	if err := editor.Request(newBalance, req.Reason); err != nil {
		return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
	}
	review, err := editor.Review()
	if err != nil {
		return nil, NewServiceError(err.Error(), ErrConflict, err)
	}
	review.ExpiresAt = s.now().UTC().Add(s.ttl())

	if err := s.store.Save(ctx, editor, s.ttl()); err != nil {
		return nil, dbError("failed to store balance edit", err)
	}
	return &review, nil
}

func (s *BalanceService) loadEdit(ctx context.Context, tenantID, token string) (*balance.Editor, error) {
	editor, err := s.store.Get(ctx, token)
	if errors.Is(err, balance.ErrEditNotFound) {
		return nil, NewServiceError(err.Error(), ErrNotFound, err)
	}
	if err != nil {
		return nil, dbError("failed to load balance edit", err)
	}
	if editor.TenantID != tenantID {
		return nil, NewServiceError(balance.ErrEditNotFound.Error(), ErrNotFound, balance.ErrEditNotFound)
	}
	return editor, nil
}

// ConfirmEdit commits a reviewed edit. The audit row, the compensating
// payment and the log entry are written in one transaction. The session is
// claimed from the store before anything is written, so a token commits at
// most once. If the live balance moved since the edit was requested the edit
// is dropped.
func (s *BalanceService) ConfirmEdit(ctx context.Context, tenantID, userID, token string, req ConfirmBalanceEditRequest) (*BalanceEditResult, error) {
	editor, err := s.loadEdit(ctx, tenantID, token)
	if err != nil {
		return nil, err
	}
	if editor.RequestedBy != userID {
		return nil, NewServiceError("only the user who requested the edit can confirm it", ErrPermissionDenied, nil)
	}

	plan, err := editor.Confirm(req.RiskAcknowledged)
	if errors.Is(err, balance.ErrRiskNotAcknowledged) {
		return nil, NewServiceError(err.Error(), ErrRiskNotAcknowledged, err)
	}
	if err != nil {
		return nil, NewServiceError(err.Error(), ErrConflict, err)
	}

	claimed, err := s.store.Take(ctx, token)
	if errors.Is(err, balance.ErrEditNotFound) {
		return nil, NewServiceError("balance edit already confirmed or expired", ErrNotFound, err)
	}
	if err != nil {
		return nil, dbError("failed to load balance edit", err)
	}

	event, err := requireEvent(ctx, s.repo, tenantID, plan.EventID)
	if err != nil {
		return nil, err
	}
	current, _, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		s.restoreEdit(ctx, tenantID, claimed)
		return nil, err
	}
	if !current.RemainingBalance.Equal(plan.OriginalBalance) {
		return nil, NewServiceError("the balance has changed since the edit was requested, start again", ErrConflict, nil)
	}

	modifiedBy, err := uuid.Parse(plan.ModifiedBy)
	if err != nil {
		return nil, invalid("invalid user id")
	}

	result := &BalanceEditResult{
		Modification: &models.BalanceModification{
			TenantID:         event.TenantID,
			EventID:          event.ID,
			OriginalBalance:  plan.OriginalBalance,
			NewBalance:       plan.NewBalance,
			EditReason:       plan.Reason,
			ModifiedBy:       modifiedBy,
			RiskAcknowledged: true,
		},
	}
	if plan.Payment != nil {
		result.Payment = &models.EventPayment{
			TenantID:    event.TenantID,
			EventID:     event.ID,
			AmountGBP:   plan.Payment.Amount,
			PaymentDate: datatypes.Date(s.now().UTC()),
			PaymentNote: plan.Payment.Note,
			CreatedBy:   &modifiedBy,
		}
	}

	err = s.repo.Transaction(ctx, func(tx *repositories.Repository) error {
		if err := tx.BalanceRepo.CreateBalanceModification(ctx, result.Modification); err != nil {
			return err
		}
		if result.Payment != nil {
			if err := tx.PaymentRepo.CreatePayment(ctx, result.Payment); err != nil {
				return err
			}
		}
		return tx.CommunicationRepo.CreateCommunicationLog(ctx, &models.CommunicationLog{
			TenantID:   event.TenantID,
			EventID:    event.ID,
			CustomerID: event.CustomerID,
			Kind:       models.CommunicationBalanceChange,
			Summary:    plan.LogSummary,
			CreatedBy:  &modifiedBy,
		})
	})
	if err != nil {
		logger.WithTenant(tenantID).WithFields(logrus.Fields{
			"event_id": plan.EventID,
			"error":    err,
		}).Error("balance edit rolled back")
		s.restoreEdit(ctx, tenantID, claimed)
		return nil, dbError("failed to save balance change", err)
	}

	logger.WithTenant(tenantID).WithFields(logrus.Fields{
		"event_id":         plan.EventID,
		"user_id":          plan.ModifiedBy,
		"original_balance": plan.OriginalBalance.StringFixed(2),
		"new_balance":      plan.NewBalance.StringFixed(2),
	}).Info("balance manually changed")

	if result.Summary, _, err = loadLedger(ctx, s.repo, tenantID, event); err != nil {
		return nil, err
	}
	return result, nil
}

// restoreEdit puts a claimed session back after a failed write so the user
// can retry.
func (s *BalanceService) restoreEdit(ctx context.Context, tenantID string, e *balance.Editor) {
	if err := s.store.Save(ctx, e, s.ttl()); err != nil {
		logger.WithTenant(tenantID).WithError(err).Warn("failed to restore balance edit")
	}
}

// CancelEdit abandons a pending edit. Nothing is written.
func (s *BalanceService) CancelEdit(ctx context.Context, tenantID, token string) error {
	editor, err := s.loadEdit(ctx, tenantID, token)
	if err != nil {
		return err
	}
	if err := editor.Cancel(); err != nil {
		return NewServiceError(err.Error(), ErrConflict, err)
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return dbError("failed to cancel balance edit", err)
	}
	return nil
}

func (s *BalanceService) ListModifications(ctx context.Context, tenantID, eventID string) ([]models.BalanceModification, error) {
	if _, err := requireEvent(ctx, s.repo, tenantID, eventID); err != nil {
		return nil, err
	}
	mods, err := s.repo.BalanceRepo.ListBalanceModifications(ctx, tenantID, eventID)
	if err != nil {
		return nil, dbError("failed to list balance changes", err)
	}
	return mods, nil
}
