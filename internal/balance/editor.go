// Package balance implements the guarded manual override of an event's
// remaining balance. An edit must be requested with a reason, reviewed, and
// confirmed with an explicit risk acknowledgement before anything is written.
package balance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peritasorg/eventis-sub000/internal/pricing"
)

type State string

const (
	StateViewing                 State = "viewing"
	StateEditRequested           State = "edit_requested"
	StateRiskConfirmationPending State = "risk_confirmation_pending"
	StateCommitted               State = "committed"
	StateCancelled               State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

var (
	ErrReasonRequired      = errors.New("a reason is required to change the balance")
	ErrRiskNotAcknowledged = errors.New("the balance change must be confirmed before it is saved")
	ErrEditNotFound        = errors.New("balance edit not found or expired")
)

// TransitionError is returned when an action is not valid in the current state.
type TransitionError struct {
	From   State
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a balance edit in state %s", e.Action, e.From)
}

const IrreversibleWarning = "This will record a compensating payment and an audit entry. The change cannot be undone."

// Editor is one balance edit session.
type Editor struct {
	Token           string          `json:"token"`
	TenantID        string          `json:"tenant_id"`
	EventID         string          `json:"event_id"`
	RequestedBy     string          `json:"requested_by"`
	State           State           `json:"state"`
	OriginalBalance decimal.Decimal `json:"original_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Reason          string          `json:"reason"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewEditor opens a session on the balance the user is currently looking at.
func NewEditor(tenantID, eventID, userID string, current decimal.Decimal) *Editor {
	return &Editor{
		Token:           uuid.NewString(),
		TenantID:        tenantID,
		EventID:         eventID,
		RequestedBy:     userID,
		State:           StateViewing,
		OriginalBalance: pricing.RoundMoney(current),
		CreatedAt:       time.Now().UTC(),
	}
}

// Request records the proposed balance. The reason is trimmed and required.
func (e *Editor) Request(newBalance decimal.Decimal, reason string) error {
	if e.State != StateViewing && e.State != StateEditRequested {
		return &TransitionError{From: e.State, Action: "request"}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	e.NewBalance = pricing.RoundMoney(newBalance)
	e.Reason = reason
	e.State = StateEditRequested
	return nil
}

// Review is what the user must see before confirming.
type Review struct {
	Token           string          `json:"token"`
	OriginalBalance decimal.Decimal `json:"original_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Reason          string          `json:"reason"`
	Warning         string          `json:"warning"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

func (e *Editor) Review() (Review, error) {
	if e.State != StateEditRequested && e.State != StateRiskConfirmationPending {
		return Review{}, &TransitionError{From: e.State, Action: "review"}
	}
	e.State = StateRiskConfirmationPending
	return Review{
		Token:           e.Token,
		OriginalBalance: e.OriginalBalance,
		NewBalance:      e.NewBalance,
		Difference:      e.Difference(),
		Reason:          e.Reason,
		Warning:         IrreversibleWarning,
	}, nil
}

// Difference is original minus new, the amount of the compensating payment.
func (e *Editor) Difference() decimal.Decimal {
	return pricing.RoundMoney(e.OriginalBalance.Sub(e.NewBalance))
}

// Plan lists the writes a confirmed edit performs. They belong in one
// transaction.
type Plan struct {
	EventID         string
	ModifiedBy      string
	OriginalBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Reason          string
	Payment         *PlannedPayment
	LogSummary      string
}

type PlannedPayment struct {
	Amount decimal.Decimal
	Note   string
}

// Confirm finishes the session. Without the acknowledgement the editor stays
// pending and nothing may be written.
func (e *Editor) Confirm(riskAcknowledged bool) (Plan, error) {
	if e.State != StateRiskConfirmationPending {
		return Plan{}, &TransitionError{From: e.State, Action: "confirm"}
	}
	if !riskAcknowledged {
		return Plan{}, ErrRiskNotAcknowledged
	}

	plan := Plan{
		EventID:         e.EventID,
		ModifiedBy:      e.RequestedBy,
		OriginalBalance: e.OriginalBalance,
		NewBalance:      e.NewBalance,
		Reason:          e.Reason,
		LogSummary: fmt.Sprintf("Balance manually changed from %s to %s. Reason: %s",
			pricing.FormatGBP(e.OriginalBalance), pricing.FormatGBP(e.NewBalance), e.Reason),
	}
	if diff := e.Difference(); !diff.IsZero() {
		plan.Payment = &PlannedPayment{
			Amount: diff,
			Note:   "Balance adjustment: " + e.Reason,
		}
	}

	e.State = StateCommitted
	return plan, nil
}

func (e *Editor) Cancel() error {
	if e.State.Terminal() {
		return &TransitionError{From: e.State, Action: "cancel"}
	}
	e.State = StateCancelled
	return nil
}
