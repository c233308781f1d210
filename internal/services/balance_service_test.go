package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/peritasorg/eventis-sub000/internal/balance"
	"github.com/peritasorg/eventis-sub000/internal/models"
)

func newBalanceService(env *testEnv) *BalanceService {
	return NewBalanceService(env.repo, env.cfg, balance.NewMemoryStore())
}

func TestBalanceService_ConfirmWritesAuditPaymentAndLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300"), DeductibleDeposit: money("50")})
	svc := newBalanceService(env)

	review, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, BalanceEditRequest{NewBalance: "200", Reason: "  goodwill discount "})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !review.OriginalBalance.Equal(decimal.NewFromInt(250)) || !review.Difference.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected review: %+v", review)
	}
	if review.Reason != "goodwill discount" || review.Warning == "" {
		t.Fatalf("review must carry the trimmed reason and a warning: %+v", review)
	}

	result, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Payment == nil || !result.Payment.AmountGBP.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("compensating payment = %+v, want 50", result.Payment)
	}
	if !result.Summary.RemainingBalance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("remaining balance = %s, want 200", result.Summary.RemainingBalance)
	}

	if n := env.count(t, &models.BalanceModification{}, event.ID); n != 1 {
		t.Fatalf("balance modifications = %d, want 1", n)
	}
	if n := env.count(t, &models.EventPayment{}, event.ID); n != 1 {
		t.Fatalf("payments = %d, want 1", n)
	}
	if n := env.count(t, &models.CommunicationLog{}, event.ID); n != 1 {
		t.Fatalf("communication logs = %d, want 1", n)
	}

	var entry models.CommunicationLog
	if err := env.repo.DB.Where("event_id = ?", event.ID).First(&entry).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	want := "Balance manually changed from £250.00 to £200.00. Reason: goodwill discount"
	if entry.Summary != want || entry.Kind != models.CommunicationBalanceChange {
		t.Fatalf("log entry = %q (%s), want %q", entry.Summary, entry.Kind, want)
	}

	if _, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true}); !HasCode(err, ErrNotFound) {
		t.Fatalf("token should be spent, got %v", err)
	}
}

func TestBalanceService_SameBalanceSkipsPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	svc := newBalanceService(env)

	review, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, BalanceEditRequest{NewBalance: 300.0, Reason: "checked"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	result, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Payment != nil {
		t.Fatalf("unexpected payment %+v", result.Payment)
	}
	if n := env.count(t, &models.EventPayment{}, event.ID); n != 0 {
		t.Fatalf("payments = %d, want 0", n)
	}
	if n := env.count(t, &models.BalanceModification{}, event.ID); n != 1 {
		t.Fatalf("balance modifications = %d, want 1", n)
	}
	if n := env.count(t, &models.CommunicationLog{}, event.ID); n != 1 {
		t.Fatalf("communication logs = %d, want 1", n)
	}
}

func TestBalanceService_RequiresAcknowledgement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	svc := newBalanceService(env)

	review, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, BalanceEditRequest{NewBalance: "100", Reason: "deal"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{}); !HasCode(err, ErrRiskNotAcknowledged) {
		t.Fatalf("expected RISK_NOT_ACKNOWLEDGED, got %v", err)
	}
	if n := env.count(t, &models.BalanceModification{}, event.ID); n != 0 {
		t.Fatalf("unacknowledged confirm wrote %d modifications", n)
	}

	// The edit is still pending and can be confirmed properly.
	if _, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true}); err != nil {
		t.Fatalf("confirm after acknowledgement: %v", err)
	}
}

func TestBalanceService_RequestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	svc := newBalanceService(env)

	cases := []struct {
		name string
		req  BalanceEditRequest
	}{
		{"empty reason", BalanceEditRequest{NewBalance: "100", Reason: "   "}},
		{"not a number", BalanceEditRequest{NewBalance: "abc", Reason: "x"}},
		{"missing amount", BalanceEditRequest{Reason: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, tc.req); !HasCode(err, ErrInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestBalanceService_StaleEditIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	svc := newBalanceService(env)

	review, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, BalanceEditRequest{NewBalance: "100", Reason: "deal"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := NewPaymentService(env.repo, env.cfg).RecordPayment(ctx, env.tenantID, event.ID.String(), env.userID, RecordPaymentRequest{Amount: 20}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	if _, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true}); !HasCode(err, ErrConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if n := env.count(t, &models.BalanceModification{}, event.ID); n != 0 {
		t.Fatalf("stale edit wrote %d modifications", n)
	}
}

func TestBalanceService_CancelWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	svc := newBalanceService(env)

	review, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, BalanceEditRequest{NewBalance: "100", Reason: "deal"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := svc.CancelEdit(ctx, env.tenantID, review.Token); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true}); !HasCode(err, ErrNotFound) {
		t.Fatalf("cancelled edit should be gone, got %v", err)
	}
	if n := env.count(t, &models.CommunicationLog{}, event.ID); n != 0 {
		t.Fatalf("cancel wrote %d log entries", n)
	}
}

// gatedStore holds every Get until the expected number of callers have read
// the session, so concurrent confirms all pass the pending-state checks.
type gatedStore struct {
	*balance.MemoryStore
	readers sync.WaitGroup
}

func (s *gatedStore) Get(ctx context.Context, token string) (*balance.Editor, error) {
	e, err := s.MemoryStore.Get(ctx, token)
	s.readers.Done()
	s.readers.Wait()
	return e, err
}

func TestBalanceService_ConcurrentConfirmCommitsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	store := &gatedStore{MemoryStore: balance.NewMemoryStore()}
	svc := NewBalanceService(env.repo, env.cfg, store)

	// Same balance, so a second commit would pass the stale check too.
	review, err := svc.RequestEdit(ctx, env.tenantID, event.ID.String(), env.userID, BalanceEditRequest{NewBalance: "300", Reason: "checked twice"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	const confirms = 2
	store.readers.Add(confirms)
	errs := make([]error, confirms)
	var wg sync.WaitGroup
	for i := 0; i < confirms; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ConfirmEdit(ctx, env.tenantID, env.userID, review.Token, ConfirmBalanceEditRequest{RiskAcknowledged: true})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !HasCode(err, ErrNotFound):
			t.Fatalf("losing confirm should be NOT_FOUND, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("successful confirms = %d, want 1", succeeded)
	}
	if n := env.count(t, &models.BalanceModification{}, event.ID); n != 1 {
		t.Fatalf("balance modifications = %d, want 1", n)
	}
	if n := env.count(t, &models.CommunicationLog{}, event.ID); n != 1 {
		t.Fatalf("communication logs = %d, want 1", n)
	}
}
