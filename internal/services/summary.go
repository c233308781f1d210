package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
)

// EventSummary is the live money view of an event.
type EventSummary struct {
	EventID string `json:"event_id"`
	pricing.Summary
	Payments []models.EventPayment `json:"payments"`
}

// FormWithTotal is an active event form with its live total.
type FormWithTotal struct {
	models.EventForm
	Live pricing.FormTotal `json:"live"`
}

// loadLedger reads everything that feeds the event balance and recomputes it.
// Cached form totals are ignored.
func loadLedger(ctx context.Context, repo *repositories.Repository, tenantID string, event *models.Event) (*EventSummary, []FormWithTotal, error) {
	eventID := event.ID.String()

	forms, err := repo.EventFormRepo.ListActiveForms(ctx, tenantID, eventID)
	if err != nil {
		return nil, nil, dbError("failed to load event forms", err)
	}

	defs, err := definitionsFor(ctx, repo, tenantID, forms)
	if err != nil {
		return nil, nil, err
	}

	withTotals := make([]FormWithTotal, 0, len(forms))
	figures := make([]pricing.FormFigures, 0, len(forms))
	for _, f := range forms {
		live := pricing.CalculateFormTotal(f.Snapshot().Input(), defs)
		withTotals = append(withTotals, FormWithTotal{EventForm: f, Live: live})
		figures = append(figures, pricing.FormFigures{
			ID:         f.ID.String(),
			Label:      f.FormLabel,
			GuestCount: f.GuestCount,
			Total:      live.Total,
		})
	}

	payments, err := repo.PaymentRepo.ListPayments(ctx, tenantID, eventID)
	if err != nil {
		return nil, nil, dbError("failed to load payments", err)
	}
	paymentFigures := make([]pricing.PaymentFigures, 0, len(payments))
	for _, p := range payments {
		paymentFigures = append(paymentFigures, p.Figures())
	}

	return &EventSummary{
		EventID:  eventID,
		Summary:  pricing.AggregateEvent(event.Figures(), figures, paymentFigures),
		Payments: payments,
	}, withTotals, nil
}

// definitionsFor loads every definition referenced by the forms' responses,
// disabled ones included.
func definitionsFor(ctx context.Context, repo *repositories.Repository, tenantID string, forms []models.EventForm) (map[string]pricing.FieldDefinition, error) {
	sets := make([]pricing.Responses, 0, len(forms))
	for _, f := range forms {
		sets = append(sets, f.Responses())
	}
	return definitionsForResponses(ctx, repo, tenantID, sets...)
}

func definitionsForResponses(ctx context.Context, repo *repositories.Repository, tenantID string, sets ...pricing.Responses) (map[string]pricing.FieldDefinition, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, rs := range sets {
		for id := range rs {
			if _, err := uuid.Parse(id); err != nil {
				continue
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]pricing.FieldDefinition{}, nil
	}

	defs, err := repo.FieldRepo.GetFieldsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, dbError("failed to load field definitions", err)
	}
	return models.DefinitionMap(defs), nil
}
