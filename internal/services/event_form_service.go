package services

import (
	"context"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EventFormService manages the forms attached to an event and keeps their
// cached totals in step with the responses.
type EventFormService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewEventFormService(repo *repositories.Repository, cfg *config.Config) *EventFormService {
	return &EventFormService{repo: repo, cfg: cfg}
}

type AttachFormRequest struct {
	FormID     string           `json:"form_id" validate:"required,uuid"`
	FormLabel  string           `json:"form_label" validate:"max=120"`
	GuestCount int              `json:"guest_count" validate:"min=0"`
	GuestPrice *decimal.Decimal `json:"guest_price"`
	StartTime  string           `json:"start_time"`
	EndTime    string           `json:"end_time"`
}

// UpdateEventFormRequest is a partial edit of an event form. Each entry in
// Responses replaces the stored response for that field id.
type UpdateEventFormRequest struct {
	FormLabel  *string           `json:"form_label" validate:"omitempty,max=120"`
	GuestCount *int              `json:"guest_count" validate:"omitempty,min=0"`
	GuestPrice *decimal.Decimal  `json:"guest_price"`
	StartTime  *string           `json:"start_time"`
	EndTime    *string           `json:"end_time"`
	Responses  pricing.Responses `json:"responses"`
	Remove     []string          `json:"remove"`
}

type EventFormUpdate struct {
	Saved   bool          `json:"saved"`
	Form    FormWithTotal `json:"form"`
	Summary *EventSummary `json:"summary"`
}

// DraftTotals is the outcome of an edit that has not been saved.
type DraftTotals struct {
	Dirty   bool              `json:"dirty"`
	Form    pricing.FormTotal `json:"form"`
	Summary pricing.Summary   `json:"summary"`
}

// AttachForm adds a template to the event. Every template field gets a
// response seeded from its current definition.
func (s *EventFormService) AttachForm(ctx context.Context, tenantID, eventID string, req AttachFormRequest) (*FormWithTotal, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, eventID)
	if err != nil {
		return nil, err
	}

	template, err := s.repo.FormRepo.GetFormTemplateWithFields(ctx, tenantID, req.FormID)
	if err != nil {
		return nil, lookupError("form", err)
	}
	if !template.IsActive {
		return nil, invalid("form is disabled")
	}

	if req.GuestCount < 0 {
		return nil, invalid("guest count cannot be negative")
	}
	guestPrice, err := nonNegativeAmount(req.GuestPrice, "guest_price")
	if err != nil {
		return nil, err
	}
	start, err := normalizeClock(req.StartTime, "start_time")
	if err != nil {
		return nil, err
	}
	end, err := normalizeClock(req.EndTime, "end_time")
	if err != nil {
		return nil, err
	}

	responses := make(pricing.Responses, len(template.Fields))
	defs := make(map[string]pricing.FieldDefinition, len(template.Fields))
	for _, tf := range template.Fields {
		def := tf.FieldDefinition.Pricing()
		defs[def.ID] = def
		responses[def.ID] = pricing.NewFieldResponse(def)
	}

	label := strings.TrimSpace(req.FormLabel)
	if label == "" {
		label = template.Name
	}

	order, err := s.repo.EventFormRepo.NextFormOrder(ctx, tenantID, eventID)
	if err != nil {
		return nil, dbError("failed to allocate form order", err)
	}

	form := &models.EventForm{
		TenantID:       event.TenantID,
		EventID:        event.ID,
		FormTemplateID: template.ID,
		FormLabel:      label,
		FormOrder:      order,
		GuestCount:     req.GuestCount,
		GuestPrice:     guestPrice,
		StartTime:      start,
		EndTime:        end,
		IsActive:       true,
	}
	if err := form.SetResponses(responses); err != nil {
		return nil, dbError("failed to encode responses", err)
	}
	live := pricing.CalculateFormTotal(form.Snapshot().Input(), defs)
	form.FormTotal = live.Total

	if err := s.repo.EventFormRepo.CreateEventForm(ctx, form); err != nil {
		return nil, dbError("failed to attach form", err)
	}
	return &FormWithTotal{EventForm: *form, Live: live}, nil
}

// ListForms returns the event's active forms with their live totals.
func (s *EventFormService) ListForms(ctx context.Context, tenantID, eventID string) ([]FormWithTotal, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	_, forms, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}
	return forms, nil
}

func (req UpdateEventFormRequest) patch() (pricing.Patch, error) {
	p := pricing.Patch{
		GuestCount: req.GuestCount,
		Responses:  req.Responses,
		Remove:     req.Remove,
	}
	if req.GuestCount != nil && *req.GuestCount < 0 {
		return p, invalid("guest count cannot be negative")
	}
	if req.GuestPrice != nil {
		price, err := nonNegativeAmount(req.GuestPrice, "guest_price")
		if err != nil {
			return p, err
		}
		p.GuestPrice = &price
	}
	if req.StartTime != nil {
		start, err := normalizeClock(*req.StartTime, "start_time")
		if err != nil {
			return p, err
		}
		p.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := normalizeClock(*req.EndTime, "end_time")
		if err != nil {
			return p, err
		}
		p.EndTime = &end
	}
	for id := range req.Responses {
		if _, err := uuid.Parse(id); err != nil {
			return p, invalid("response keys must be field ids")
		}
	}
	return p, nil
}

// openDraft loads the form and applies the edit without saving it.
func (s *EventFormService) openDraft(ctx context.Context, tenantID, formID string, req UpdateEventFormRequest) (*models.EventForm, *pricing.Draft, error) {
	form, err := s.repo.EventFormRepo.GetEventFormByID(ctx, tenantID, formID)
	if err != nil {
		return nil, nil, lookupError("event form", err)
	}
	p, err := req.patch()
	if err != nil {
		return nil, nil, err
	}
	draft := pricing.NewDraft(form.Snapshot())
	draft.Apply(p)
	return form, draft, nil
}

// UpdateForm saves an edit. An edit that changes nothing is not written.
// The form total is always recomputed here; a client-supplied total is never
// trusted.
func (s *EventFormService) UpdateForm(ctx context.Context, tenantID, formID string, req UpdateEventFormRequest) (*EventFormUpdate, error) {
	form, draft, err := s.openDraft(ctx, tenantID, formID, req)
	if err != nil {
		return nil, err
	}

	label := form.FormLabel
	if req.FormLabel != nil {
		if label = strings.TrimSpace(*req.FormLabel); label == "" {
			return nil, invalid("form label cannot be empty")
		}
	}

	result := &EventFormUpdate{}
	if draft.IsDirty() || label != form.FormLabel {
		current := draft.Current()
		defs, err := definitionsForResponses(ctx, s.repo, tenantID, current.Responses)
		if err != nil {
			return nil, err
		}

		form.FormLabel = label
		form.GuestCount = current.GuestCount
		form.GuestPrice = current.GuestPrice
		form.StartTime = current.StartTime
		form.EndTime = current.EndTime
		if err := form.SetResponses(current.Responses); err != nil {
			return nil, dbError("failed to encode responses", err)
		}
		form.FormTotal = pricing.FormTotalOf(current.Input(), defs)

		if err := s.repo.EventFormRepo.SaveEventForm(ctx, tenantID, form); err != nil {
			logger.WithTenant(tenantID).WithFields(logrus.Fields{
				"event_form_id": form.ID.String(),
				"error":         err,
			}).Error("failed to save event form")
			return nil, lookupError("event form", err)
		}
		draft.Commit()
		result.Saved = true
	}

	event, err := s.repo.EventRepo.GetEventByID(ctx, tenantID, form.EventID.String())
	if err != nil {
		return nil, lookupError("event", err)
	}
	summary, forms, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	result.Form = FormWithTotal{EventForm: *form}
	for _, f := range forms {
		if f.ID == form.ID {
			result.Form = f
			break
		}
	}
	return result, nil
}

// CalculateDraft prices an unsaved edit and shows what the event summary
// would become. Nothing is written.
func (s *EventFormService) CalculateDraft(ctx context.Context, tenantID, formID string, req UpdateEventFormRequest) (*DraftTotals, error) {
	form, draft, err := s.openDraft(ctx, tenantID, formID, req)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.EventRepo.GetEventByID(ctx, tenantID, form.EventID.String())
	if err != nil {
		return nil, lookupError("event", err)
	}
	summary, forms, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}

	current := draft.Current()
	defs, err := definitionsForResponses(ctx, s.repo, tenantID, current.Responses)
	if err != nil {
		return nil, err
	}
	live := pricing.CalculateFormTotal(current.Input(), defs)

	figures := make([]pricing.FormFigures, 0, len(forms))
	for _, f := range forms {
		fig := pricing.FormFigures{ID: f.ID.String(), Label: f.FormLabel, GuestCount: f.GuestCount, Total: f.Live.Total}
		if f.ID == form.ID {
			fig.GuestCount = current.GuestCount
			fig.Total = live.Total
		}
		figures = append(figures, fig)
	}
	payments := make([]pricing.PaymentFigures, 0, len(summary.Payments))
	for _, p := range summary.Payments {
		payments = append(payments, p.Figures())
	}

	return &DraftTotals{
		Dirty:   draft.IsDirty(),
		Form:    live,
		Summary: pricing.AggregateEvent(event.Figures(), figures, payments),
	}, nil
}

func (s *EventFormService) RemoveForm(ctx context.Context, tenantID, formID string) error {
	if err := s.repo.EventFormRepo.SoftDeleteEventForm(ctx, tenantID, formID); err != nil {
		return lookupError("event form", err)
	}
	return nil
}
