package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

var eventStatuses = map[string]bool{"enquiry": true, "confirmed": true, "completed": true, "cancelled": true}

type EventService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewEventService(repo *repositories.Repository, cfg *config.Config) *EventService {
	return &EventService{repo: repo, cfg: cfg}
}

type CreateEventRequest struct {
	CustomerID        string           `json:"customer_id" validate:"omitempty,uuid"`
	Title             string           `json:"title" validate:"required,max=200"`
	EventType         string           `json:"event_type" validate:"max=80"`
	EventDate         string           `json:"event_date" validate:"required"`
	StartTime         string           `json:"start_time"`
	EndTime           string           `json:"end_time"`
	MenCount          int              `json:"men_count" validate:"min=0"`
	LadiesCount       int              `json:"ladies_count" validate:"min=0"`
	TotalGuestPrice   *decimal.Decimal `json:"total_guest_price_gbp"`
	RefundableDeposit *decimal.Decimal `json:"refundable_deposit_gbp"`
	DeductibleDeposit *decimal.Decimal `json:"deductible_deposit_gbp"`
	Status            string           `json:"status"`
	Notes             string           `json:"notes"`
}

type UpdateEventRequest struct {
	CustomerID        *string          `json:"customer_id" validate:"omitempty,uuid" copier:"-"`
	Title             *string          `json:"title" validate:"omitempty,min=1,max=200"`
	EventType         *string          `json:"event_type" validate:"omitempty,max=80"`
	EventDate         *string          `json:"event_date" copier:"-"`
	StartTime         *string          `json:"start_time" copier:"-"`
	EndTime           *string          `json:"end_time" copier:"-"`
	MenCount          *int             `json:"men_count" validate:"omitempty,min=0"`
	LadiesCount       *int             `json:"ladies_count" validate:"omitempty,min=0"`
	TotalGuestPrice   *decimal.Decimal `json:"total_guest_price_gbp" copier:"-"`
	RefundableDeposit *decimal.Decimal `json:"refundable_deposit_gbp" copier:"-"`
	DeductibleDeposit *decimal.Decimal `json:"deductible_deposit_gbp" copier:"-"`
	Status            *string          `json:"status" copier:"-"`
	Notes             *string          `json:"notes"`
}

func parseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, invalid("dates must be formatted YYYY-MM-DD")
	}
	return datatypes.Date(t), nil
}

// normalizeClock accepts HH:MM[:SS] or empty and returns HH:MM or empty.
func normalizeClock(s, field string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	c, ok := calendar.ParseClock(s)
	if !ok {
		return "", invalid(field + " must be formatted HH:MM")
	}
	return c.String(), nil
}

func nonNegativeAmount(d *decimal.Decimal, field string) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, nil
	}
	if d.IsNegative() {
		return decimal.Zero, invalid(field + " cannot be negative")
	}
	if err := pricing.CheckAmount(*d); err != nil {
		return decimal.Zero, amountError(field, err)
	}
	return pricing.RoundMoney(*d), nil
}

func (s *EventService) CreateEvent(ctx context.Context, tenantID string, req CreateEventRequest) (*models.Event, error) {
	tid, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, invalid("invalid tenant id")
	}

	event := &models.Event{
		TenantID:    tid,
		Title:       strings.TrimSpace(req.Title),
		EventType:   strings.TrimSpace(req.EventType),
		MenCount:    req.MenCount,
		LadiesCount: req.LadiesCount,
		Status:      "enquiry",
		Notes:       req.Notes,
		IsActive:    true,
	}
	if event.Title == "" {
		return nil, invalid("title is required")
	}
	if event.MenCount < 0 || event.LadiesCount < 0 {
		return nil, invalid("guest counts cannot be negative")
	}
	if req.Status != "" {
		if !eventStatuses[req.Status] {
			return nil, invalid("invalid status: must be enquiry, confirmed, completed, or cancelled")
		}
		event.Status = req.Status
	}

	if event.EventDate, err = parseDate(req.EventDate); err != nil {
		return nil, err
	}
	if event.StartTime, err = normalizeClock(req.StartTime, "start_time"); err != nil {
		return nil, err
	}
	if event.EndTime, err = normalizeClock(req.EndTime, "end_time"); err != nil {
		return nil, err
	}
	if event.TotalGuestPrice, err = nonNegativeAmount(req.TotalGuestPrice, "total_guest_price_gbp"); err != nil {
		return nil, err
	}
	if event.RefundableDeposit, err = nonNegativeAmount(req.RefundableDeposit, "refundable_deposit_gbp"); err != nil {
		return nil, err
	}
	if event.DeductibleDeposit, err = nonNegativeAmount(req.DeductibleDeposit, "deductible_deposit_gbp"); err != nil {
		return nil, err
	}

	if req.CustomerID != "" {
		if err := s.attachCustomer(ctx, tenantID, event, req.CustomerID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.EventRepo.CreateEvent(ctx, event); err != nil {
		return nil, dbError("failed to create event", err)
	}
	return event, nil
}

func (s *EventService) attachCustomer(ctx context.Context, tenantID string, event *models.Event, customerID string) error {
	customer, err := s.repo.CustomerRepo.GetCustomerByID(ctx, tenantID, customerID)
	if err != nil {
		return lookupError("customer", err)
	}
	event.CustomerID = &customer.ID
	event.Customer = customer
	return nil
}

func (s *EventService) UpdateEvent(ctx context.Context, tenantID, id string, req UpdateEventRequest) (*models.Event, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := copier.CopyWithOption(event, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("copy event fields: %w", err)
	}
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return nil, invalid("title is required")
	}
	if event.MenCount < 0 || event.LadiesCount < 0 {
		return nil, invalid("guest counts cannot be negative")
	}

	if req.Status != nil {
		if !eventStatuses[*req.Status] {
			return nil, invalid("invalid status: must be enquiry, confirmed, completed, or cancelled")
		}
		event.Status = *req.Status
	}
	if req.EventDate != nil {
		if event.EventDate, err = parseDate(*req.EventDate); err != nil {
			return nil, err
		}
	}
	if req.StartTime != nil {
		if event.StartTime, err = normalizeClock(*req.StartTime, "start_time"); err != nil {
			return nil, err
		}
	}
	if req.EndTime != nil {
		if event.EndTime, err = normalizeClock(*req.EndTime, "end_time"); err != nil {
			return nil, err
		}
	}
	if req.TotalGuestPrice != nil {
		if event.TotalGuestPrice, err = nonNegativeAmount(req.TotalGuestPrice, "total_guest_price_gbp"); err != nil {
			return nil, err
		}
	}
	if req.RefundableDeposit != nil {
		if event.RefundableDeposit, err = nonNegativeAmount(req.RefundableDeposit, "refundable_deposit_gbp"); err != nil {
			return nil, err
		}
	}
	if req.DeductibleDeposit != nil {
		if event.DeductibleDeposit, err = nonNegativeAmount(req.DeductibleDeposit, "deductible_deposit_gbp"); err != nil {
			return nil, err
		}
	}
	if req.CustomerID != nil {
		if *req.CustomerID == "" {
			event.CustomerID = nil
		} else if err := s.attachCustomer(ctx, tenantID, event, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.EventRepo.UpdateEvent(ctx, event); err != nil {
		return nil, dbError("failed to update event", err)
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, tenantID string, page, pageSize int, filters *repositories.EventFilters) ([]models.Event, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if filters == nil {
		active := true
		filters = &repositories.EventFilters{IsActive: &active}
	}

	offset := (page - 1) * pageSize
	events, total, err := s.repo.EventRepo.ListEvents(ctx, tenantID, offset, pageSize, filters)
	if err != nil {
		return nil, 0, 0, dbError("failed to list events", err)
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return events, total, totalPages, nil
}

func (s *EventService) GetEvent(ctx context.Context, tenantID, id string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEventWithCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("event", err)
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, tenantID, id string) error {
	if err := s.repo.EventRepo.SoftDeleteEvent(ctx, tenantID, id); err != nil {
		return lookupError("event", err)
	}
	return nil
}

// GetEventSummary recomputes the event's totals and balance from its forms
// and payments.
func (s *EventService) GetEventSummary(ctx context.Context, tenantID, id string) (*EventSummary, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, id)
	if err != nil {
		return nil, err
	}
	summary, _, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// BookingQRCode renders the event's booking reference as a PNG.
func (s *EventService) BookingQRCode(ctx context.Context, tenantID, id string, size int) ([]byte, string, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, id)
	if err != nil {
		return nil, "", err
	}
	png, err := utils.GenerateQRCodePNG(utils.BookingPayload(event.ID), size)
	if err != nil {
		return nil, "", err
	}
	return png, utils.BookingReference(event.ID), nil
}

type BookingLookup struct {
	Reference string        `json:"reference"`
	Event     *models.Event `json:"event"`
	Summary   *EventSummary `json:"summary"`
}

// LookupBooking resolves a scanned booking QR payload to its event.
func (s *EventService) LookupBooking(ctx context.Context, tenantID, payload string) (*BookingLookup, error) {
	ref, eventID, err := utils.ParseBookingReference(strings.TrimSpace(payload))
	if err != nil {
		return nil, NewServiceError("invalid booking code", ErrInvalidInput, err)
	}

	event, err := s.GetEvent(ctx, tenantID, eventID.String())
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, NewServiceError("event has been deleted", ErrNotFound, nil)
	}

	summary, _, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}
	return &BookingLookup{Reference: ref, Event: event, Summary: summary}, nil
}

type DashboardStats struct {
	EventsByStatus         []repositories.StatusCount `json:"events_by_status"`
	UpcomingEvents         []models.Event             `json:"upcoming_events"`
	CustomerCount          int64                      `json:"customer_count"`
	PaymentsLast30Days     decimal.Decimal            `json:"payments_last_30_days"`
	BalanceEditsLast30Days int64                      `json:"balance_edits_last_30_days"`
}

func (s *EventService) GetDashboardStats(ctx context.Context, tenantID string, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.EventsByStatus, err = s.repo.CountEventsByStatus(ctx, tenantID); err != nil {
		return nil, dbError("failed to count events", err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if stats.UpcomingEvents, err = s.repo.UpcomingEvents(ctx, tenantID, today, today.AddDate(0, 0, 30), 10); err != nil {
		return nil, dbError("failed to list upcoming events", err)
	}
	if stats.CustomerCount, err = s.repo.CustomerRepo.CountCustomers(ctx, tenantID); err != nil {
		return nil, dbError("failed to count customers", err)
	}
	since := now.AddDate(0, 0, -30)
	if stats.PaymentsLast30Days, err = s.repo.PaymentsReceivedSince(ctx, tenantID, since); err != nil {
		return nil, dbError("failed to sum payments", err)
	}
	if stats.BalanceEditsLast30Days, err = s.repo.CountBalanceModifications(ctx, tenantID, since); err != nil {
		return nil, dbError("failed to count balance edits", err)
	}

	return stats, nil
}

// requireEvent loads an active event or fails with NOT_FOUND.
func requireEvent(ctx context.Context, repo *repositories.Repository, tenantID, id string) (*models.Event, error) {
	event, err := repo.EventRepo.GetEventByID(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("event", err)
	}
	if !event.IsActive {
		return nil, NewServiceError("event not found", ErrNotFound, errors.New("event is deleted"))
	}
	return event, nil
}
