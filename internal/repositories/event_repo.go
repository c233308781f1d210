package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type EventFilters struct {
	IsActive   *bool
	Status     string
	CustomerID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

// CreateEvent creates a new event
func (r *eventRepo) CreateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	return r.db.WithContext(ctx).Omit("Customer").Create(event).Error
}

// GetEventByID retrieves an event by its ID
func (r *eventRepo) GetEventByID(ctx context.Context, tenantID, id string) (*models.Event, error) {
	if id == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var event models.Event
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&event).Error; err != nil {
		return nil, wrapFind(err, "event", id)
	}

	return &event, nil
}

// GetEventWithCustomer retrieves an event with its customer preloaded
func (r *eventRepo) GetEventWithCustomer(ctx context.Context, tenantID, id string) (*models.Event, error) {
	if id == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var event models.Event
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&event).Error; err != nil {
		return nil, wrapFind(err, "event", id)
	}

	return &event, nil
}

// ListEvents retrieves a paginated list of events with optional filters
func (r *eventRepo) ListEvents(ctx context.Context, tenantID string, offset, limit int, filters *EventFilters) ([]models.Event, int64, error) {
	offset, limit = clampPage(offset, limit)

	var events []models.Event
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Event{}).Where("tenant_id = ?", tenantID)

	// Apply filters
	if filters != nil {
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.CustomerID != "" {
			query = query.Where("customer_id = ?", filters.CustomerID)
		}
		if filters.DateFrom != nil {
			query = query.Where("event_date >= ?", filters.DateFrom.Format("2006-01-02"))
		}
		if filters.DateTo != nil {
			query = query.Where("event_date <= ?", filters.DateTo.Format("2006-01-02"))
		}
		if filters.Search != "" {
			term := likeTerm(filters.Search)
			query = query.Where("LOWER(title) LIKE ? OR LOWER(event_type) LIKE ?", term, term)
		}
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	// Fetch paginated results
	if err := query.
		Preload("Customer").
		Offset(offset).
		Limit(limit).
		Order("event_date ASC, created_at DESC").
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// UpdateEvent updates an existing event
func (r *eventRepo) UpdateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	var existing models.Event
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", event.TenantID, event.ID).
		First(&existing).Error; err != nil {
		return wrapFind(err, "event", event.ID.String())
	}

	return r.db.WithContext(ctx).Omit("Customer").Save(event).Error
}

// SoftDeleteEvent soft deletes an event by setting is_active to false
func (r *eventRepo) SoftDeleteEvent(ctx context.Context, tenantID, id string) error {
	if id == "" {
		return errors.New("event ID cannot be empty")
	}

	result := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to soft delete event: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return notFound("event", id)
	}

	return nil
}

func (r *eventRepo) MarkCalendarSynced(ctx context.Context, tenantID, id, externalID string) error {
	result := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"external_calendar_id": externalID,
			"calendar_synced_at":   time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record calendar sync: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("event", id)
	}
	return nil
}

type eventFormRepo struct {
	db *gorm.DB
}

func NewEventFormRepository(db *gorm.DB) EventFormRepository {
	return &eventFormRepo{db: db}
}

func (r *eventFormRepo) CreateEventForm(ctx context.Context, form *models.EventForm) error {
	if form == nil {
		return errors.New("event form cannot be nil")
	}

	var event models.Event
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", form.TenantID, form.EventID).
		First(&event).Error; err != nil {
		return wrapFind(err, "event", form.EventID.String())
	}

	return r.db.WithContext(ctx).Create(form).Error
}

func (r *eventFormRepo) GetEventFormByID(ctx context.Context, tenantID, id string) (*models.EventForm, error) {
	var form models.EventForm
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND is_active = ?", tenantID, id, true).
		First(&form).Error; err != nil {
		return nil, wrapFind(err, "event form", id)
	}
	return &form, nil
}

// ListActiveForms returns the event's active forms in display order.
func (r *eventFormRepo) ListActiveForms(ctx context.Context, tenantID, eventID string) ([]models.EventForm, error) {
	var forms []models.EventForm
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ? AND is_active = ?", tenantID, eventID, true).
		Order("form_order ASC, created_at ASC").
		Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list event forms: %w", err)
	}
	return forms, nil
}

func (r *eventFormRepo) NextFormOrder(ctx context.Context, tenantID, eventID string) (int, error) {
	var row struct {
		MaxOrder *int
	}
	if err := r.db.WithContext(ctx).Model(&models.EventForm{}).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Select("MAX(form_order) AS max_order").
		Scan(&row).Error; err != nil {
		return 0, err
	}
	if row.MaxOrder == nil {
		return 1, nil
	}
	return *row.MaxOrder + 1, nil
}

// SaveEventForm writes the editable columns and the cached total. The last
// save wins; there is no version check.
func (r *eventFormRepo) SaveEventForm(ctx context.Context, tenantID string, form *models.EventForm) error {
	if form == nil {
		return errors.New("event form cannot be nil")
	}

	result := r.db.WithContext(ctx).Model(&models.EventForm{}).
		Where("tenant_id = ? AND id = ? AND is_active = ?", tenantID, form.ID, true).
		Updates(map[string]any{
			"form_label":     form.FormLabel,
			"form_responses": form.FormResponses,
			"guest_count":    form.GuestCount,
			"guest_price":    form.GuestPrice,
			"start_time":     form.StartTime,
			"end_time":       form.EndTime,
			"form_total":     form.FormTotal,
			"updated_at":     time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to save event form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("event form", form.ID.String())
	}
	return nil
}

func (r *eventFormRepo) SoftDeleteEventForm(ctx context.Context, tenantID, id string) error {
	result := r.db.WithContext(ctx).Model(&models.EventForm{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to soft delete event form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("event form", id)
	}
	return nil
}

// ListAllActiveForms is used by background jobs and spans every tenant.
func (r *eventFormRepo) ListAllActiveForms(ctx context.Context) ([]models.EventForm, error) {
	var forms []models.EventForm
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("tenant_id ASC, event_id ASC, form_order ASC").
		Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list event forms: %w", err)
	}
	return forms, nil
}
