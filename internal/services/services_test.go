package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
)

type testEnv struct {
	repo     *repositories.Repository
	cfg      *config.Config
	tenantID string
	userID   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repositories.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := repositories.NewRepository(db)
	ctx := context.Background()

	tenant := &models.Tenant{Name: "Grand Hall", Slug: "grand-hall"}
	if err := repo.TenantRepo.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	user := &models.User{TenantID: tenant.ID, Email: "owner@grandhall.test", Password: "x", FullName: "Owner", Role: RoleAdmin, IsActive: true}
	if err := repo.UserRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	return &testEnv{
		repo:     repo,
		cfg:      &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, BalanceEditTTL: 15 * time.Minute, CalendarName: "Test"},
		tenantID: tenant.ID.String(),
		userID:   user.ID.String(),
	}
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (e *testEnv) createEvent(t *testing.T, req CreateEventRequest) *models.Event {
	t.Helper()
	if req.Title == "" {
		req.Title = "Summer Party"
	}
	if req.EventDate == "" {
		req.EventDate = "2025-07-12"
	}
	event, err := NewEventService(e.repo, e.cfg).CreateEvent(context.Background(), e.tenantID, req)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

// createPricedTemplate builds a template with one fixed-price toggle field.
func (e *testEnv) createPricedTemplate(t *testing.T) (*models.FormTemplate, *models.FieldDefinition) {
	t.Helper()
	ctx := context.Background()
	field, err := NewFieldService(e.repo, e.cfg).CreateField(ctx, e.tenantID, CreateFieldRequest{
		Label:          "Open bar",
		FieldType:      "price_field",
		AffectsPricing: true,
		PricingType:    "fixed",
		UnitPrice:      money("500"),
	})
	if err != nil {
		t.Fatalf("create field: %v", err)
	}
	form, err := NewFormTemplateService(e.repo, e.cfg).CreateFormTemplate(ctx, e.tenantID, CreateFormTemplateRequest{
		Name:   "Reception",
		Fields: []TemplateFieldInput{{FieldID: field.ID.String()}},
	})
	if err != nil {
		t.Fatalf("create form template: %v", err)
	}
	return form, field
}

func (e *testEnv) count(t *testing.T, model any, eventID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := e.repo.DB.Model(model).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestEventSummary_NoForms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{
		MenCount:          10,
		LadiesCount:       5,
		TotalGuestPrice:   money("300"),
		DeductibleDeposit: money("50"),
		RefundableDeposit: money("200"),
	})

	if _, err := NewPaymentService(env.repo, env.cfg).RecordPayment(ctx, env.tenantID, event.ID.String(), env.userID, RecordPaymentRequest{Amount: "100"}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	summary, err := NewEventService(env.repo, env.cfg).GetEventSummary(ctx, env.tenantID, event.ID.String())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalEventValue.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("total event value = %s, want 250", summary.TotalEventValue)
	}
	if !summary.RemainingBalance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("remaining balance = %s, want 150", summary.RemainingBalance)
	}
	if summary.GuestCount != 15 {
		t.Fatalf("guest count = %d, want 15", summary.GuestCount)
	}
	if len(summary.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(summary.Payments))
	}
}

func TestEventService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEventService(env.repo, env.cfg)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateEventRequest
	}{
		{"bad date", CreateEventRequest{Title: "A", EventDate: "12/07/2025"}},
		{"bad time", CreateEventRequest{Title: "A", EventDate: "2025-07-12", StartTime: "25:99"}},
		{"negative price", CreateEventRequest{Title: "A", EventDate: "2025-07-12", TotalGuestPrice: money("-1")}},
		{"price beyond column", CreateEventRequest{Title: "A", EventDate: "2025-07-12", DeductibleDeposit: money("10000000000")}},
		{"bad status", CreateEventRequest{Title: "A", EventDate: "2025-07-12", Status: "booked"}},
		{"unknown customer", CreateEventRequest{Title: "A", EventDate: "2025-07-12", CustomerID: uuid.NewString()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, env.tenantID, tc.req)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !HasCode(err, ErrInvalidInput) && !HasCode(err, ErrNotFound) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	event, err := svc.CreateEvent(ctx, env.tenantID, CreateEventRequest{Title: " Gala ", EventDate: "2025-07-12", StartTime: "18:30:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if event.Title != "Gala" || event.StartTime != "18:30" || event.Status != "enquiry" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestEventService_UpdateKeepsUnsetFields(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEventService(env.repo, env.cfg)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{MenCount: 20, TotalGuestPrice: money("300")})

	title := "Winter Ball"
	status := "confirmed"
	updated, err := svc.UpdateEvent(ctx, env.tenantID, event.ID.String(), UpdateEventRequest{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Status != status {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if updated.MenCount != 20 || !updated.TotalGuestPrice.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unset fields changed: men=%d price=%s", updated.MenCount, updated.TotalGuestPrice)
	}
}

func TestEventService_DeletedEventIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEventService(env.repo, env.cfg)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})
	id := event.ID.String()

	if err := svc.DeleteEvent(ctx, env.tenantID, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	title := "Revived"
	if _, err := svc.UpdateEvent(ctx, env.tenantID, id, UpdateEventRequest{Title: &title}); !HasCode(err, ErrNotFound) {
		t.Fatalf("update deleted event: expected NOT_FOUND, got %v", err)
	}
	if _, err := svc.GetEventSummary(ctx, env.tenantID, id); !HasCode(err, ErrNotFound) {
		t.Fatalf("summary of deleted event: expected NOT_FOUND, got %v", err)
	}
	if _, _, err := svc.BookingQRCode(ctx, env.tenantID, id, 128); !HasCode(err, ErrNotFound) {
		t.Fatalf("qr code of deleted event: expected NOT_FOUND, got %v", err)
	}
}

func TestEventService_LookupBooking(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEventService(env.repo, env.cfg)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{TotalGuestPrice: money("300")})

	png, ref, err := svc.BookingQRCode(ctx, env.tenantID, event.ID.String(), 128)
	if err != nil {
		t.Fatalf("qr code: %v", err)
	}
	if len(png) == 0 || ref == "" {
		t.Fatalf("empty qr code or reference")
	}

	found, err := svc.LookupBooking(ctx, env.tenantID, ref+"|"+event.ID.String())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.Event.ID != event.ID || !found.Summary.RemainingBalance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected lookup result: %+v", found)
	}

	if _, err := svc.LookupBooking(ctx, env.tenantID, "EVT-00000000|"+event.ID.String()); !HasCode(err, ErrInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for mismatched reference, got %v", err)
	}
}
