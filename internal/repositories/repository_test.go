package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/peritasorg/eventis-sub000/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
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
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepository(db)
}

func seedEvent(t *testing.T, repo *Repository, tenantID uuid.UUID) *models.Event {
	t.Helper()
	event := &models.Event{
		TenantID:        tenantID,
		Title:           "Summer Party",
		EventDate:       datatypes.Date(time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)),
		TotalGuestPrice: decimal.NewFromInt(300),
		Status:          "confirmed",
	}
	if err := repo.EventRepo.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func TestEventRepo_TenantScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()
	event := seedEvent(t, repo, tenantA)

	if _, err := repo.EventRepo.GetEventByID(ctx, tenantA.String(), event.ID.String()); err != nil {
		t.Fatalf("get own event: %v", err)
	}

	_, err := repo.EventRepo.GetEventByID(ctx, tenantB.String(), event.ID.String())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}
	if err.Error() != "event not found with ID: "+event.ID.String() {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if err := repo.EventRepo.SoftDeleteEvent(ctx, tenantB.String(), event.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("soft delete across tenants should be not found, got %v", err)
	}
}

func TestEventFormRepo_ListActiveFormsOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := uuid.New()
	event := seedEvent(t, repo, tenant)

	for _, order := range []int{3, 1, 2} {
		form := &models.EventForm{
			TenantID:       tenant,
			EventID:        event.ID,
			FormTemplateID: uuid.New(),
			FormOrder:      order,
		}
		if err := repo.EventFormRepo.CreateEventForm(ctx, form); err != nil {
			t.Fatalf("create form: %v", err)
		}
		if order == 2 {
			if err := repo.EventFormRepo.SoftDeleteEventForm(ctx, tenant.String(), form.ID.String()); err != nil {
				t.Fatalf("soft delete: %v", err)
			}
		}
	}

	forms, err := repo.EventFormRepo.ListActiveForms(ctx, tenant.String(), event.ID.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(forms) != 2 || forms[0].FormOrder != 1 || forms[1].FormOrder != 3 {
		t.Fatalf("unexpected forms: %+v", forms)
	}

	next, err := repo.EventFormRepo.NextFormOrder(ctx, tenant.String(), event.ID.String())
	if err != nil {
		t.Fatalf("next order: %v", err)
	}
	if next != 4 {
		t.Fatalf("next order = %d, want 4", next)
	}
}

func TestEventFormRepo_SaveEventForm(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := uuid.New()
	event := seedEvent(t, repo, tenant)

	form := &models.EventForm{TenantID: tenant, EventID: event.ID, FormTemplateID: uuid.New()}
	if err := repo.EventFormRepo.CreateEventForm(ctx, form); err != nil {
		t.Fatalf("create form: %v", err)
	}

	form.GuestCount = 40
	form.GuestPrice = decimal.NewFromInt(25)
	form.FormTotal = decimal.NewFromInt(1000)
	form.FormResponses = datatypes.JSON(`{"x":{"price":10}}`)
	if err := repo.EventFormRepo.SaveEventForm(ctx, tenant.String(), form); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.EventFormRepo.GetEventFormByID(ctx, tenant.String(), form.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GuestCount != 40 || !got.FormTotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("save not persisted: %+v", got)
	}
	if len(got.Responses()) != 1 {
		t.Fatalf("responses not persisted: %s", got.FormResponses)
	}
}

func TestRepository_TransactionRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := uuid.New()
	event := seedEvent(t, repo, tenant)

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *Repository) error {
		if err := tx.PaymentRepo.CreatePayment(ctx, &models.EventPayment{
			TenantID:  tenant,
			EventID:   event.ID,
			AmountGBP: decimal.NewFromInt(50),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	payments, err := repo.PaymentRepo.ListPayments(ctx, tenant.String(), event.ID.String())
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("payment survived rollback: %+v", payments)
	}
}

func TestBalanceModification_IsImmutable(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := uuid.New()
	event := seedEvent(t, repo, tenant)

	mod := &models.BalanceModification{
		TenantID:         tenant,
		EventID:          event.ID,
		OriginalBalance:  decimal.NewFromInt(100),
		NewBalance:       decimal.NewFromInt(80),
		EditReason:       "discount",
		ModifiedBy:       uuid.New(),
		RiskAcknowledged: true,
	}
	if err := repo.BalanceRepo.CreateBalanceModification(ctx, mod); err != nil {
		t.Fatalf("create: %v", err)
	}

	mod.EditReason = "changed"
	if err := repo.DB.Save(mod).Error; !errors.Is(err, models.ErrImmutable) {
		t.Fatalf("expected ErrImmutable, got %v", err)
	}
}

func TestCustomerRepo_Search(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := uuid.New()

	for _, name := range []string{"Aisha Patel", "Ben Carter", "Priya Shah"} {
		if err := repo.CustomerRepo.CreateCustomer(ctx, &models.Customer{TenantID: tenant, Name: name}); err != nil {
			t.Fatalf("create customer: %v", err)
		}
	}
	if err := repo.CustomerRepo.CreateCustomer(ctx, &models.Customer{TenantID: uuid.New(), Name: "Amir Patel"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	customers, total, err := repo.CustomerRepo.ListCustomers(ctx, tenant.String(), 0, 20, "PATEL")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(customers) != 1 || customers[0].Name != "Aisha Patel" {
		t.Fatalf("unexpected search result: total=%d %+v", total, customers)
	}
}
