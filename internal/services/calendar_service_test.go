package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/pkg/logger"
)

type failingProvider struct{}

func (failingProvider) Create(context.Context, string, calendar.Preview) (string, error) {
	return "", errors.New("calendar unavailable")
}

func (failingProvider) Update(context.Context, string, string, calendar.Preview) error {
	return errors.New("calendar unavailable")
}

func TestCalendarService_PreviewSpansForms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer, err := NewCustomerService(env.repo, env.cfg).CreateCustomer(ctx, env.tenantID, CreateCustomerRequest{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	event := env.createEvent(t, CreateEventRequest{Title: "Wedding", CustomerID: customer.ID.String()})
	template, _ := env.createPricedTemplate(t)

	forms := NewEventFormService(env.repo, env.cfg)
	for _, window := range [][2]string{{"10:00", "12:00"}, {"09:00:00", "11:00:00"}, {"08:00", ""}} {
		if _, err := forms.AttachForm(ctx, env.tenantID, event.ID.String(), AttachFormRequest{
			FormID:    template.ID.String(),
			StartTime: window[0],
			EndTime:   window[1],
		}); err != nil {
			t.Fatalf("attach form: %v", err)
		}
	}

	svc := NewCalendarService(env.repo, env.cfg, calendar.NewLogProvider(logger.Log, env.cfg.CalendarName))
	preview, err := svc.Preview(ctx, env.tenantID, event.ID.String())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.StartTime != "09:00" || preview.EndTime != "12:00" {
		t.Fatalf("window = %s-%s, want 09:00-12:00", preview.StartTime, preview.EndTime)
	}
	if preview.Title != "Wedding - Jane Doe" || preview.Action != calendar.ActionCreate {
		t.Fatalf("unexpected preview: %+v", preview)
	}
	if preview.Date != "2025-07-12" {
		t.Fatalf("date = %s", preview.Date)
	}
	if !strings.Contains(preview.Description, "Remaining balance") {
		t.Fatalf("description missing balance: %q", preview.Description)
	}
}

func TestCalendarService_NoTimeWindow(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, CreateEventRequest{})
	svc := NewCalendarService(env.repo, env.cfg, calendar.NewLogProvider(logger.Log, "Test"))

	if _, err := svc.Preview(context.Background(), env.tenantID, event.ID.String()); !HasCode(err, ErrNoTimeWindow) {
		t.Fatalf("expected NO_TIME_WINDOW, got %v", err)
	}
}

func TestCalendarService_SyncRecordsExternalID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{StartTime: "18:00", EndTime: "23:00"})
	svc := NewCalendarService(env.repo, env.cfg, calendar.NewLogProvider(logger.Log, "Test"))

	preview, err := svc.Preview(ctx, env.tenantID, event.ID.String())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	preview.Title = "Edited title"

	result, err := svc.Sync(ctx, env.tenantID, event.ID.String(), env.userID, *preview)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Action != calendar.ActionCreate || result.ExternalID == "" {
		t.Fatalf("unexpected sync result: %+v", result)
	}

	stored, err := env.repo.EventRepo.GetEventByID(ctx, env.tenantID, event.ID.String())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ExternalCalendarID != result.ExternalID || stored.CalendarSyncedAt == nil {
		t.Fatalf("sync not recorded: %+v", stored)
	}
	if n := env.count(t, &models.CommunicationLog{}, event.ID); n != 1 {
		t.Fatalf("communication logs = %d, want 1", n)
	}

	again, err := svc.Preview(ctx, env.tenantID, event.ID.String())
	if err != nil {
		t.Fatalf("second preview: %v", err)
	}
	if again.Action != calendar.ActionUpdate || again.ExternalID != result.ExternalID {
		t.Fatalf("second preview should update %s: %+v", result.ExternalID, again)
	}
}

func TestCalendarService_SyncFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, CreateEventRequest{StartTime: "18:00", EndTime: "23:00"})

	preview := calendar.Preview{Title: "Party", Date: "2025-07-12", StartTime: "18:00", EndTime: "23:00"}
	svc := NewCalendarService(env.repo, env.cfg, failingProvider{})
	if _, err := svc.Sync(ctx, env.tenantID, event.ID.String(), env.userID, preview); !HasCode(err, ErrCalendarSyncFailed) {
		t.Fatalf("expected CALENDAR_SYNC_FAILED, got %v", err)
	}

	stored, err := env.repo.EventRepo.GetEventByID(ctx, env.tenantID, event.ID.String())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ExternalCalendarID != "" {
		t.Fatalf("failed sync stored an external id")
	}

	preview.EndTime = ""
	if _, err := svc.Sync(ctx, env.tenantID, event.ID.String(), env.userID, preview); !HasCode(err, ErrNoTimeWindow) {
		t.Fatalf("expected NO_TIME_WINDOW for edited preview without end, got %v", err)
	}
}
