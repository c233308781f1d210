package calendar

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/peritasorg/eventis-sub000/internal/pricing"
)

func TestDeriveWindow_SpansAllForms(t *testing.T) {
	forms := []FormTimes{
		{Label: "Ceremony", StartTime: "10:00", EndTime: "12:00"},
		{Label: "Lunch", StartTime: "09:00:00", EndTime: "11:00"},
	}
	w, err := DeriveWindow("", "", forms)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if w.String() != "09:00-12:00" {
		t.Fatalf("window = %s, want 09:00-12:00", w)
	}
}

func TestDeriveWindow_EventTimesWin(t *testing.T) {
	forms := []FormTimes{{StartTime: "08:00", EndTime: "23:00"}}
	w, err := DeriveWindow("18:30", "23:45", forms)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if w.String() != "18:30-23:45" {
		t.Fatalf("window = %s, want 18:30-23:45", w)
	}
}

func TestDeriveWindow_IgnoresIncompleteForms(t *testing.T) {
	forms := []FormTimes{
		{StartTime: "07:00"},
		{EndTime: "23:59"},
		{StartTime: "noon", EndTime: "14:00"},
		{StartTime: "13:00", EndTime: "15:00"},
	}
	w, err := DeriveWindow("12:00", "", forms)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if w.String() != "13:00-15:00" {
		t.Fatalf("window = %s, want 13:00-15:00", w)
	}
}

func TestDeriveWindow_NoTimes(t *testing.T) {
	_, err := DeriveWindow("", "", []FormTimes{{StartTime: "10:00"}})
	if !errors.Is(err, ErrNoTimeWindow) {
		t.Fatalf("expected ErrNoTimeWindow, got %v", err)
	}
}

func TestBuildPreview(t *testing.T) {
	event := EventInfo{Title: "Khan Wedding", EventType: "Wedding", EventDate: "2025-08-16"}
	forms := []FormTimes{
		{Label: "Nikkah", StartTime: "10:00", EndTime: "12:00", GuestCount: 80},
		{Label: "Walima", StartTime: "09:00", EndTime: "11:00", GuestCount: 200},
	}
	summary := pricing.Summary{
		GuestCount:       280,
		TotalEventValue:  decimal.NewFromInt(12500),
		RemainingBalance: decimal.RequireFromString("4250.5"),
	}

	p, err := BuildPreview(event, "Amir Khan", forms, summary)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Action != ActionCreate {
		t.Fatalf("action = %s, want create", p.Action)
	}
	if p.Title != "Khan Wedding - Amir Khan" {
		t.Fatalf("title = %q", p.Title)
	}
	if p.StartTime != "09:00" || p.EndTime != "12:00" {
		t.Fatalf("window = %s-%s, want 09:00-12:00", p.StartTime, p.EndTime)
	}
	for _, want := range []string{"Wedding", "Nikkah: 10:00-12:00, 80 guests", "£12,500.00", "£4,250.50"} {
		if !strings.Contains(p.Description, want) {
			t.Fatalf("description missing %q:\n%s", want, p.Description)
		}
	}

	event.ExternalCalendarID = "cal-123"
	p, err = BuildPreview(event, "Amir Khan", forms, summary)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Action != ActionUpdate || p.ExternalID != "cal-123" {
		t.Fatalf("expected update of cal-123, got %s %q", p.Action, p.ExternalID)
	}
}

func TestPreviewValidate(t *testing.T) {
	p := Preview{Title: "x", Date: "2025-01-01", StartTime: "12:00", EndTime: "11:00"}
	if err := p.Validate(); err == nil {
		t.Fatalf("end before start should fail")
	}
	p.EndTime = "13:00"
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
