package calendar

import (
	"fmt"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/pricing"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// EventInfo is the event data shown in the calendar entry.
type EventInfo struct {
	Title              string
	EventType          string
	EventDate          string
	StartTime          string
	EndTime            string
	MenCount           int
	LadiesCount        int
	ExternalCalendarID string
}

// Preview is the proposed calendar entry. Users may edit every field before
// it is synced.
type Preview struct {
	Action      Action `json:"action"`
	ExternalID  string `json:"external_id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Description string `json:"description"`
}

// BuildPreview fails with ErrNoTimeWindow when no time window can be derived.
func BuildPreview(event EventInfo, customerName string, forms []FormTimes, summary pricing.Summary) (Preview, error) {
	window, err := DeriveWindow(event.StartTime, event.EndTime, forms)
	if err != nil {
		return Preview{}, err
	}

	p := Preview{
		Action:      ActionCreate,
		Title:       event.Title,
		Date:        event.EventDate,
		StartTime:   window.Start.String(),
		EndTime:     window.End.String(),
		Description: describe(event, forms, summary),
	}
	if customerName != "" {
		p.Title = event.Title + " - " + customerName
	}
	if event.ExternalCalendarID != "" {
		p.Action = ActionUpdate
		p.ExternalID = event.ExternalCalendarID
	}
	return p, nil
}

func describe(event EventInfo, forms []FormTimes, summary pricing.Summary) string {
	var b strings.Builder
	if event.EventType != "" {
		fmt.Fprintf(&b, "Event type: %s\n", event.EventType)
	}
	if len(forms) == 0 {
		fmt.Fprintf(&b, "Guests: %d (men %d, ladies %d)\n", summary.GuestCount, event.MenCount, event.LadiesCount)
	} else {
		fmt.Fprintf(&b, "Guests: %d\n", summary.GuestCount)
		for _, f := range forms {
			label := f.Label
			if label == "" {
				label = "Form"
			}
			times := "time not set"
			if s, ok := ParseClock(f.StartTime); ok {
				if e, ok := ParseClock(f.EndTime); ok {
					times = Window{Start: s, End: e}.String()
				}
			}
			fmt.Fprintf(&b, "- %s: %s, %d guests\n", label, times, f.GuestCount)
		}
	}
	fmt.Fprintf(&b, "Total event value: %s\n", pricing.FormatGBP(summary.TotalEventValue))
	fmt.Fprintf(&b, "Remaining balance: %s", pricing.FormatGBP(summary.RemainingBalance))
	return b.String()
}

// Validate checks an edited preview before sync.
func (p Preview) Validate() error {
	s, ok1 := ParseClock(p.StartTime)
	e, ok2 := ParseClock(p.EndTime)
	if !ok1 || !ok2 {
		return ErrNoTimeWindow
	}
	if e <= s {
		return fmt.Errorf("end time %s must be after start time %s", e, s)
	}
	return nil
}
