// Package calendar derives what an event looks like in an external calendar
// and pushes it through a Provider.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNoTimeWindow = errors.New("no time window: set a start and end time on the event or on at least one of its forms")

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts HH:MM and HH:MM:SS.
func ParseClock(s string) (Clock, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), true
		}
	}
	return 0, false
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// FormTimes is the part of an event form the calendar cares about.
type FormTimes struct {
	Label      string
	StartTime  string
	EndTime    string
	GuestCount int
}

type Window struct {
	Start Clock
	End   Clock
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// DeriveWindow uses the event's own times when both are set. Otherwise it
// spans from the earliest form start to the latest form end, counting only
// forms that have both times.
func DeriveWindow(eventStart, eventEnd string, forms []FormTimes) (Window, error) {
	start, okStart := ParseClock(eventStart)
	end, okEnd := ParseClock(eventEnd)
	if okStart && okEnd {
		return Window{Start: start, End: end}, nil
	}

	var w Window
	found := false
	for _, f := range forms {
		fs, ok1 := ParseClock(f.StartTime)
		fe, ok2 := ParseClock(f.EndTime)
		if !ok1 || !ok2 {
			continue
		}
		if !found {
			w = Window{Start: fs, End: fe}
			found = true
			continue
		}
		if fs < w.Start {
			w.Start = fs
		}
		if fe > w.End {
			w.End = fe
		}
	}
	if !found {
		return Window{}, ErrNoTimeWindow
	}
	return w, nil
}
