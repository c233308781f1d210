package calendar

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Provider is the external calendar.
type Provider interface {
	Create(ctx context.Context, tenantID string, p Preview) (string, error)
	Update(ctx context.Context, tenantID, externalID string, p Preview) error
}

// LogProvider records sync requests in the log and hands out local ids. It is
// used when no calendar integration is configured.
type LogProvider struct {
	Log      *logrus.Logger
	Calendar string
}

func NewLogProvider(log *logrus.Logger, calendarName string) *LogProvider {
	return &LogProvider{Log: log, Calendar: calendarName}
}

func (p *LogProvider) Create(_ context.Context, tenantID string, preview Preview) (string, error) {
	id := uuid.NewString()
	p.entry(tenantID, preview).WithField("external_id", id).Info("calendar entry created")
	return id, nil
}

func (p *LogProvider) Update(_ context.Context, tenantID, externalID string, preview Preview) error {
	p.entry(tenantID, preview).WithField("external_id", externalID).Info("calendar entry updated")
	return nil
}

func (p *LogProvider) entry(tenantID string, preview Preview) *logrus.Entry {
	return p.Log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"calendar":  p.Calendar,
		"title":     preview.Title,
		"date":      preview.Date,
		"window":    preview.StartTime + "-" + preview.EndTime,
	})
}
