package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/pkg/logger"

	"github.com/sirupsen/logrus"
)

type CalendarService struct {
	repo     *repositories.Repository
	cfg      *config.Config
	provider calendar.Provider
}

func NewCalendarService(repo *repositories.Repository, cfg *config.Config, provider calendar.Provider) *CalendarService {
	return &CalendarService{repo: repo, cfg: cfg, provider: provider}
}

type CalendarSyncResult struct {
	ExternalID string           `json:"external_id"`
	Action     calendar.Action  `json:"action"`
	SyncedAt   time.Time        `json:"synced_at"`
	Preview    calendar.Preview `json:"preview"`
}

func eventInfo(e *models.Event) calendar.EventInfo {
	return calendar.EventInfo{
		Title:              e.Title,
		EventType:          e.EventType,
		EventDate:          time.Time(e.EventDate).Format(dateLayout),
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		MenCount:           e.MenCount,
		LadiesCount:        e.LadiesCount,
		ExternalCalendarID: e.ExternalCalendarID,
	}
}

// Preview builds the calendar entry the event would produce. It writes nothing.
func (s *CalendarService) Preview(ctx context.Context, tenantID, eventID string) (*calendar.Preview, error) {
	event, err := s.repo.EventRepo.GetEventWithCustomer(ctx, tenantID, eventID)
	if err != nil {
		return nil, lookupError("event", err)
	}
	if !event.IsActive {
		return nil, NewServiceError("event not found", ErrNotFound, nil)
	}

	summary, forms, err := loadLedger(ctx, s.repo, tenantID, event)
	if err != nil {
		return nil, err
	}
	times := make([]calendar.FormTimes, 0, len(forms))
	for _, f := range forms {
		times = append(times, calendar.FormTimes{
			Label:      f.FormLabel,
			StartTime:  f.StartTime,
			EndTime:    f.EndTime,
			GuestCount: f.GuestCount,
		})
	}

	customerName := ""
	if event.Customer != nil {
		customerName = event.Customer.Name
	}

	preview, err := calendar.BuildPreview(eventInfo(event), customerName, times, summary.Summary)
	if errors.Is(err, calendar.ErrNoTimeWindow) {
		return nil, NewServiceError(err.Error(), ErrNoTimeWindow, err)
	}
	if err != nil {
		return nil, NewServiceError("failed to build calendar preview", ErrInvalidInput, err)
	}
	return &preview, nil
}

// Sync pushes the (possibly edited) preview to the calendar provider and
// records the external id on the event.
func (s *CalendarService) Sync(ctx context.Context, tenantID, eventID, userID string, preview calendar.Preview) (*CalendarSyncResult, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, eventID)
	if err != nil {
		return nil, err
	}

	if err := preview.Validate(); err != nil {
		if errors.Is(err, calendar.ErrNoTimeWindow) {
			return nil, NewServiceError(err.Error(), ErrNoTimeWindow, err)
		}
		return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
	}
	if _, err := time.Parse(dateLayout, preview.Date); err != nil {
		return nil, invalid("date must be formatted YYYY-MM-DD")
	}

	result := &CalendarSyncResult{Preview: preview}
	if event.ExternalCalendarID != "" {
		result.Action = calendar.ActionUpdate
		result.ExternalID = event.ExternalCalendarID
		err = s.provider.Update(ctx, tenantID, event.ExternalCalendarID, preview)
	} else {
		result.Action = calendar.ActionCreate
		result.ExternalID, err = s.provider.Create(ctx, tenantID, preview)
	}
	if err != nil {
		logger.WithTenant(tenantID).WithFields(logrus.Fields{
			"event_id": eventID,
			"error":    err,
		}).Error("calendar sync failed")
		return nil, NewServiceError("calendar sync failed", ErrCalendarSyncFailed, err)
	}
	result.Preview.Action = result.Action
	result.Preview.ExternalID = result.ExternalID

	err = s.repo.Transaction(ctx, func(tx *repositories.Repository) error {
		if err := tx.EventRepo.MarkCalendarSynced(ctx, tenantID, eventID, result.ExternalID); err != nil {
			return err
		}
		return tx.CommunicationRepo.CreateCommunicationLog(ctx, &models.CommunicationLog{
			TenantID:   event.TenantID,
			EventID:    event.ID,
			CustomerID: event.CustomerID,
			Kind:       models.CommunicationCalendarSync,
			Summary:    fmt.Sprintf("Calendar entry %sd for %s %s-%s", result.Action, preview.Date, preview.StartTime, preview.EndTime),
			CreatedBy:  optionalUserID(userID),
		})
	})
	if err != nil {
		return nil, dbError("failed to record calendar sync", err)
	}

	result.SyncedAt = time.Now().UTC()
	return result, nil
}
