package repositories

import (
	"context"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// Cross-table report queries.

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountEventsByStatus counts active events per status.
func (r *Repository) CountEventsByStatus(ctx context.Context, tenantID string) ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.DB.WithContext(ctx).Model(&models.Event{}).
		Select("status, COUNT(*) AS count").
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpcomingEvents lists active events dated between from and to, inclusive.
func (r *Repository) UpcomingEvents(ctx context.Context, tenantID string, from, to time.Time, limit int) ([]models.Event, error) {
	var events []models.Event
	if err := r.DB.WithContext(ctx).
		Preload("Customer").
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("event_date >= ? AND event_date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("event_date ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// PaymentsReceivedSince sums payments created after since. Compensating
// balance adjustments are included.
func (r *Repository) PaymentsReceivedSince(ctx context.Context, tenantID string, since time.Time) (decimal.Decimal, error) {
	var payments []models.EventPayment
	if err := r.DB.WithContext(ctx).
		Select("id, amount_gbp").
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.AmountGBP)
	}
	return total, nil
}

// CountBalanceModifications counts manual balance edits since the given time.
func (r *Repository) CountBalanceModifications(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.BalanceModification{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
