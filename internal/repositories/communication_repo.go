package repositories

import (
	"context"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type communicationRepo struct {
	db *gorm.DB
}

func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &communicationRepo{db: db}
}

func (r *communicationRepo) CreateCommunicationLog(ctx context.Context, entry *models.CommunicationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *communicationRepo) ListCommunicationLogs(ctx context.Context, tenantID, eventID string, offset, limit int) ([]models.CommunicationLog, int64, error) {
	offset, limit = clampPage(offset, limit)

	var logs []models.CommunicationLog
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).Model(&models.CommunicationLog{}).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

type balanceRepo struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepo{db: db}
}

func (r *balanceRepo) CreateBalanceModification(ctx context.Context, mod *models.BalanceModification) error {
	return r.db.WithContext(ctx).Create(mod).Error
}

func (r *balanceRepo) ListBalanceModifications(ctx context.Context, tenantID, eventID string) ([]models.BalanceModification, error) {
	var mods []models.BalanceModification
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Order("created_at ASC").
		Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}
