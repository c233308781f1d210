package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type fieldRepo struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) FieldRepository {
	return &fieldRepo{db: db}
}

// CreateField creates a new library field. Names are unique per tenant.
func (r *fieldRepo) CreateField(ctx context.Context, field *models.FieldDefinition) error {
	if field == nil {
		return errors.New("field cannot be nil")
	}

	var existing models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", field.TenantID, field.Name).
		First(&existing).Error; err == nil {
		return fmt.Errorf("field with name '%s' already exists", field.Name)
	}

	return r.db.WithContext(ctx).Create(field).Error
}

func (r *fieldRepo) GetFieldByID(ctx context.Context, tenantID, id string) (*models.FieldDefinition, error) {
	var field models.FieldDefinition
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&field).Error; err != nil {
		return nil, wrapFind(err, "field", id)
	}
	return &field, nil
}

func (r *fieldRepo) GetFieldByName(ctx context.Context, tenantID, name string) (*models.FieldDefinition, error) {
	var field models.FieldDefinition
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND name = ?", tenantID, name).First(&field).Error; err != nil {
		return nil, wrapFind(err, "field", name)
	}
	return &field, nil
}

func (r *fieldRepo) ListFields(ctx context.Context, tenantID string, activeOnly bool) ([]models.FieldDefinition, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var fields []models.FieldDefinition
	if err := query.Order("label ASC").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	return fields, nil
}

// GetFieldsByIDs includes disabled fields: saved responses still reference them.
func (r *fieldRepo) GetFieldsByIDs(ctx context.Context, tenantID string, ids []string) ([]models.FieldDefinition, error) {
	if len(ids) == 0 {
		return []models.FieldDefinition{}, nil
	}

	var fields []models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("failed to get fields: %w", err)
	}
	return fields, nil
}

func (r *fieldRepo) UpdateField(ctx context.Context, field *models.FieldDefinition) error {
	if field == nil {
		return errors.New("field cannot be nil")
	}

	var conflict models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ? AND id != ?", field.TenantID, field.Name, field.ID).
		First(&conflict).Error; err == nil {
		return fmt.Errorf("field with name '%s' already exists", field.Name)
	}

	return r.db.WithContext(ctx).Save(field).Error
}

func (r *fieldRepo) SetFieldActive(ctx context.Context, tenantID, id string, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.FieldDefinition{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_active", active)

	if result.Error != nil {
		return fmt.Errorf("failed to update field: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("field", id)
	}
	return nil
}
