package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type formTemplateRepo struct {
	db *gorm.DB
}

func NewFormTemplateRepository(db *gorm.DB) FormTemplateRepository {
	return &formTemplateRepo{db: db}
}

// CreateFormTemplate stores the template and its ordered fields together.
func (r *formTemplateRepo) CreateFormTemplate(ctx context.Context, form *models.FormTemplate, fields []models.FormTemplateField) error {
	if form == nil {
		return errors.New("form template cannot be nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Fields").Create(form).Error; err != nil {
			return err
		}
		for i := range fields {
			fields[i].FormTemplateID = form.ID
			fields[i].TenantID = form.TenantID
			if err := tx.Omit("FieldDefinition").Create(&fields[i]).Error; err != nil {
				return err
			}
		}
		form.Fields = fields
		return nil
	})
}

func (r *formTemplateRepo) GetFormTemplateByID(ctx context.Context, tenantID, id string) (*models.FormTemplate, error) {
	var form models.FormTemplate
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&form).Error; err != nil {
		return nil, wrapFind(err, "form", id)
	}
	return &form, nil
}

// GetFormTemplateWithFields loads the template with its fields in sort order.
func (r *formTemplateRepo) GetFormTemplateWithFields(ctx context.Context, tenantID, id string) (*models.FormTemplate, error) {
	var form models.FormTemplate
	if err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("form_template_fields.sort_order ASC")
		}).
		Preload("Fields.FieldDefinition").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&form).Error; err != nil {
		return nil, wrapFind(err, "form", id)
	}
	return &form, nil
}

func (r *formTemplateRepo) SlugExists(ctx context.Context, tenantID, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FormTemplate{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *formTemplateRepo) ListFormTemplates(ctx context.Context, tenantID string, activeOnly bool) ([]models.FormTemplate, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var forms []models.FormTemplate
	if err := query.Order("name ASC").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

func (r *formTemplateRepo) SoftDeleteFormTemplate(ctx context.Context, tenantID, id string) error {
	result := r.db.WithContext(ctx).Model(&models.FormTemplate{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to soft delete form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("form", id)
	}
	return nil
}
