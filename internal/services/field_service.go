package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FieldService manages the tenant's field library.
type FieldService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewFieldService(repo *repositories.Repository, cfg *config.Config) *FieldService {
	return &FieldService{repo: repo, cfg: cfg}
}

type CreateFieldRequest struct {
	Label          string           `json:"label" validate:"required,max=120"`
	Name           string           `json:"name" validate:"omitempty,max=120"`
	FieldType      string           `json:"field_type" validate:"required"`
	AffectsPricing bool             `json:"affects_pricing"`
	PricingType    string           `json:"pricing_type"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	ShowQuantity   bool             `json:"show_quantity"`
	ShowNotes      bool             `json:"show_notes"`
	Options        []string         `json:"options"`
	Placeholder    string           `json:"placeholder"`
	HelpText       string           `json:"help_text"`
}

type UpdateFieldRequest struct {
	Label          *string          `json:"label" validate:"omitempty,min=1,max=120"`
	AffectsPricing *bool            `json:"affects_pricing"`
	PricingType    *string          `json:"pricing_type"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	ShowQuantity   *bool            `json:"show_quantity"`
	ShowNotes      *bool            `json:"show_notes"`
	Options        []string         `json:"options"`
	Placeholder    *string          `json:"placeholder"`
	HelpText       *string          `json:"help_text"`
	IsActive       *bool            `json:"is_active"`
}

func (s *FieldService) CreateField(ctx context.Context, tenantID string, req CreateFieldRequest) (*models.FieldDefinition, error) {
	tid, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, invalid("invalid tenant id")
	}

	fieldType, err := pricing.ParseFieldType(req.FieldType)
	if err != nil {
		return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
	}
	pricingType, err := pricing.ParsePricingType(req.PricingType)
	if err != nil {
		return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
	}
	if !req.AffectsPricing {
		pricingType = pricing.PricingNone
	}

	unitPrice, err := nonNegativeAmount(req.UnitPrice, "unit price")
	if err != nil {
		return nil, err
	}

	name := slug.Make(req.Name)
	if name == "" {
		name = slug.Make(req.Label)
	}
	if name == "" {
		return nil, invalid("field label must contain letters or digits")
	}

	options, err := encodeOptions(fieldType, req.Options)
	if err != nil {
		return nil, err
	}

	field := &models.FieldDefinition{
		TenantID:       tid,
		Name:           name,
		Label:          strings.TrimSpace(req.Label),
		FieldType:      string(fieldType),
		AffectsPricing: req.AffectsPricing,
		PricingType:    string(pricingType),
		UnitPrice:      pricing.RoundMoney(unitPrice),
		ShowQuantity:   req.ShowQuantity,
		ShowNotes:      req.ShowNotes,
		Options:        options,
		Placeholder:    req.Placeholder,
		HelpText:       req.HelpText,
		IsActive:       true,
	}

	if err := s.repo.FieldRepo.CreateField(ctx, field); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil, NewServiceError(err.Error(), ErrConflict, err)
		}
		return nil, dbError("failed to create field", err)
	}
	return field, nil
}

func encodeOptions(fieldType pricing.FieldType, options []string) (datatypes.JSON, error) {
	if fieldType != pricing.FieldSelect {
		return nil, nil
	}
	cleaned := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if len(cleaned) == 0 {
		return nil, invalid("select fields need at least one option")
	}
	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func (s *FieldService) ListFields(ctx context.Context, tenantID string, activeOnly bool) ([]models.FieldDefinition, error) {
	fields, err := s.repo.FieldRepo.ListFields(ctx, tenantID, activeOnly)
	if err != nil {
		return nil, dbError("failed to list fields", err)
	}
	return fields, nil
}

func (s *FieldService) GetField(ctx context.Context, tenantID, id string) (*models.FieldDefinition, error) {
	field, err := s.repo.FieldRepo.GetFieldByID(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("field", err)
	}
	return field, nil
}

// UpdateField changes a library entry. A new unit price only seeds responses
// created afterwards; saved responses keep their own price.
func (s *FieldService) UpdateField(ctx context.Context, tenantID, id string, req UpdateFieldRequest) (*models.FieldDefinition, error) {
	field, err := s.repo.FieldRepo.GetFieldByID(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("field", err)
	}

	if req.Label != nil {
		field.Label = strings.TrimSpace(*req.Label)
	}
	if req.AffectsPricing != nil {
		field.AffectsPricing = *req.AffectsPricing
	}
	if req.PricingType != nil {
		pt, err := pricing.ParsePricingType(*req.PricingType)
		if err != nil {
			return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
		}
		field.PricingType = string(pt)
	}
	if !field.AffectsPricing {
		field.PricingType = string(pricing.PricingNone)
	}
	if req.UnitPrice != nil {
		if field.UnitPrice, err = nonNegativeAmount(req.UnitPrice, "unit price"); err != nil {
			return nil, err
		}
	}
	if req.ShowQuantity != nil {
		field.ShowQuantity = *req.ShowQuantity
	}
	if req.ShowNotes != nil {
		field.ShowNotes = *req.ShowNotes
	}
	if req.Options != nil {
		options, err := encodeOptions(pricing.FieldType(field.FieldType), req.Options)
		if err != nil {
			return nil, err
		}
		field.Options = options
	}
	if req.Placeholder != nil {
		field.Placeholder = *req.Placeholder
	}
	if req.HelpText != nil {
		field.HelpText = *req.HelpText
	}
	if req.IsActive != nil {
		field.IsActive = *req.IsActive
	}

	if err := s.repo.FieldRepo.UpdateField(ctx, field); err != nil {
		return nil, dbError("failed to update field", err)
	}
	return field, nil
}

// DisableField hides the field from the library. Saved responses that
// reference it still price correctly.
func (s *FieldService) DisableField(ctx context.Context, tenantID, id string) error {
	if err := s.repo.FieldRepo.SetFieldActive(ctx, tenantID, id, false); err != nil {
		return lookupError("field", err)
	}
	return nil
}
