package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/repositories"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type FormTemplateService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewFormTemplateService(repo *repositories.Repository, cfg *config.Config) *FormTemplateService {
	return &FormTemplateService{repo: repo, cfg: cfg}
}

type TemplateFieldInput struct {
	FieldID  string `json:"field_id" validate:"required,uuid"`
	Required bool   `json:"required"`
}

type CreateFormTemplateRequest struct {
	Name        string               `json:"name" validate:"required,max=120"`
	Description string               `json:"description"`
	Fields      []TemplateFieldInput `json:"fields" validate:"dive"`
}

// CreateFormTemplate stores a template whose fields keep the request order.
func (s *FormTemplateService) CreateFormTemplate(ctx context.Context, tenantID string, req CreateFormTemplateRequest) (*models.FormTemplate, error) {
	tid, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, invalid("invalid tenant id")
	}

	name := strings.TrimSpace(req.Name)
	base := slug.Make(name)
	if base == "" {
		return nil, invalid("form name must contain letters or digits")
	}

	ids := make([]string, 0, len(req.Fields))
	seen := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		if seen[f.FieldID] {
			return nil, invalid(fmt.Sprintf("field %s is listed twice", f.FieldID))
		}
		seen[f.FieldID] = true
		ids = append(ids, f.FieldID)
	}

	defs, err := s.repo.FieldRepo.GetFieldsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, dbError("failed to load fields", err)
	}
	active := make(map[string]bool, len(defs))
	for _, d := range defs {
		active[d.ID.String()] = d.IsActive
	}

	fields := make([]models.FormTemplateField, 0, len(req.Fields))
	for i, f := range req.Fields {
		isActive, ok := active[f.FieldID]
		if !ok {
			return nil, NewServiceError(fmt.Sprintf("field %s not found", f.FieldID), ErrNotFound, nil)
		}
		if !isActive {
			return nil, invalid(fmt.Sprintf("field %s is disabled", f.FieldID))
		}
		fields = append(fields, models.FormTemplateField{
			FieldDefinitionID: uuid.MustParse(f.FieldID),
			SortOrder:         i + 1,
			Required:          f.Required,
		})
	}

	formSlug, err := s.uniqueSlug(ctx, tenantID, base)
	if err != nil {
		return nil, err
	}

	form := &models.FormTemplate{
		TenantID:    tid,
		Name:        name,
		Slug:        formSlug,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.FormRepo.CreateFormTemplate(ctx, form, fields); err != nil {
		return nil, dbError("failed to create form", err)
	}

	return s.GetFormTemplate(ctx, tenantID, form.ID.String())
}

func (s *FormTemplateService) uniqueSlug(ctx context.Context, tenantID, base string) (string, error) {
	candidate := base
	for i := 2; i < 100; i++ {
		exists, err := s.repo.FormRepo.SlugExists(ctx, tenantID, candidate)
		if err != nil {
			return "", dbError("failed to check form slug", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", NewServiceError("could not allocate a form slug", ErrConflict, nil)
}

func (s *FormTemplateService) GetFormTemplate(ctx context.Context, tenantID, id string) (*models.FormTemplate, error) {
	form, err := s.repo.FormRepo.GetFormTemplateWithFields(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("form", err)
	}
	return form, nil
}

func (s *FormTemplateService) ListFormTemplates(ctx context.Context, tenantID string, activeOnly bool) ([]models.FormTemplate, error) {
	forms, err := s.repo.FormRepo.ListFormTemplates(ctx, tenantID, activeOnly)
	if err != nil {
		return nil, dbError("failed to list forms", err)
	}
	return forms, nil
}

func (s *FormTemplateService) DisableFormTemplate(ctx context.Context, tenantID, id string) error {
	if err := s.repo.FormRepo.SoftDeleteFormTemplate(ctx, tenantID, id); err != nil {
		return lookupError("form", err)
	}
	return nil
}
