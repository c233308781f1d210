package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// @Summary List form templates
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "Include disabled templates"
// @Success 200 {object} utils.Response
// @Router /forms [get]
func (h *Handler) ListFormTemplates(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}

	forms, err := h.formSvc.ListFormTemplates(c.UserContext(), tenantID, !includeInactive(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, forms, "Form templates retrieved successfully")
}

// @Summary Get form template
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form template ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /forms/{id} [get]
func (h *Handler) GetFormTemplate(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "form")
	if err != nil {
		return err
	}

	form, err := h.formSvc.GetFormTemplate(c.UserContext(), tenantID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, form, "Form template retrieved successfully")
}

// @Summary Create form template
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateFormTemplateRequest true "Template with ordered fields"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /forms [post]
func (h *Handler) CreateFormTemplate(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[services.CreateFormTemplateRequest](c)

	form, err := h.formSvc.CreateFormTemplate(c.UserContext(), tenantID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, form, "Form template created successfully", fiber.StatusCreated)
}

// @Summary Disable form template
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form template ID"
// @Success 200 {object} utils.Response
// @Router /forms/{id} [delete]
func (h *Handler) DisableFormTemplate(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "form")
	if err != nil {
		return err
	}

	if err := h.formSvc.DisableFormTemplate(c.UserContext(), tenantID, id); err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, nil, "Form template disabled successfully")
}
