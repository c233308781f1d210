package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// includeInactive reads the include_inactive query flag.
func includeInactive(c *fiber.Ctx) bool {
	return c.QueryBool("include_inactive", false)
}

// ListFields returns the tenant's field library
// @Summary List fields
// @Tags Fields
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "Include disabled fields"
// @Success 200 {object} utils.Response
// @Router /fields [get]
func (h *Handler) ListFields(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}

	fields, err := h.fieldSvc.ListFields(c.UserContext(), tenantID, !includeInactive(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, fields, "Fields retrieved successfully")
}

// GetField returns a field definition
// @Summary Get field
// @Tags Fields
// @Produce json
// @Security BearerAuth
// @Param id path string true "Field ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /fields/{id} [get]
func (h *Handler) GetField(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "field")
	if err != nil {
		return err
	}

	field, err := h.fieldSvc.GetField(c.UserContext(), tenantID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, field, "Field retrieved successfully")
}

// CreateField adds a field to the library (Manager/Admin)
// @Summary Create field
// @Tags Fields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateFieldRequest true "Field definition"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /fields [post]
func (h *Handler) CreateField(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[services.CreateFieldRequest](c)

	field, err := h.fieldSvc.CreateField(c.UserContext(), tenantID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, field, "Field created successfully", fiber.StatusCreated)
}

// UpdateField changes a field definition (Manager/Admin)
// @Summary Update field
// @Tags Fields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Field ID"
// @Param request body services.UpdateFieldRequest true "Field changes"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /fields/{id} [put]
func (h *Handler) UpdateField(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "field")
	if err != nil {
		return err
	}
	req := middleware.Body[services.UpdateFieldRequest](c)

	field, err := h.fieldSvc.UpdateField(c.UserContext(), tenantID, id, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, field, "Field updated successfully")
}

// DisableField deactivates a field (Manager/Admin)
// @Summary Disable field
// @Tags Fields
// @Produce json
// @Security BearerAuth
// @Param id path string true "Field ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /fields/{id} [delete]
func (h *Handler) DisableField(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "field")
	if err != nil {
		return err
	}

	if err := h.fieldSvc.DisableField(c.UserContext(), tenantID, id); err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, nil, "Field disabled successfully")
}
