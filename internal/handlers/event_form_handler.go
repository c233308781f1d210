package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ListEventForms returns the forms attached to an event with live totals
// @Summary List event forms
// @Tags Event Forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/forms [get]
func (h *Handler) ListEventForms(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	forms, err := h.eventFormSvc.ListForms(c.UserContext(), tenantID, eventID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, forms, "Event forms retrieved successfully")
}

// AttachEventForm attaches a form template to an event
// @Summary Attach form
// @Tags Event Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body services.AttachFormRequest true "Template and guest details"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/forms [post]
func (h *Handler) AttachEventForm(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	req := middleware.Body[services.AttachFormRequest](c)

	form, err := h.eventFormSvc.AttachForm(c.UserContext(), tenantID, eventID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, form, "Form attached successfully", fiber.StatusCreated)
}

// UpdateEventForm saves edits to an event form
// @Summary Save event form
// @Description Only changed responses are written. The form total is always recomputed server side.
// @Tags Event Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event form ID"
// @Param request body services.UpdateEventFormRequest true "Form edits"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /event-forms/{id} [patch]
func (h *Handler) UpdateEventForm(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event form")
	if err != nil {
		return err
	}
	req := middleware.Body[services.UpdateEventFormRequest](c)

	update, err := h.eventFormSvc.UpdateForm(c.UserContext(), tenantID, id, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	message := "Event form saved successfully"
	if !update.Saved {
		message = "No changes to save"
	}
	return utils.Success(c, update, message)
}

// CalculateEventForm previews the totals of unsaved edits
// @Summary Calculate draft totals
// @Tags Event Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event form ID"
// @Param request body services.UpdateEventFormRequest true "Unsaved edits"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /event-forms/{id}/calculate [post]
func (h *Handler) CalculateEventForm(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event form")
	if err != nil {
		return err
	}
	req := middleware.Body[services.UpdateEventFormRequest](c)

	totals, err := h.eventFormSvc.CalculateDraft(c.UserContext(), tenantID, id, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, totals, "Totals calculated")
}

// RemoveEventForm detaches a form from its event
// @Summary Remove event form
// @Tags Event Forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event form ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /event-forms/{id} [delete]
func (h *Handler) RemoveEventForm(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event form")
	if err != nil {
		return err
	}

	if err := h.eventFormSvc.RemoveForm(c.UserContext(), tenantID, id); err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, nil, "Event form removed successfully")
}
