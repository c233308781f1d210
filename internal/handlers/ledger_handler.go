package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// @Summary List payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/payments [get]
func (h *Handler) ListPayments(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	payments, err := h.paymentSvc.ListPayments(c.UserContext(), tenantID, eventID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, payments, "Payments retrieved successfully")
}

// RecordPayment records a payment or refund against an event
// @Summary Record payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body services.RecordPaymentRequest true "Payment"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/payments [post]
func (h *Handler) RecordPayment(c *fiber.Ctx) error {
	tenantID, userID, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	req := middleware.Body[services.RecordPaymentRequest](c)

	payment, err := h.paymentSvc.RecordPayment(c.UserContext(), tenantID, eventID, userID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, payment, "Payment recorded successfully", fiber.StatusCreated)
}

// @Summary List balance changes
// @Tags Balance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Router /events/{id}/balance-edits [get]
func (h *Handler) ListBalanceModifications(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	mods, err := h.balanceSvc.ListModifications(c.UserContext(), tenantID, eventID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, mods, "Balance changes retrieved successfully")
}

// RequestBalanceEdit opens a manual balance override for review (Manager/Admin)
// @Summary Request balance edit
// @Description Nothing is saved until the returned token is confirmed with risk_acknowledged set.
// @Tags Balance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body services.BalanceEditRequest true "New balance and reason"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/balance-edits [post]
func (h *Handler) RequestBalanceEdit(c *fiber.Ctx) error {
	tenantID, userID, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	req := middleware.Body[services.BalanceEditRequest](c)

	review, err := h.balanceSvc.RequestEdit(c.UserContext(), tenantID, eventID, userID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, review, "Review the change and confirm")
}

// ConfirmBalanceEdit commits a reviewed balance edit (Manager/Admin)
// @Summary Confirm balance edit
// @Tags Balance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "Edit token"
// @Param request body services.ConfirmBalanceEditRequest true "Risk acknowledgement"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 428 {object} utils.Response
// @Router /balance-edits/{token}/confirm [post]
func (h *Handler) ConfirmBalanceEdit(c *fiber.Ctx) error {
	tenantID, userID, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[services.ConfirmBalanceEditRequest](c)

	result, err := h.balanceSvc.ConfirmEdit(c.UserContext(), tenantID, userID, c.Params("token"), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, result, "Balance updated successfully")
}

// @Summary Cancel balance edit
// @Tags Balance
// @Produce json
// @Security BearerAuth
// @Param token path string true "Edit token"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /balance-edits/{token} [delete]
func (h *Handler) CancelBalanceEdit(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}

	if err := h.balanceSvc.CancelEdit(c.UserContext(), tenantID, c.Params("token")); err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, nil, "Balance edit cancelled")
}

// @Summary List communication log
// @Tags Communications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.Response
// @Router /events/{id}/communications [get]
func (h *Handler) ListCommunications(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	page, pageSize := pagination(c)

	entries, total, _, err := h.communicationSvc.ListEntries(c.UserContext(), tenantID, eventID, page, pageSize)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.SuccessWithMeta(c, entries, utils.NewMeta(page, pageSize, total), "Communications retrieved successfully")
}

// @Summary Add note
// @Tags Communications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body services.AddNoteRequest true "Note"
// @Success 201 {object} utils.Response
// @Router /events/{id}/communications [post]
func (h *Handler) AddCommunicationNote(c *fiber.Ctx) error {
	tenantID, userID, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	req := middleware.Body[services.AddNoteRequest](c)

	entry, err := h.communicationSvc.AddNote(c.UserContext(), tenantID, eventID, userID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, entry, "Note added successfully", fiber.StatusCreated)
}
