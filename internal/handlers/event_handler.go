package handlers

import (
	"time"

	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ScanBookingRequest struct {
	Payload string `json:"payload" validate:"required"`
}

func eventFilters(c *fiber.Ctx) (*repositories.EventFilters, error) {
	filters := &repositories.EventFilters{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if !includeInactive(c) {
		active := true
		filters.IsActive = &active
	}
	if id := c.Query("customer_id"); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid customer ID")
		}
		filters.CustomerID = id
	}
	for key, dest := range map[string]**time.Time{"date_from": &filters.DateFrom, "date_to": &filters.DateTo} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key+" format, expected YYYY-MM-DD")
		}
		*dest = &t
	}
	return filters, nil
}

// ListEvents returns paginated list of events
// @Summary List events
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param status query string false "Event status"
// @Param customer_id query string false "Customer ID"
// @Param search query string false "Title search"
// @Param date_from query string false "Earliest event date (YYYY-MM-DD)"
// @Param date_to query string false "Latest event date (YYYY-MM-DD)"
// @Param include_inactive query bool false "Include deleted events"
// @Success 200 {object} utils.Response
// @Router /events [get]
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	filters, err := eventFilters(c)
	if err != nil {
		return err
	}
	page, pageSize := pagination(c)

	events, total, _, err := h.eventSvc.ListEvents(c.UserContext(), tenantID, page, pageSize, filters)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.SuccessWithMeta(c, events, utils.NewMeta(page, pageSize, total), "Events retrieved successfully")
}

// CreateEvent creates a new event
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateEventRequest true "Event data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events [post]
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[services.CreateEventRequest](c)

	event, err := h.eventSvc.CreateEvent(c.UserContext(), tenantID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, event, "Event created successfully", fiber.StatusCreated)
}

// GetEvent returns event by ID
// @Summary Get event by ID
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id} [get]
func (h *Handler) GetEvent(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	event, err := h.eventSvc.GetEvent(c.UserContext(), tenantID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, event, "Event retrieved successfully")
}

// UpdateEvent updates event details
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body services.UpdateEventRequest true "Event changes"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id} [put]
func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	req := middleware.Body[services.UpdateEventRequest](c)

	event, err := h.eventSvc.UpdateEvent(c.UserContext(), tenantID, id, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, event, "Event updated successfully")
}

// DeleteEvent soft deletes an event (Manager/Admin)
// @Summary Delete event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id} [delete]
func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	if err := h.eventSvc.DeleteEvent(c.UserContext(), tenantID, id); err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, nil, "Event deleted successfully")
}

// GetEventSummary returns the live financial summary of an event
// @Summary Event financial summary
// @Description Totals are recomputed from the event's forms and payments on every call.
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/summary [get]
func (h *Handler) GetEventSummary(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	summary, err := h.eventSvc.GetEventSummary(c.UserContext(), tenantID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, summary, "Event summary retrieved successfully")
}

// GetBookingQRCode returns the booking QR code as PNG
// @Summary Booking QR code
// @Tags Events
// @Produce png
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param size query int false "Image size in pixels" default(256)
// @Success 200 {file} binary
// @Failure 404 {object} utils.Response
// @Router /events/{id}/qrcode [get]
func (h *Handler) GetBookingQRCode(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	size := c.QueryInt("size", 256)
	if size < 64 || size > 1024 {
		size = 256
	}

	png, ref, err := h.eventSvc.BookingQRCode(c.UserContext(), tenantID, id, size)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set("X-Booking-Reference", ref)
	return c.Send(png)
}

// ScanBooking resolves a scanned booking QR code
// @Summary Scan booking QR code
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScanBookingRequest true "Scanned payload"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/scan [post]
func (h *Handler) ScanBooking(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[ScanBookingRequest](c)

	lookup, err := h.eventSvc.LookupBooking(c.UserContext(), tenantID, req.Payload)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, lookup, "Booking found")
}

// GetStats returns dashboard statistics (Admin only)
// @Summary Get dashboard statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}

	stats, err := h.eventSvc.GetDashboardStats(c.UserContext(), tenantID, time.Now())
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, stats, "Statistics retrieved successfully")
}
