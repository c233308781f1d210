package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// PreviewCalendar builds the calendar entry the event would sync as
// @Summary Preview calendar entry
// @Description The time window spans every form of the event. Edit the preview and post it back to sync.
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 422 {object} utils.Response
// @Router /events/{id}/calendar/preview [get]
func (h *Handler) PreviewCalendar(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}

	preview, err := h.calendarSvc.Preview(c.UserContext(), tenantID, eventID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, preview, "Calendar preview generated")
}

// SyncCalendar pushes the confirmed preview to the calendar
// @Summary Sync calendar entry
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body calendar.Preview true "Confirmed preview"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 502 {object} utils.Response
// @Router /events/{id}/calendar/sync [post]
func (h *Handler) SyncCalendar(c *fiber.Ctx) error {
	tenantID, userID, err := scope(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	preview := middleware.Body[calendar.Preview](c)

	result, err := h.calendarSvc.Sync(c.UserContext(), tenantID, eventID, userID, *preview)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, result, "Calendar synced successfully")
}
