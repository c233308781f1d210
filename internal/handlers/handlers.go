package handlers

import (
	"errors"
	"strconv"

	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"
	"github.com/peritasorg/eventis-sub000/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          *services.AuthService
	Customer      *services.CustomerService
	Field         *services.FieldService
	FormTemplate  *services.FormTemplateService
	Event         *services.EventService
	EventForm     *services.EventFormService
	Payment       *services.PaymentService
	Balance       *services.BalanceService
	Communication *services.CommunicationService
	Calendar      *services.CalendarService
}

type Handler struct {
	authSvc          *services.AuthService
	customerSvc      *services.CustomerService
	fieldSvc         *services.FieldService
	formSvc          *services.FormTemplateService
	eventSvc         *services.EventService
	eventFormSvc     *services.EventFormService
	paymentSvc       *services.PaymentService
	balanceSvc       *services.BalanceService
	communicationSvc *services.CommunicationService
	calendarSvc      *services.CalendarService
	cfg              *config.Config
}

func NewHandler(svc Services, cfg *config.Config) *Handler {
	return &Handler{
		authSvc:          svc.Auth,
		customerSvc:      svc.Customer,
		fieldSvc:         svc.Field,
		formSvc:          svc.FormTemplate,
		eventSvc:         svc.Event,
		eventFormSvc:     svc.EventForm,
		paymentSvc:       svc.Payment,
		balanceSvc:       svc.Balance,
		communicationSvc: svc.Communication,
		calendarSvc:      svc.Calendar,
		cfg:              cfg,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	// Public routes
	public := router.Group("/auth")
	{
		public.Post("/signup", middleware.ValidateBody[services.SignupRequest](), h.Signup)
		public.Post("/login", middleware.ValidateBody[LoginRequest](), h.Login)
	}

	// Protected routes (JWT required)
	protected := router.Group("", middleware.JWTMiddleware(h.cfg))
	{
		protected.Get("/profile", h.GetProfile)

		customers := protected.Group("/customers")
		{
			customers.Get("/", h.ListCustomers)
			customers.Post("/", middleware.ValidateBody[services.CreateCustomerRequest](), h.CreateCustomer)
			customers.Post("/import", middleware.ManagerOrAdmin, h.ImportCustomers)
			customers.Get("/:id", h.GetCustomer)
			customers.Put("/:id", middleware.ValidateBody[services.UpdateCustomerRequest](), h.UpdateCustomer)
		}

		fields := protected.Group("/fields")
		{
			fields.Get("/", h.ListFields)
			fields.Get("/:id", h.GetField)
			fields.Post("/", middleware.ManagerOrAdmin, middleware.ValidateBody[services.CreateFieldRequest](), h.CreateField)
			fields.Put("/:id", middleware.ManagerOrAdmin, middleware.ValidateBody[services.UpdateFieldRequest](), h.UpdateField)
			fields.Delete("/:id", middleware.ManagerOrAdmin, h.DisableField)
		}

		forms := protected.Group("/forms")
		{
			forms.Get("/", h.ListFormTemplates)
			forms.Get("/:id", h.GetFormTemplate)
			forms.Post("/", middleware.ManagerOrAdmin, middleware.ValidateBody[services.CreateFormTemplateRequest](), h.CreateFormTemplate)
			forms.Delete("/:id", middleware.ManagerOrAdmin, h.DisableFormTemplate)
		}

		events := protected.Group("/events")
		{
			events.Get("/", h.ListEvents)
			events.Post("/", middleware.ValidateBody[services.CreateEventRequest](), h.CreateEvent)
			events.Post("/scan", middleware.ValidateBody[ScanBookingRequest](), h.ScanBooking)
			events.Get("/:id", h.GetEvent)
			events.Put("/:id", middleware.ValidateBody[services.UpdateEventRequest](), h.UpdateEvent)
			events.Delete("/:id", middleware.ManagerOrAdmin, h.DeleteEvent)
			events.Get("/:id/summary", h.GetEventSummary)
			events.Get("/:id/qrcode", h.GetBookingQRCode)

			events.Get("/:id/forms", h.ListEventForms)
			events.Post("/:id/forms", middleware.ValidateBody[services.AttachFormRequest](), h.AttachEventForm)

			events.Get("/:id/payments", h.ListPayments)
			events.Post("/:id/payments", middleware.ValidateBody[services.RecordPaymentRequest](), h.RecordPayment)

			events.Get("/:id/balance-edits", h.ListBalanceModifications)
			events.Post("/:id/balance-edits", middleware.ManagerOrAdmin, middleware.ValidateBody[services.BalanceEditRequest](), h.RequestBalanceEdit)

			events.Get("/:id/communications", h.ListCommunications)
			events.Post("/:id/communications", middleware.ValidateBody[services.AddNoteRequest](), h.AddCommunicationNote)

			events.Get("/:id/calendar/preview", h.PreviewCalendar)
			events.Post("/:id/calendar/sync", middleware.ValidateBody[calendar.Preview](), h.SyncCalendar)
		}

		eventForms := protected.Group("/event-forms")
		{
			eventForms.Patch("/:id", middleware.ValidateBody[services.UpdateEventFormRequest](), h.UpdateEventForm)
			eventForms.Post("/:id/calculate", middleware.ValidateBody[services.UpdateEventFormRequest](), h.CalculateEventForm)
			eventForms.Delete("/:id", h.RemoveEventForm)
		}

		balanceEdits := protected.Group("/balance-edits", middleware.ManagerOrAdmin)
		{
			balanceEdits.Post("/:token/confirm", middleware.ValidateBody[services.ConfirmBalanceEditRequest](), h.ConfirmBalanceEdit)
			balanceEdits.Delete("/:token", h.CancelBalanceEdit)
		}

		// Admin only routes
		admin := protected.Group("/admin", middleware.AdminOnly)
		{
			admin.Get("/stats", h.GetStats)
			admin.Get("/users", h.ListUsers)
			admin.Post("/users", middleware.ValidateBody[services.CreateUserRequest](), h.CreateUser)
		}
	}
}

// ErrorHandler handles global errors
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to internal server error
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Log internal errors
	if code >= 500 {
		logger.Log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"error":  err.Error(),
		}).Error("internal error")
	}

	return utils.Error(c, message, code)
}

var statusByCode = map[services.ErrorCode]int{
	services.ErrInvalidInput:        fiber.StatusBadRequest,
	services.ErrInvalidCredentials:  fiber.StatusUnauthorized,
	services.ErrPermissionDenied:    fiber.StatusForbidden,
	services.ErrNotFound:            fiber.StatusNotFound,
	services.ErrConflict:            fiber.StatusConflict,
	services.ErrRiskNotAcknowledged: fiber.StatusPreconditionRequired,
	services.ErrNoTimeWindow:        fiber.StatusUnprocessableEntity,
	services.ErrCalendarSyncFailed:  fiber.StatusBadGateway,
	services.ErrDatabaseError:       fiber.StatusInternalServerError,
}

// handleServiceError maps service errors to HTTP responses. Anything that is
// not a ServiceError is an internal error.
func handleServiceError(c *fiber.Ctx, err error) error {
	tenantID, _ := c.Locals("tenant_id").(string)
	entry := logger.WithTenant(tenantID).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err.Error(),
	})

	se, ok := services.AsServiceError(err)
	if !ok {
		entry.Error("request failed")
		return utils.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}

	status, known := statusByCode[se.Code]
	if !known {
		status = fiber.StatusInternalServerError
	}
	if status >= 500 {
		entry.WithField("code", se.Code).Error("request failed")
	}
	return utils.ErrorWithCode(c, se.Message, string(se.Code), status)
}

// pathID validates a uuid route parameter.
func pathID(c *fiber.Ctx, name, what string) (string, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	// Formatted fresh, so it never aliases the request buffer.
	return id.String(), nil
}

// scope returns the tenant and user the request runs as. Errors are
// *fiber.Error and rendered by ErrorHandler.
func scope(c *fiber.Ctx) (tenantID, userID string, err error) {
	if tenantID, err = middleware.GetTenantIDFromContext(c); err != nil {
		return "", "", err
	}
	if userID, err = middleware.GetUserIDFromContext(c); err != nil {
		return "", "", err
	}
	return tenantID, userID, nil
}

func pagination(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
