package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/peritasorg/eventis-sub000/internal/balance"
	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"
	"github.com/peritasorg/eventis-sub000/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger.Log.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repositories.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := repositories.NewRepository(db)
	cfg := &config.Config{
		JWTSecret:      "handler-test-secret",
		JWTTTL:         time.Hour,
		BalanceEditTTL: 15 * time.Minute,
		MaxUploadSize:  1 << 20,
		CalendarName:   "Test",
	}

	h := NewHandler(Services{
		Auth:          services.NewAuthService(repo, cfg),
		Customer:      services.NewCustomerService(repo, cfg),
		Field:         services.NewFieldService(repo, cfg),
		FormTemplate:  services.NewFormTemplateService(repo, cfg),
		Event:         services.NewEventService(repo, cfg),
		EventForm:     services.NewEventFormService(repo, cfg),
		Payment:       services.NewPaymentService(repo, cfg),
		Balance:       services.NewBalanceService(repo, cfg, balance.NewMemoryStore()),
		Communication: services.NewCommunicationService(repo, cfg),
		Calendar:      services.NewCalendarService(repo, cfg, calendar.NewLogProvider(logger.Log, cfg.CalendarName)),
	}, cfg)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler, Immutable: true})
	h.RegisterRoutes(app.Group("/api/v1"))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "image/png" {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func signup(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"business_name": "Grand Hall",
		"full_name":     "Owner",
		"email":         "owner@grandhall.test",
		"password":      "correct-horse",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("signup status = %d (%s)", status, env.Error)
	}
	var resp services.LoginResponse
	decodeData(t, env, &resp)
	if resp.Token == "" {
		t.Fatalf("signup returned no token")
	}
	return resp.Token
}

func createEvent(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/v1/events", token, map[string]any{
		"title":                  "Summer Party",
		"event_date":             "2025-07-12",
		"total_guest_price_gbp":  300,
		"deductible_deposit_gbp": 50,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create event status = %d (%s)", status, env.Error)
	}
	var event struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &event)
	return event.ID
}

type summaryBody struct {
	TotalEventValue  decimal.Decimal `json:"total_event_value"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func summaryOf(t *testing.T, app *fiber.App, token, eventID string) summaryBody {
	t.Helper()
	status, env := call(t, app, http.MethodGet, "/api/v1/events/"+eventID+"/summary", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("summary status = %d (%s)", status, env.Error)
	}
	var s summaryBody
	decodeData(t, env, &s)
	return s
}

func TestRoutes_RequireToken(t *testing.T) {
	app := newTestApp(t)

	if status, _ := call(t, app, http.MethodGet, "/api/v1/events", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/v1/events", "not.a.token", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", status)
	}
}

func TestRoutes_LoginAfterSignup(t *testing.T) {
	app := newTestApp(t)
	signup(t, app)

	status, env := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "owner@grandhall.test",
		"password": "wrong-password",
	})
	if status != fiber.StatusUnauthorized || env.Code != string(services.ErrInvalidCredentials) {
		t.Fatalf("bad password: status = %d code = %q", status, env.Code)
	}

	status, env = call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "owner@grandhall.test",
		"password": "correct-horse",
	})
	if status != fiber.StatusOK {
		t.Fatalf("login status = %d (%s)", status, env.Error)
	}

	var resp services.LoginResponse
	decodeData(t, env, &resp)
	if status, _ := call(t, app, http.MethodGet, "/api/v1/profile", resp.Token, nil); status != fiber.StatusOK {
		t.Fatalf("profile status = %d", status)
	}
}

func TestRoutes_StaffCannotManageLibraryOrAdmin(t *testing.T) {
	app := newTestApp(t)
	admin := signup(t, app)

	status, env := call(t, app, http.MethodPost, "/api/v1/admin/users", admin, map[string]string{
		"email":     "staff@grandhall.test",
		"password":  "staff-password",
		"full_name": "Staff",
		"role":      services.RoleStaff,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create user status = %d (%s)", status, env.Error)
	}

	_, env = call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "staff@grandhall.test",
		"password": "staff-password",
	})
	var resp services.LoginResponse
	decodeData(t, env, &resp)
	staff := resp.Token

	status, env = call(t, app, http.MethodPost, "/api/v1/fields", staff, map[string]any{
		"label":      "Open bar",
		"field_type": "price_field",
	})
	if status != fiber.StatusForbidden || env.Code != string(services.ErrPermissionDenied) {
		t.Fatalf("staff create field: status = %d code = %q", status, env.Code)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/v1/admin/stats", staff, nil); status != fiber.StatusForbidden {
		t.Fatalf("staff stats status = %d, want 403", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/v1/events", staff, nil); status != fiber.StatusOK {
		t.Fatalf("staff list events status = %d, want 200", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/v1/admin/stats", admin, nil); status != fiber.StatusOK {
		t.Fatalf("admin stats status = %d, want 200", status)
	}
}

func TestRoutes_ValidationAndLookupErrors(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app)

	status, env := call(t, app, http.MethodPost, "/api/v1/events", token, map[string]any{"event_date": "2025-07-12"})
	if status != fiber.StatusBadRequest || env.Code != string(services.ErrInvalidInput) {
		t.Fatalf("missing title: status = %d code = %q", status, env.Code)
	}

	if status, _ := call(t, app, http.MethodGet, "/api/v1/events/not-a-uuid", token, nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", status)
	}

	status, env = call(t, app, http.MethodGet, "/api/v1/events/"+uuid.NewString()+"/summary", token, nil)
	if status != fiber.StatusNotFound || env.Code != string(services.ErrNotFound) {
		t.Fatalf("unknown event: status = %d code = %q", status, env.Code)
	}

	if status, _ := call(t, app, http.MethodGet, "/api/v1/events?date_from=12/07/2025", token, nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad date filter status = %d, want 400", status)
	}
}

func TestRoutes_PaymentAndBalanceEditFlow(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app)
	eventID := createEvent(t, app, token)

	status, env := call(t, app, http.MethodPost, "/api/v1/events/"+eventID+"/payments", token, map[string]any{
		"amount_gbp":   "100",
		"payment_note": "deposit",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("record payment status = %d (%s)", status, env.Error)
	}

	s := summaryOf(t, app, token, eventID)
	if !s.TotalEventValue.Equal(decimal.NewFromInt(250)) || !s.RemainingBalance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("summary = value %s balance %s, want 250 and 150", s.TotalEventValue, s.RemainingBalance)
	}

	status, env = call(t, app, http.MethodPost, "/api/v1/events/"+eventID+"/balance-edits", token, map[string]any{
		"new_balance": 100,
		"reason":      "goodwill discount",
	})
	if status != fiber.StatusOK {
		t.Fatalf("request edit status = %d (%s)", status, env.Error)
	}
	var review balance.Review
	decodeData(t, env, &review)

	confirmPath := "/api/v1/balance-edits/" + review.Token + "/confirm"
	status, env = call(t, app, http.MethodPost, confirmPath, token, map[string]bool{"risk_acknowledged": false})
	if status != fiber.StatusPreconditionRequired || env.Code != string(services.ErrRiskNotAcknowledged) {
		t.Fatalf("unacknowledged confirm: status = %d code = %q", status, env.Code)
	}

	status, env = call(t, app, http.MethodPost, confirmPath, token, map[string]bool{"risk_acknowledged": true})
	if status != fiber.StatusOK {
		t.Fatalf("confirm status = %d (%s)", status, env.Error)
	}

	if s := summaryOf(t, app, token, eventID); !s.RemainingBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance after edit = %s, want 100", s.RemainingBalance)
	}

	if status, _ := call(t, app, http.MethodPost, confirmPath, token, map[string]bool{"risk_acknowledged": true}); status != fiber.StatusNotFound {
		t.Fatalf("second confirm status = %d, want 404", status)
	}

	status, env = call(t, app, http.MethodGet, "/api/v1/events/"+eventID+"/communications", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("communications status = %d", status)
	}
	var entries []map[string]any
	decodeData(t, env, &entries)
	if len(entries) != 2 {
		t.Fatalf("communication entries = %d, want 2", len(entries))
	}
}

func TestRoutes_PendingEditSurvivesOtherTraffic(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app)
	first := createEvent(t, app, token)

	status, env := call(t, app, http.MethodPost, "/api/v1/events/"+first+"/balance-edits", token, map[string]any{
		"new_balance": 200,
		"reason":      "early booking",
	})
	if status != fiber.StatusOK {
		t.Fatalf("request edit status = %d (%s)", status, env.Error)
	}
	var review balance.Review
	decodeData(t, env, &review)

	// Unrelated requests reuse the server's request buffers.
	second := createEvent(t, app, token)
	before := summaryOf(t, app, token, second)
	if status, _ := call(t, app, http.MethodGet, "/api/v1/events/"+second, token, nil); status != fiber.StatusOK {
		t.Fatalf("get second event status = %d", status)
	}

	status, env = call(t, app, http.MethodPost, "/api/v1/balance-edits/"+review.Token+"/confirm", token, map[string]bool{"risk_acknowledged": true})
	if status != fiber.StatusOK {
		t.Fatalf("confirm status = %d (%s)", status, env.Error)
	}

	if s := summaryOf(t, app, token, first); !s.RemainingBalance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("first event balance = %s, want 200", s.RemainingBalance)
	}
	if s := summaryOf(t, app, token, second); !s.RemainingBalance.Equal(before.RemainingBalance) {
		t.Fatalf("second event balance moved from %s to %s", before.RemainingBalance, s.RemainingBalance)
	}
}

func TestRoutes_BookingQRCodeRoundTrip(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app)
	eventID := createEvent(t, app, token)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/"+eventID+"/qrcode", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("qrcode: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("qrcode status = %d content type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	id := uuid.MustParse(eventID)
	status, env := call(t, app, http.MethodPost, "/api/v1/events/scan", token, map[string]string{
		"payload": utils.BookingPayload(id),
	})
	if status != fiber.StatusOK {
		t.Fatalf("scan status = %d (%s)", status, env.Error)
	}
	var lookup struct {
		Reference string `json:"reference"`
	}
	decodeData(t, env, &lookup)
	if lookup.Reference != utils.BookingReference(id) {
		t.Fatalf("reference = %q, want %q", lookup.Reference, utils.BookingReference(id))
	}

	if status, _ := call(t, app, http.MethodPost, "/api/v1/events/scan", token, map[string]string{"payload": "garbage"}); status != fiber.StatusBadRequest {
		t.Fatalf("bad payload status = %d, want 400", status)
	}
}
