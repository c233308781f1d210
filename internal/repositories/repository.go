package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is matched by every not-found error returned from this package.
var ErrNotFound = errors.New("record not found")

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// wrapFind maps gorm.ErrRecordNotFound to a NotFoundError.
func wrapFind(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

type Repository struct {
	DB                *gorm.DB
	TenantRepo        TenantRepository
	UserRepo          UserRepository
	CustomerRepo      CustomerRepository
	FieldRepo         FieldRepository
	FormRepo          FormTemplateRepository
	EventRepo         EventRepository
	EventFormRepo     EventFormRepository
	PaymentRepo       PaymentRepository
	BalanceRepo       BalanceRepository
	CommunicationRepo CommunicationRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:                db,
		TenantRepo:        NewTenantRepository(db),
		UserRepo:          NewUserRepository(db),
		CustomerRepo:      NewCustomerRepository(db),
		FieldRepo:         NewFieldRepository(db),
		FormRepo:          NewFormTemplateRepository(db),
		EventRepo:         NewEventRepository(db),
		EventFormRepo:     NewEventFormRepository(db),
		PaymentRepo:       NewPaymentRepository(db),
		BalanceRepo:       NewBalanceRepository(db),
		CommunicationRepo: NewCommunicationRepository(db),
	}
}

// WithTx returns a Repository whose members all run on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction runs fn inside one database transaction. Any error returned by
// fn rolls everything back.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Customer{},
		&models.FieldDefinition{},
		&models.FormTemplate{},
		&models.FormTemplateField{},
		&models.Event{},
		&models.EventForm{},
		&models.EventPayment{},
		&models.BalanceModification{},
		&models.CommunicationLog{},
	)
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func likeTerm(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// Interface definitions
type TenantRepository interface {
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenantByID(ctx context.Context, id string) (*models.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, tenantID, id string) (*models.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomerByID(ctx context.Context, tenantID, id string) (*models.Customer, error)
	GetCustomerByEmail(ctx context.Context, tenantID, email string) (*models.Customer, error)
	ListCustomers(ctx context.Context, tenantID string, offset, limit int, search string) ([]models.Customer, int64, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	CountCustomers(ctx context.Context, tenantID string) (int64, error)
}

type FieldRepository interface {
	CreateField(ctx context.Context, field *models.FieldDefinition) error
	GetFieldByID(ctx context.Context, tenantID, id string) (*models.FieldDefinition, error)
	GetFieldByName(ctx context.Context, tenantID, name string) (*models.FieldDefinition, error)
	ListFields(ctx context.Context, tenantID string, activeOnly bool) ([]models.FieldDefinition, error)
	GetFieldsByIDs(ctx context.Context, tenantID string, ids []string) ([]models.FieldDefinition, error)
	UpdateField(ctx context.Context, field *models.FieldDefinition) error
	SetFieldActive(ctx context.Context, tenantID, id string, active bool) error
}

type FormTemplateRepository interface {
	CreateFormTemplate(ctx context.Context, form *models.FormTemplate, fields []models.FormTemplateField) error
	GetFormTemplateByID(ctx context.Context, tenantID, id string) (*models.FormTemplate, error)
	GetFormTemplateWithFields(ctx context.Context, tenantID, id string) (*models.FormTemplate, error)
	SlugExists(ctx context.Context, tenantID, slug string) (bool, error)
	ListFormTemplates(ctx context.Context, tenantID string, activeOnly bool) ([]models.FormTemplate, error)
	SoftDeleteFormTemplate(ctx context.Context, tenantID, id string) error
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, tenantID, id string) (*models.Event, error)
	GetEventWithCustomer(ctx context.Context, tenantID, id string) (*models.Event, error)
	ListEvents(ctx context.Context, tenantID string, offset, limit int, filters *EventFilters) ([]models.Event, int64, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	SoftDeleteEvent(ctx context.Context, tenantID, id string) error
	MarkCalendarSynced(ctx context.Context, tenantID, id, externalID string) error
}

type EventFormRepository interface {
	CreateEventForm(ctx context.Context, form *models.EventForm) error
	GetEventFormByID(ctx context.Context, tenantID, id string) (*models.EventForm, error)
	ListActiveForms(ctx context.Context, tenantID, eventID string) ([]models.EventForm, error)
	NextFormOrder(ctx context.Context, tenantID, eventID string) (int, error)
	SaveEventForm(ctx context.Context, tenantID string, form *models.EventForm) error
	SoftDeleteEventForm(ctx context.Context, tenantID, id string) error
	ListAllActiveForms(ctx context.Context) ([]models.EventForm, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.EventPayment) error
	ListPayments(ctx context.Context, tenantID, eventID string) ([]models.EventPayment, error)
}

type BalanceRepository interface {
	CreateBalanceModification(ctx context.Context, mod *models.BalanceModification) error
	ListBalanceModifications(ctx context.Context, tenantID, eventID string) ([]models.BalanceModification, error)
}

type CommunicationRepository interface {
	CreateCommunicationLog(ctx context.Context, entry *models.CommunicationLog) error
	ListCommunicationLogs(ctx context.Context, tenantID, eventID string, offset, limit int) ([]models.CommunicationLog, int64, error)
}
