package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FullName  string    `json:"full_name"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"` // admin|manager|staff
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `gorm:"type:text" json:"notes"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldDefinition is an entry in a tenant's field library. Definitions are
// never deleted, only disabled.
type FieldDefinition struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_field_tenant_name" json:"tenant_id"`
	Name           string          `gorm:"not null;uniqueIndex:idx_field_tenant_name" json:"name"`
	Label          string          `gorm:"not null" json:"label"`
	FieldType      string          `gorm:"type:varchar(20);not null" json:"field_type"`
	AffectsPricing bool            `gorm:"default:false" json:"affects_pricing"`
	PricingType    string          `gorm:"type:varchar(20);not null;default:'none'" json:"pricing_type"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"unit_price"`
	ShowQuantity   bool            `gorm:"default:false" json:"show_quantity"`
	ShowNotes      bool            `gorm:"default:false" json:"show_notes"`
	Options        datatypes.JSON  `json:"options,omitempty"`
	Placeholder    string          `json:"placeholder"`
	HelpText       string          `json:"help_text"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type FormTemplate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_form_tenant_slug" json:"tenant_id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"not null;uniqueIndex:idx_form_tenant_slug" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Fields []FormTemplateField `gorm:"foreignKey:FormTemplateID" json:"fields,omitempty"`
}

type FormTemplateField struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	FormTemplateID    uuid.UUID `gorm:"type:uuid;index;not null" json:"form_template_id"`
	FieldDefinitionID uuid.UUID `gorm:"type:uuid;index;not null" json:"field_definition_id"`
	SortOrder         int       `gorm:"not null;default:0" json:"sort_order"`
	Required          bool      `gorm:"default:false" json:"required"`
	CreatedAt         time.Time `json:"created_at"`

	// Relations
	FieldDefinition FieldDefinition `gorm:"foreignKey:FieldDefinitionID" json:"field_definition"`
}

type Event struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID           uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	CustomerID         *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"`
	Title              string          `gorm:"not null" json:"title"`
	EventType          string          `json:"event_type"`
	EventDate          datatypes.Date  `gorm:"index" json:"event_date"`
	StartTime          string          `gorm:"type:varchar(8)" json:"start_time"`
	EndTime            string          `gorm:"type:varchar(8)" json:"end_time"`
	MenCount           int             `gorm:"default:0" json:"men_count"`
	LadiesCount        int             `gorm:"default:0" json:"ladies_count"`
	TotalGuestPrice    decimal.Decimal `gorm:"column:total_guest_price_gbp;type:numeric(12,2);default:0" json:"total_guest_price_gbp"`
	RefundableDeposit  decimal.Decimal `gorm:"column:refundable_deposit_gbp;type:numeric(12,2);default:0" json:"refundable_deposit_gbp"`
	DeductibleDeposit  decimal.Decimal `gorm:"column:deductible_deposit_gbp;type:numeric(12,2);default:0" json:"deductible_deposit_gbp"`
	Status             string          `gorm:"type:varchar(20);default:'enquiry'" json:"status"` // enquiry|confirmed|completed|cancelled
	Notes              string          `gorm:"type:text" json:"notes"`
	ExternalCalendarID string          `json:"external_calendar_id"`
	CalendarSyncedAt   *time.Time      `json:"calendar_synced_at"`
	IsActive           bool            `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// EventForm is a form template attached to an event. FormTotal is a cache of
// the last save; live figures are always recomputed from FormResponses.
type EventForm struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	EventID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	FormTemplateID uuid.UUID       `gorm:"type:uuid;index;not null" json:"form_id"`
	FormLabel      string          `json:"form_label"`
	FormOrder      int             `gorm:"default:0" json:"form_order"`
	GuestCount     int             `gorm:"default:0" json:"guest_count"`
	GuestPrice     decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"guest_price"`
	StartTime      string          `gorm:"type:varchar(8)" json:"start_time"`
	EndTime        string          `gorm:"type:varchar(8)" json:"end_time"`
	FormResponses  datatypes.JSON  `json:"form_responses"`
	FormTotal      decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"form_total"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type EventPayment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	EventID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	AmountGBP   decimal.Decimal `gorm:"column:amount_gbp;type:numeric(12,2);not null" json:"amount_gbp"`
	PaymentDate datatypes.Date  `json:"payment_date"`
	PaymentNote string          `json:"payment_note"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BalanceModification is the audit row of a manual balance edit. It is
// written once and never updated.
type BalanceModification struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	EventID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	OriginalBalance  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"original_balance"`
	NewBalance       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"new_balance"`
	EditReason       string          `gorm:"type:text;not null" json:"edit_reason"`
	ModifiedBy       uuid.UUID       `gorm:"type:uuid;not null" json:"modified_by"`
	RiskAcknowledged bool            `gorm:"not null" json:"risk_acknowledged"`
	CreatedAt        time.Time       `json:"created_at"`
}

const (
	CommunicationNote          = "note"
	CommunicationBalanceChange = "balance_change"
	CommunicationPayment       = "payment"
	CommunicationCalendarSync  = "calendar_sync"
)

type CommunicationLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenant_id"`
	EventID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Kind       string     `gorm:"type:varchar(20);not null;default:'note'" json:"kind"`
	Summary    string     `gorm:"type:text;not null" json:"summary"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
