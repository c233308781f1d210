package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func (m *Tenant) BeforeCreate(*gorm.DB) error              { m.ID = newID(m.ID); return nil }
func (m *User) BeforeCreate(*gorm.DB) error                { m.ID = newID(m.ID); return nil }
func (m *Customer) BeforeCreate(*gorm.DB) error            { m.ID = newID(m.ID); return nil }
func (m *FieldDefinition) BeforeCreate(*gorm.DB) error     { m.ID = newID(m.ID); return nil }
func (m *FormTemplate) BeforeCreate(*gorm.DB) error        { m.ID = newID(m.ID); return nil }
func (m *FormTemplateField) BeforeCreate(*gorm.DB) error   { m.ID = newID(m.ID); return nil }
func (m *Event) BeforeCreate(*gorm.DB) error               { m.ID = newID(m.ID); return nil }
func (m *EventForm) BeforeCreate(*gorm.DB) error           { m.ID = newID(m.ID); return nil }
func (m *EventPayment) BeforeCreate(*gorm.DB) error        { m.ID = newID(m.ID); return nil }
func (m *BalanceModification) BeforeCreate(*gorm.DB) error { m.ID = newID(m.ID); return nil }
func (m *CommunicationLog) BeforeCreate(*gorm.DB) error    { m.ID = newID(m.ID); return nil }

var ErrImmutable = errors.New("balance modifications cannot be changed")

func (m *BalanceModification) BeforeUpdate(*gorm.DB) error { return ErrImmutable }
func (m *BalanceModification) BeforeDelete(*gorm.DB) error { return ErrImmutable }
