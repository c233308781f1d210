package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/peritasorg/eventis-sub000/internal/pricing"
)

// Pricing returns the calculator's view of the definition.
func (f FieldDefinition) Pricing() pricing.FieldDefinition {
	pt, err := pricing.ParsePricingType(f.PricingType)
	if err != nil {
		pt = pricing.PricingNone
	}
	return pricing.FieldDefinition{
		ID:             f.ID.String(),
		Label:          f.Label,
		Type:           pricing.FieldType(f.FieldType),
		AffectsPricing: f.AffectsPricing,
		PricingType:    pt,
		UnitPrice:      f.UnitPrice,
		ShowQuantity:   f.ShowQuantity,
		ShowNotes:      f.ShowNotes,
	}
}

// DefinitionMap indexes definitions by id for the calculator.
func DefinitionMap(defs []FieldDefinition) map[string]pricing.FieldDefinition {
	out := make(map[string]pricing.FieldDefinition, len(defs))
	for _, d := range defs {
		out[d.ID.String()] = d.Pricing()
	}
	return out
}

func (f EventForm) Responses() pricing.Responses {
	return pricing.DecodeResponses(f.FormResponses)
}

func (f *EventForm) SetResponses(rs pricing.Responses) error {
	if rs == nil {
		rs = pricing.Responses{}
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	f.FormResponses = datatypes.JSON(data)
	return nil
}

// Snapshot is the editable state of the form as last saved.
func (f EventForm) Snapshot() pricing.Snapshot {
	return pricing.Snapshot{
		GuestCount: f.GuestCount,
		GuestPrice: f.GuestPrice,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Responses:  f.Responses(),
	}
}

func (e Event) Figures() pricing.EventFigures {
	return pricing.EventFigures{
		MenCount:          e.MenCount,
		LadiesCount:       e.LadiesCount,
		TotalGuestPrice:   e.TotalGuestPrice,
		RefundableDeposit: e.RefundableDeposit,
		DeductibleDeposit: e.DeductibleDeposit,
	}
}

func (p EventPayment) Figures() pricing.PaymentFigures {
	id := ""
	if p.ID != uuid.Nil {
		id = p.ID.String()
	}
	return pricing.PaymentFigures{ID: id, Amount: p.AmountGBP}
}
