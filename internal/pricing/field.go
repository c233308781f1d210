package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldPrice    FieldType = "price_field"
	FieldCounter  FieldType = "counter_field"
)

// FieldTypes lists every supported field type in display order.
var FieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldNumber, FieldSelect, FieldCheckbox,
	FieldDate, FieldTime, FieldPrice, FieldCounter,
}

type ValueKind string

const (
	ValueText    ValueKind = "text"
	ValueNumber  ValueKind = "number"
	ValueChoice  ValueKind = "choice"
	ValueBoolean ValueKind = "boolean"
	ValueDate    ValueKind = "date"
	ValueTime    ValueKind = "time"
)

type fieldTraits struct {
	toggle     bool
	quantified bool
	kind       ValueKind
}

func traitsOf(t FieldType) (fieldTraits, bool) {
	switch t {
	case FieldText, FieldTextarea:
		return fieldTraits{kind: ValueText}, true
	case FieldNumber:
		return fieldTraits{kind: ValueNumber}, true
	case FieldSelect:
		return fieldTraits{kind: ValueChoice}, true
	case FieldCheckbox:
		return fieldTraits{toggle: true, kind: ValueBoolean}, true
	case FieldDate:
		return fieldTraits{kind: ValueDate}, true
	case FieldTime:
		return fieldTraits{kind: ValueTime}, true
	case FieldPrice:
		return fieldTraits{toggle: true, kind: ValueNumber}, true
	case FieldCounter:
		return fieldTraits{quantified: true, kind: ValueNumber}, true
	default:
		return fieldTraits{}, false
	}
}

func ParseFieldType(s string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := traitsOf(t); !ok {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

func (t FieldType) Valid() bool {
	_, ok := traitsOf(t)
	return ok
}

// Toggle reports whether responses of this type carry an enabled switch.
// A toggle field without enabled=true never contributes to a total.
func (t FieldType) Toggle() bool {
	tr, _ := traitsOf(t)
	return tr.toggle
}

// Quantified reports whether the type always records a quantity.
func (t FieldType) Quantified() bool {
	tr, _ := traitsOf(t)
	return tr.quantified
}

func (t FieldType) ValueKind() ValueKind {
	tr, _ := traitsOf(t)
	return tr.kind
}

type PricingType string

const (
	PricingFixed      PricingType = "fixed"
	PricingPerPerson  PricingType = "per_person"
	PricingPercentage PricingType = "percentage"
	PricingNone       PricingType = "none"
)

// ParsePricingType maps an empty value to PricingNone.
func ParsePricingType(s string) (PricingType, error) {
	switch p := PricingType(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PricingNone, nil
	case PricingFixed, PricingPerPerson, PricingPercentage, PricingNone:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pricing type %q", s)
	}
}

// FieldDefinition is the calculator's view of a field library entry.
type FieldDefinition struct {
	ID             string
	Label          string
	Type           FieldType
	AffectsPricing bool
	PricingType    PricingType
	UnitPrice      decimal.Decimal
	ShowQuantity   bool
	ShowNotes      bool
}

// Priced reports whether responses to this field can move a form total.
func (d FieldDefinition) Priced() bool {
	return d.AffectsPricing && d.PricingType != PricingNone && d.Type.Valid()
}

// CarriesQuantity reports whether a response to this field records a quantity.
func (d FieldDefinition) CarriesQuantity() bool {
	return d.ShowQuantity || d.Type.Quantified()
}
