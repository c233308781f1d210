package pricing

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldResponse is the value recorded for one field instance on an event form.
// Numeric members are pointers: nil means "absent", which matters for the
// manual_override ?? calculated_total ?? price precedence.
type FieldResponse struct {
	Enabled         *bool            `json:"enabled,omitempty"`
	Value           any              `json:"value,omitempty"`
	Quantity        *int             `json:"quantity,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	CalculatedTotal *decimal.Decimal `json:"calculated_total,omitempty"`
	ManualOverride  *decimal.Decimal `json:"manual_override,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// Responses maps field definition id to response.
type Responses map[string]FieldResponse

// UnmarshalJSON accepts whatever shape a stored response has drifted into:
// numbers as strings, NaN, empty strings. Nothing numeric makes it fail.
func (r *FieldResponse) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*r = FieldResponse{}
	if raw == nil {
		return nil
	}

	r.Enabled = parseBool(raw["enabled"])
	r.Value = raw["value"]
	r.Quantity = parseQuantity(raw["quantity"])
	r.Price = optionalAmount(raw["price"])
	r.UnitPrice = optionalAmount(raw["unit_price"])
	r.CalculatedTotal = optionalAmount(raw["calculated_total"])
	r.ManualOverride = optionalAmount(raw["manual_override"])
	if notes, ok := raw["notes"].(string); ok {
		r.Notes = notes
	}
	return nil
}

func parseBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			b := true
			return &b
		case "false", "0", "no", "off":
			b := false
			return &b
		}
	}
	return nil
}

// parseQuantity keeps a present-but-garbage quantity as 0 and clamps negatives.
func parseQuantity(v any) *int {
	if v == nil {
		return nil
	}
	q := int(ParseAmount(v).IntPart())
	if q < 0 {
		q = 0
	}
	return &q
}

func optionalAmount(v any) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := ParseAmount(v)
	return &d
}

// EffectivePrice is the per-response price, falling back to unit_price.
func (r FieldResponse) EffectivePrice() decimal.Decimal {
	if r.Price != nil {
		return *r.Price
	}
	if r.UnitPrice != nil {
		return *r.UnitPrice
	}
	return decimal.Zero
}

// Normalize recomputes calculated_total from quantity and unit_price when
// both are present and drops it otherwise.
func (r FieldResponse) Normalize() FieldResponse {
	if r.Quantity != nil && r.UnitPrice != nil {
		total := RoundMoney(r.UnitPrice.Mul(decimal.NewFromInt(int64(*r.Quantity))))
		r.CalculatedTotal = &total
	} else {
		r.CalculatedTotal = nil
	}
	return r
}

// NewFieldResponse seeds a response from a definition. The definition price is
// copied as a snapshot; later price changes in the library do not touch it.
// Percentage fields never get a unit price, so no calculated total can shadow
// the percentage.
func NewFieldResponse(def FieldDefinition) FieldResponse {
	var resp FieldResponse
	if def.Type.Toggle() {
		disabled := false
		resp.Enabled = &disabled
	}
	if def.AffectsPricing {
		price := def.UnitPrice
		resp.Price = &price
		if def.CarriesQuantity() && def.PricingType != PricingPercentage {
			unit := def.UnitPrice
			resp.UnitPrice = &unit
		}
	}
	if def.CarriesQuantity() {
		zero := 0
		resp.Quantity = &zero
	}
	return resp.Normalize()
}

// Equal compares two responses by value.
func (r FieldResponse) Equal(o FieldResponse) bool {
	return boolPtrEqual(r.Enabled, o.Enabled) &&
		intPtrEqual(r.Quantity, o.Quantity) &&
		amountPtrEqual(r.Price, o.Price) &&
		amountPtrEqual(r.UnitPrice, o.UnitPrice) &&
		amountPtrEqual(r.CalculatedTotal, o.CalculatedTotal) &&
		amountPtrEqual(r.ManualOverride, o.ManualOverride) &&
		r.Notes == o.Notes &&
		reflect.DeepEqual(r.Value, o.Value)
}

// Equal compares two response sets by value.
func (rs Responses) Equal(o Responses) bool {
	if len(rs) != len(o) {
		return false
	}
	for id, r := range rs {
		other, ok := o[id]
		if !ok || !r.Equal(other) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the map; responses are values.
func (rs Responses) Clone() Responses {
	out := make(Responses, len(rs))
	for id, r := range rs {
		out[id] = r
	}
	return out
}

// DecodeResponses parses a stored form_responses document. Entries that are
// not objects are skipped and a broken document yields an empty set.
func DecodeResponses(data []byte) Responses {
	out := Responses{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return out
	}
	for id, entry := range raw {
		var r FieldResponse
		if err := json.Unmarshal(entry, &r); err != nil {
			continue
		}
		out[id] = r
	}
	return out
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func amountPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
