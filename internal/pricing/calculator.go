package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

type LineSource string

const (
	SourceOverride   LineSource = "manual_override"
	SourceCalculated LineSource = "calculated_total"
	SourcePrice      LineSource = "price"
	SourcePercentage LineSource = "percentage"
)

// FormInput is everything the calculator needs from one event form.
type FormInput struct {
	GuestCount int
	GuestPrice decimal.Decimal
	Responses  Responses
}

type Line struct {
	FieldID string          `json:"field_id"`
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	Source  LineSource      `json:"source"`
}

type FormTotal struct {
	GuestCount int             `json:"guest_count"`
	GuestTotal decimal.Decimal `json:"guest_total"`
	Lines      []Line          `json:"lines"`
	Total      decimal.Decimal `json:"total"`
}

// CalculateFormTotal computes the live total of one form. Responses whose
// field is unknown, not priced, or switched off contribute nothing; garbage
// numbers have already been coerced to zero while decoding.
func CalculateFormTotal(in FormInput, defs map[string]FieldDefinition) FormTotal {
	guests := in.GuestCount
	if guests < 0 {
		guests = 0
	}

	result := FormTotal{
		GuestCount: guests,
		GuestTotal: in.GuestPrice.Mul(decimal.NewFromInt(int64(guests))),
		Lines:      []Line{},
	}
	subtotal := result.GuestTotal

	ids := make([]string, 0, len(in.Responses))
	for id := range in.Responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var percentages []string
	for _, id := range ids {
		def, ok := defs[id]
		if !ok || !def.Priced() {
			continue
		}
		resp := in.Responses[id]
		if !included(def, resp) {
			continue
		}

		if def.PricingType == PricingPercentage && resp.ManualOverride == nil && resp.CalculatedTotal == nil {
			percentages = append(percentages, id)
			continue
		}

		amount, source := lineAmount(resp)
		subtotal = subtotal.Add(amount)
		result.Lines = append(result.Lines, Line{FieldID: id, Label: def.Label, Amount: amount, Source: source})
	}

	base := subtotal
	for _, id := range percentages {
		def := defs[id]
		amount := base.Mul(in.Responses[id].EffectivePrice()).Div(decimal.NewFromInt(100))
		subtotal = subtotal.Add(amount)
		result.Lines = append(result.Lines, Line{FieldID: id, Label: def.Label, Amount: amount, Source: SourcePercentage})
	}

	result.Total = RoundMoney(subtotal)
	return result
}

// FormTotalOf is CalculateFormTotal without the breakdown.
func FormTotalOf(in FormInput, defs map[string]FieldDefinition) decimal.Decimal {
	return CalculateFormTotal(in, defs).Total
}

// included applies the enabled gate. An explicit enabled=false always wins;
// a missing flag only passes for field types that have no toggle.
func included(def FieldDefinition, resp FieldResponse) bool {
	if resp.Enabled != nil {
		return *resp.Enabled
	}
	return !def.Type.Toggle()
}

// lineAmount is override, then calculated total, then price x quantity with a
// missing quantity counting as one unit. Per-head revenue goes in guest_price.
func lineAmount(resp FieldResponse) (decimal.Decimal, LineSource) {
	if resp.ManualOverride != nil {
		return *resp.ManualOverride, SourceOverride
	}
	if resp.CalculatedTotal != nil {
		return *resp.CalculatedTotal, SourceCalculated
	}

	qty := 1
	if resp.Quantity != nil {
		qty = *resp.Quantity
	}
	if qty < 0 {
		qty = 0
	}

	return resp.EffectivePrice().Mul(decimal.NewFromInt(int64(qty))), SourcePrice
}
