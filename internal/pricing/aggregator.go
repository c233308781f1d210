package pricing

import (
	"github.com/shopspring/decimal"
)

// EventFigures are the event-level money and headcount fields.
type EventFigures struct {
	MenCount          int
	LadiesCount       int
	TotalGuestPrice   decimal.Decimal
	RefundableDeposit decimal.Decimal
	DeductibleDeposit decimal.Decimal
}

// FormFigures is one active form with its live total already computed.
type FormFigures struct {
	ID         string
	Label      string
	GuestCount int
	Total      decimal.Decimal
}

type PaymentFigures struct {
	ID     string
	Amount decimal.Decimal
}

type FormSummary struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	GuestCount int             `json:"guest_count"`
	Total      decimal.Decimal `json:"total"`
}

// Summary is the authoritative money view of one event.
type Summary struct {
	HasForms           bool            `json:"has_forms"`
	GuestCount         int             `json:"guest_count"`
	TotalGuestPrice    decimal.Decimal `json:"total_guest_price"`
	LiveFormTotal      decimal.Decimal `json:"live_form_total"`
	DeductibleDeposit  decimal.Decimal `json:"deductible_deposit"`
	RefundableDeposit  decimal.Decimal `json:"refundable_deposit"`
	TotalEventValue    decimal.Decimal `json:"total_event_value"`
	AdditionalPayments decimal.Decimal `json:"additional_payments"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	RemainingBalance   decimal.Decimal `json:"remaining_balance"`
	Forms              []FormSummary   `json:"forms"`
}

// AggregateEvent combines form totals, deposits and payments into the event
// balance. Event-level guest pricing only counts when there are no forms.
// Negative values are returned as they are.
func AggregateEvent(event EventFigures, forms []FormFigures, payments []PaymentFigures) Summary {
	s := Summary{
		HasForms:          len(forms) > 0,
		DeductibleDeposit: RoundMoney(event.DeductibleDeposit),
		RefundableDeposit: RoundMoney(event.RefundableDeposit),
		Forms:             make([]FormSummary, 0, len(forms)),
	}

	live := decimal.Zero
	guests := 0
	for _, f := range forms {
		live = live.Add(f.Total)
		if f.GuestCount > 0 {
			guests += f.GuestCount
		}
		s.Forms = append(s.Forms, FormSummary{
			ID:         f.ID,
			Label:      f.Label,
			GuestCount: f.GuestCount,
			Total:      RoundMoney(f.Total),
		})
	}
	s.LiveFormTotal = RoundMoney(live)

	if s.HasForms {
		s.TotalGuestPrice = decimal.Zero
		s.GuestCount = guests
	} else {
		s.TotalGuestPrice = RoundMoney(event.TotalGuestPrice)
		s.GuestCount = nonNegative(event.MenCount) + nonNegative(event.LadiesCount)
	}

	s.TotalEventValue = RoundMoney(s.TotalGuestPrice.Add(s.LiveFormTotal).Sub(event.DeductibleDeposit))

	paid := decimal.Zero
	for _, p := range payments {
		if p.ID == "" {
			continue
		}
		paid = paid.Add(p.Amount)
	}
	s.AdditionalPayments = RoundMoney(paid)
	s.TotalPaid = RoundMoney(event.DeductibleDeposit.Add(s.AdditionalPayments))
	s.RemainingBalance = RoundMoney(s.TotalEventValue.Sub(s.AdditionalPayments))

	return s
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
