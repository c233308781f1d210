package pricing

import (
	"github.com/shopspring/decimal"
)

// Snapshot is the editable state of one event form.
type Snapshot struct {
	GuestCount int
	GuestPrice decimal.Decimal
	StartTime  string
	EndTime    string
	Responses  Responses
}

func (s Snapshot) clone() Snapshot {
	s.Responses = s.Responses.Clone()
	return s
}

// Equal is a structural comparison; decimals compare by value.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.GuestCount == o.GuestCount &&
		s.GuestPrice.Equal(o.GuestPrice) &&
		s.StartTime == o.StartTime &&
		s.EndTime == o.EndTime &&
		s.Responses.Equal(o.Responses)
}

// Input returns the calculator input for the snapshot.
func (s Snapshot) Input() FormInput {
	return FormInput{GuestCount: s.GuestCount, GuestPrice: s.GuestPrice, Responses: s.Responses}
}

// Patch is a partial edit. Nil members are left untouched; each entry in
// Responses replaces the stored response for that field.
type Patch struct {
	GuestCount *int
	GuestPrice *decimal.Decimal
	StartTime  *string
	EndTime    *string
	Responses  Responses
	Remove     []string
}

// Draft is one editing session over a form. It is not safe for concurrent use.
type Draft struct {
	saved   Snapshot
	current Snapshot
}

func NewDraft(saved Snapshot) *Draft {
	return &Draft{saved: saved.clone(), current: saved.clone()}
}

func (d *Draft) Apply(p Patch) {
	if p.GuestCount != nil {
		d.current.GuestCount = nonNegative(*p.GuestCount)
	}
	if p.GuestPrice != nil {
		d.current.GuestPrice = *p.GuestPrice
	}
	if p.StartTime != nil {
		d.current.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		d.current.EndTime = *p.EndTime
	}
	if len(p.Responses) > 0 || len(p.Remove) > 0 {
		if d.current.Responses == nil {
			d.current.Responses = Responses{}
		}
		for id, r := range p.Responses {
			d.current.Responses[id] = r.Normalize()
		}
		for _, id := range p.Remove {
			delete(d.current.Responses, id)
		}
	}
}

func (d *Draft) Current() Snapshot { return d.current.clone() }

func (d *Draft) Saved() Snapshot { return d.saved.clone() }

func (d *Draft) IsDirty() bool {
	return !d.current.Equal(d.saved)
}

// Commit marks the current state as saved.
func (d *Draft) Commit() {
	d.saved = d.current.clone()
}

// Discard drops unsaved edits.
func (d *Draft) Discard() {
	d.current = d.saved.clone()
}
