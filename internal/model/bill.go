package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBillName is used when a bill is created without a name.
const DefaultBillName = "My Bill"

// UnknownName is displayed for a participant ID that is not on the bill.
const UnknownName = "Unknown"

// Bill is one editing session: the people at the table and what they ordered.
type Bill struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	Participants []Participant
	Items        []Item
}

// Total returns the sum of all item prices, assigned or not.
func (b Bill) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.Items {
		total = total.Add(it.Price)
	}
	return total
}

// ParticipantName returns the display name for id, or UnknownName.
func (b Bill) ParticipantName(id string) string {
	for _, p := range b.Participants {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownName
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	out := b
	if b.Participants != nil {
		out.Participants = append([]Participant(nil), b.Participants...)
	}
	if b.Items != nil {
		out.Items = make([]Item, len(b.Items))
		for i, it := range b.Items {
			out.Items[i] = it.Clone()
		}
	}
	return out
}
