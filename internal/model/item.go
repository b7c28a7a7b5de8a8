package model

import "github.com/shopspring/decimal"

// Item is a purchased line on a bill. Its Price is shared equally by the
// participants listed in AssignedTo.
type Item struct {
	ID         string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	Price      decimal.Decimal // UnitPrice x Quantity
	AssignedTo []string        // participant IDs, in assignment order
}

// IsAssigned reports whether participantID shares this item.
func (it Item) IsAssigned(participantID string) bool {
	for _, id := range it.AssignedTo {
		if id == participantID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with it.
func (it Item) Clone() Item {
	out := it
	if it.AssignedTo != nil {
		out.AssignedTo = append([]string(nil), it.AssignedTo...)
	}
	return out
}
