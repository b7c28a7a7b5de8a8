package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSettlementName is used when a settlement is saved without a name.
const DefaultSettlementName = "Settlement"

// ErrTransferIndex is returned when a transfer index is out of range.
var ErrTransferIndex = errors.New("transfer index out of range")

// PersonPayment is one participant's row in a settlement summary.
type PersonPayment struct {
	Participant
	Paid    decimal.Decimal // what they contributed
	Owed    decimal.Decimal // what they consumed
	Balance decimal.Decimal // Paid - Owed
}

// Settlement is a computed set of transfers together with the figures it was
// computed from.
type Settlement struct {
	ID        string
	Name      string
	CreatedAt time.Time
	People    []PersonPayment
	Transfers []Transfer
}

// Total returns the sum of all transfer amounts.
func (s Settlement) Total() decimal.Decimal {
	return s.sum(func(Transfer) bool { return true })
}

// SettledTotal returns the sum of transfers marked as settled.
func (s Settlement) SettledTotal() decimal.Decimal {
	return s.sum(func(t Transfer) bool { return t.Settled })
}

// PendingTotal returns the sum of transfers not yet settled.
func (s Settlement) PendingTotal() decimal.Decimal {
	return s.sum(func(t Transfer) bool { return !t.Settled })
}

func (s Settlement) sum(include func(Transfer) bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range s.Transfers {
		if include(t) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Toggle flips the Settled flag of the transfer at index i (0-based) and
// returns the new value.
func (s *Settlement) Toggle(i int) (bool, error) {
	if i < 0 || i >= len(s.Transfers) {
		return false, fmt.Errorf("%w: %d (have %d)", ErrTransferIndex, i, len(s.Transfers))
	}
	s.Transfers[i].Settled = !s.Transfers[i].Settled
	return s.Transfers[i].Settled, nil
}

// PersonName returns the display name for id, or UnknownName.
func (s Settlement) PersonName(id string) string {
	for _, p := range s.People {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownName
}
