package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
)

// ComputeBalances returns how much each participant owes: the sum of their
// equal shares of every item they are assigned to. Every participant is
// present, with zero if they are assigned to nothing. Items with no assignees
// are left unallocated.
func (l *Ledger) ComputeBalances() map[string]decimal.Decimal {
	return model.BalanceMap(l.OwedShares())
}

// OwedShares is ComputeBalances in participant order.
func (l *Ledger) OwedShares() []model.Balance {
	return Owed(l.bill.Participants, l.bill.Items)
}

// Unallocated returns the total price of items nobody is assigned to.
func (l *Ledger) Unallocated() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.bill.Items {
		if len(it.AssignedTo) == 0 {
			total = total.Add(it.Price)
		}
	}
	return total
}

// Owed computes owed shares for participants over items. Each item's price
// is split cent-exactly among its assignees; leftover cents go to the
// earliest assignees. Assignees that are not in participants are ignored.
func Owed(participants []model.Participant, items []model.Item) []model.Balance {
	owed := make([]model.Balance, len(participants))
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		owed[i] = model.Balance{ParticipantID: p.ID, Amount: decimal.Zero}
		index[p.ID] = i
	}

	for _, it := range items {
		shares := money.Split(it.Price, len(it.AssignedTo))
		for k, a := range it.AssignedTo {
			if i, ok := index[a]; ok {
				owed[i].Amount = owed[i].Amount.Add(shares[k])
			}
		}
	}
	return owed
}
