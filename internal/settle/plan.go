package settle

import (
	"strings"
	"time"

	"github.com/billsplit-dev/billsplit/internal/id"
	"github.com/billsplit-dev/billsplit/internal/model"
)

// People joins participants with their owed amounts and balances into
// settlement summary rows. Paid is derived as owed + balance. A nil owed
// means only balances are known, and Paid and Owed stay zero.
func People(participants []model.Participant, owed, balances []model.Balance) []model.PersonPayment {
	owedBy := model.BalanceMap(owed)
	balanceBy := model.BalanceMap(balances)

	rows := make([]model.PersonPayment, len(participants))
	for i, p := range participants {
		b := balanceBy[p.ID]
		rows[i] = model.PersonPayment{Participant: p, Balance: b}
		if owed != nil {
			o := owedBy[p.ID]
			rows[i].Paid = o.Add(b)
			rows[i].Owed = o
		}
	}
	return rows
}

// Plan settles the balances of people and wraps the result as a
// model.Settlement. An empty name becomes model.DefaultSettlementName.
func Plan(ids id.Generator, name string, now time.Time, people []model.PersonPayment) model.Settlement {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultSettlementName
	}

	balances := make([]model.Balance, len(people))
	for i, p := range people {
		balances[i] = model.Balance{ParticipantID: p.ID, Amount: p.Balance}
	}

	return model.Settlement{
		ID:        ids.Next(id.KindSettlement),
		Name:      name,
		CreatedAt: now,
		People:    people,
		Transfers: Settle(balances),
	}
}
