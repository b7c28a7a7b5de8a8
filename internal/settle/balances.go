package settle

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
)

// FromPayments builds balances for payment reconciliation: each participant
// has an independently known owed amount and an entered paid amount, and
// balance = paid - owed. The result follows the order of owed; participants
// that only appear in paid are appended sorted by ID.
func FromPayments(owed []model.Balance, paid map[string]decimal.Decimal) []model.Balance {
	out := make([]model.Balance, 0, len(owed))
	seen := make(map[string]bool, len(owed))
	for _, o := range owed {
		seen[o.ParticipantID] = true
		out = append(out, model.Balance{
			ParticipantID: o.ParticipantID,
			Amount:        paid[o.ParticipantID].Sub(o.Amount),
		})
	}

	var extra []string
	for pid := range paid {
		if !seen[pid] {
			extra = append(extra, pid)
		}
	}
	sort.Strings(extra)
	for _, pid := range extra {
		out = append(out, model.Balance{ParticipantID: pid, Amount: paid[pid]})
	}
	return out
}

// FromConsumption builds balances for a bill with no payment tracking:
// everybody is assumed to have put in an equal share of the total, so
// balance = equal share - owed. Someone who consumed more than their share
// ends up negative.
func FromConsumption(owed []model.Balance) []model.Balance {
	total := decimal.Zero
	for _, o := range owed {
		total = total.Add(o.Amount)
	}
	shares := money.Split(total, len(owed))

	out := make([]model.Balance, len(owed))
	for i, o := range owed {
		out[i] = model.Balance{ParticipantID: o.ParticipantID, Amount: shares[i].Sub(o.Amount)}
	}
	return out
}

// FromPooled builds balances when each participant reports what they spent
// on the group: balance = spent - average spend.
func FromPooled(spent []model.Balance) []model.Balance {
	total := decimal.Zero
	for _, s := range spent {
		total = total.Add(s.Amount)
	}
	shares := money.Split(total, len(spent))

	out := make([]model.Balance, len(spent))
	for i, s := range spent {
		out[i] = model.Balance{ParticipantID: s.ParticipantID, Amount: s.Amount.Sub(shares[i])}
	}
	return out
}

// RequireParticipants returns ErrTooFewParticipants when fewer than two
// balances are given.
func RequireParticipants(balances []model.Balance) error {
	if len(balances) < 2 {
		return ErrTooFewParticipants
	}
	return nil
}
