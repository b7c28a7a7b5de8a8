// Package settle turns a vector of signed balances into a short list of
// point-to-point transfers that brings every balance to zero.
//
// The matching is greedy: the largest debtor pays the largest creditor as
// much as either side allows, then whichever side reached zero is replaced by
// the next largest. This yields at most min(debtors, creditors) + ... <= n-1
// transfers, which is the usual worst case, but it is not a globally minimal
// pairing.
package settle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
)

var (
	// ErrConservationViolation is matched by *ConservationError.
	ErrConservationViolation = errors.New("balances do not sum to zero")

	ErrTooFewParticipants = errors.New("at least two participants are required")
)

// ConservationError reports the amount by which a balance vector fails to
// sum to zero.
type ConservationError struct {
	Residual decimal.Decimal
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("%v: residual %s", ErrConservationViolation, e.Residual.StringFixed(money.Places))
}

func (e *ConservationError) Unwrap() error {
	return ErrConservationViolation
}

// party is one side of the matching walk. amount is always >= 0.
type party struct {
	id     string
	amount decimal.Decimal
}

// Settle computes transfers for balances. Duplicate participant IDs are
// summed, then every balance is rounded to cents with money.RoundAll so the
// walk works on exact cents. Participants within money.Epsilon of zero are
// skipped. Equal balances keep their input order, so the output is
// deterministic. Each participant's net transfers match their balance to
// within one cent.
//
// If the balances do not sum to zero the walk still terminates; whatever is
// left over on the longer side is silently unmatched. Use SettleStrict to
// refuse such input.
func Settle(balances []model.Balance) []model.Transfer {
	debtors, creditors := partition(merge(balances))

	transfers := []model.Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := decimal.Min(d.amount, c.amount)
		if amount.LessThanOrEqual(money.Epsilon) {
			// A leftover cent is too small to transfer. Drop only the side
			// holding it so the other keeps its full balance.
			if d.amount.LessThanOrEqual(money.Epsilon) {
				i++
			}
			if c.amount.LessThanOrEqual(money.Epsilon) {
				j++
			}
			continue
		}

		transfers = append(transfers, model.Transfer{
			From:   d.id,
			To:     c.id,
			Amount: amount,
		})

		d.amount = d.amount.Sub(amount)
		c.amount = c.amount.Sub(amount)

		if d.amount.IsZero() {
			i++
		}
		if c.amount.IsZero() {
			j++
		}
	}
	return transfers
}

// SettleStrict is Settle with a conservation precondition: it returns a
// *ConservationError when the balances sum to more than money.Epsilon away
// from zero.
func SettleStrict(balances []model.Balance) ([]model.Transfer, error) {
	if r := Residual(balances); r.Abs().GreaterThan(money.Epsilon) {
		return nil, &ConservationError{Residual: r}
	}
	return Settle(balances), nil
}

// SettleMap settles an unordered balance mapping. Ties are broken by
// participant ID.
func SettleMap(balances map[string]decimal.Decimal) []model.Transfer {
	ids := make([]string, 0, len(balances))
	for k := range balances {
		ids = append(ids, k)
	}
	sort.Strings(ids)

	ordered := make([]model.Balance, len(ids))
	for i, k := range ids {
		ordered[i] = model.Balance{ParticipantID: k, Amount: balances[k]}
	}
	return Settle(ordered)
}

// Residual returns the sum of all balances. A conserved vector has a
// residual of zero.
func Residual(balances []model.Balance) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	return sum
}

// merge sums balances that share a participant ID, keeping first-seen order,
// and rounds the results to cents.
func merge(balances []model.Balance) []model.Balance {
	out := make([]model.Balance, 0, len(balances))
	index := make(map[string]int, len(balances))
	for _, b := range balances {
		if i, ok := index[b.ParticipantID]; ok {
			out[i].Amount = out[i].Amount.Add(b.Amount)
			continue
		}
		index[b.ParticipantID] = len(out)
		out = append(out, b)
	}

	amounts := make([]decimal.Decimal, len(out))
	for i, b := range out {
		amounts[i] = b.Amount
	}
	for i, a := range money.RoundAll(amounts) {
		out[i].Amount = a
	}
	return out
}

// partition splits balances into debtors and creditors, each sorted largest
// first. Sorting is stable: equal amounts stay in input order.
func partition(balances []model.Balance) (debtors, creditors []party) {
	for _, b := range balances {
		switch {
		case b.Amount.LessThan(money.Epsilon.Neg()):
			debtors = append(debtors, party{id: b.ParticipantID, amount: b.Amount.Neg()})
		case b.Amount.GreaterThan(money.Epsilon):
			creditors = append(creditors, party{id: b.ParticipantID, amount: b.Amount})
		}
	}
	largestFirst := func(ps []party) {
		sort.SliceStable(ps, func(a, b int) bool {
			return ps[a].amount.GreaterThan(ps[b].amount)
		})
	}
	largestFirst(debtors)
	largestFirst(creditors)
	return debtors, creditors
}
