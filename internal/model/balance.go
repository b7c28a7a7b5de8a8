package model

import "github.com/shopspring/decimal"

// Balance is a participant's signed position: positive means they are owed
// money, negative means they owe money.
type Balance struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// BalanceMap indexes balances by participant. Later duplicates are summed.
func BalanceMap(balances []Balance) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		m[b.ParticipantID] = m[b.ParticipantID].Add(b.Amount)
	}
	return m
}
