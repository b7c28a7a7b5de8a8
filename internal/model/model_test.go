package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBillTotal(t *testing.T) {
	b := Bill{Items: []Item{
		{ID: "i-001", Price: dec("12.50"), AssignedTo: []string{"p-001"}},
		{ID: "i-002", Price: dec("7.25")},
	}}
	assert.Equal(t, "19.75", b.Total().StringFixed(2))
	assert.True(t, Bill{}.Total().IsZero())
}

func TestBillClone_Independent(t *testing.T) {
	b := Bill{
		Name:         "Dinner",
		Participants: []Participant{{ID: "p-001", Name: "Ana"}},
		Items:        []Item{{ID: "i-001", AssignedTo: []string{"p-001"}}},
	}
	c := b.Clone()
	c.Participants[0].Name = "Bea"
	c.Items[0].AssignedTo[0] = "p-002"

	assert.Equal(t, "Ana", b.Participants[0].Name)
	assert.Equal(t, "p-001", b.Items[0].AssignedTo[0])
}

func TestParticipantName(t *testing.T) {
	b := Bill{Participants: []Participant{{ID: "p-001", Name: "Ana"}}}
	assert.Equal(t, "Ana", b.ParticipantName("p-001"))
	assert.Equal(t, UnknownName, b.ParticipantName("p-404"))
}

func TestItemIsAssigned(t *testing.T) {
	it := Item{AssignedTo: []string{"p-001", "p-003"}}
	assert.True(t, it.IsAssigned("p-003"))
	assert.False(t, it.IsAssigned("p-002"))
}

func TestBalanceMap_SumsDuplicates(t *testing.T) {
	m := BalanceMap([]Balance{
		{ParticipantID: "a", Amount: dec("10")},
		{ParticipantID: "b", Amount: dec("-4")},
		{ParticipantID: "a", Amount: dec("-6")},
	})
	require.Len(t, m, 2)
	assert.Equal(t, "4.00", m["a"].StringFixed(2))
	assert.Equal(t, "-4.00", m["b"].StringFixed(2))
}

func TestSettlementTotals(t *testing.T) {
	s := Settlement{Transfers: []Transfer{
		{From: "b", To: "a", Amount: dec("30.00")},
		{From: "c", To: "a", Amount: dec("12.50"), Settled: true},
	}}
	assert.Equal(t, "42.50", s.Total().StringFixed(2))
	assert.Equal(t, "12.50", s.SettledTotal().StringFixed(2))
	assert.Equal(t, "30.00", s.PendingTotal().StringFixed(2))
}

func TestSettlementToggle(t *testing.T) {
	s := Settlement{Transfers: []Transfer{{From: "b", To: "a", Amount: dec("5")}}}

	settled, err := s.Toggle(0)
	require.NoError(t, err)
	assert.True(t, settled)
	assert.True(t, s.Transfers[0].Settled)

	settled, err = s.Toggle(0)
	require.NoError(t, err)
	assert.False(t, settled)

	_, err = s.Toggle(1)
	assert.ErrorIs(t, err, ErrTransferIndex)
	_, err = s.Toggle(-1)
	assert.ErrorIs(t, err, ErrTransferIndex)
}
