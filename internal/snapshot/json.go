// Package snapshot reads and writes the JSON and CSV shapes a bill, a balance
// sheet and a settlement take when they leave the process. The core packages
// never see these formats.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
)

// SettlementType is the value of the "type" field of a settlement document.
const SettlementType = "settlement"

var (
	ErrNotABill       = errors.New("not a bill: participants and items arrays are required")
	ErrNotASettlement = errors.New("not a settlement document")
	ErrNotABalances   = errors.New("not a balance sheet: participants and balances are required")
)

type participantJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type itemJSON struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Price        json.Number `json:"price"`
	Quantity     int         `json:"quantity,omitempty"`
	PricePerUnit json.Number `json:"pricePerUnit,omitempty"`
	AssignedTo   []string    `json:"assignedTo"`
}

type billJSON struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Date         time.Time         `json:"date,omitzero"`
	Participants []participantJSON `json:"participants"`
	People       []participantJSON `json:"people,omitempty"`
	Items        []itemJSON        `json:"items"`
	TotalAmount  json.Number       `json:"totalAmount"`
}

type transferJSON struct {
	From    string      `json:"from"`
	To      string      `json:"to"`
	Amount  json.Number `json:"amount"`
	Settled bool        `json:"settled"`
}

type personJSON struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	AmountPaid json.Number `json:"amountPaid"`
	AmountOwed json.Number `json:"amountOwed"`
	Balance    json.Number `json:"balance"`
}

type settlementJSON struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Date        time.Time      `json:"date,omitzero"`
	People      []personJSON   `json:"people"`
	Debts       []transferJSON `json:"debts"`
	Transfers   []transferJSON `json:"transfers,omitempty"`
	TotalAmount json.Number    `json:"totalAmount"`
}

type balancesJSON struct {
	Participants []participantJSON      `json:"participants"`
	Balances     map[string]json.Number `json:"balances"`
}

// BalanceSheet is a set of participants with externally computed balances.
type BalanceSheet struct {
	Participants []model.Participant
	Balances     []model.Balance
}

// DecodeBill reads a bill document. "people" is accepted in place of
// "participants". Items that carry only a price get that price as their unit
// price with quantity 1; items that carry only a unit price get
// price = unit price x quantity.
func DecodeBill(r io.Reader) (model.Bill, error) {
	var doc billJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Bill{}, fmt.Errorf("decoding bill: %w", err)
	}
	if doc.Participants == nil {
		doc.Participants = doc.People
	}
	if doc.Participants == nil || doc.Items == nil {
		return model.Bill{}, ErrNotABill
	}

	bill := model.Bill{
		ID:           doc.ID,
		Name:         doc.Name,
		CreatedAt:    doc.Date,
		Participants: participantsFromJSON(doc.Participants),
		Items:        make([]model.Item, 0, len(doc.Items)),
	}
	for i, it := range doc.Items {
		item, err := itemFromJSON(it)
		if err != nil {
			return model.Bill{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		bill.Items = append(bill.Items, item)
	}
	return bill, nil
}

// EncodeBill writes bill as an indented JSON document.
func EncodeBill(w io.Writer, bill model.Bill) error {
	doc := billJSON{
		ID:           bill.ID,
		Name:         bill.Name,
		Date:         bill.CreatedAt,
		Participants: participantsToJSON(bill.Participants),
		Items:        make([]itemJSON, len(bill.Items)),
		TotalAmount:  number(bill.Total()),
	}
	for i, it := range bill.Items {
		assigned := it.AssignedTo
		if assigned == nil {
			assigned = []string{}
		}
		doc.Items[i] = itemJSON{
			ID:           it.ID,
			Name:         it.Name,
			Price:        exact(it.Price),
			Quantity:     it.Quantity,
			PricePerUnit: exact(it.UnitPrice),
			AssignedTo:   assigned,
		}
	}
	return encode(w, doc)
}

// DecodeBalances reads {participants, balances}. Balances follow participant
// order; IDs present only in balances are appended sorted.
func DecodeBalances(r io.Reader) (BalanceSheet, error) {
	var doc balancesJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return BalanceSheet{}, fmt.Errorf("decoding balances: %w", err)
	}
	if doc.Participants == nil || doc.Balances == nil {
		return BalanceSheet{}, ErrNotABalances
	}

	sheet := BalanceSheet{Participants: participantsFromJSON(doc.Participants)}
	seen := make(map[string]bool, len(doc.Participants))
	for _, p := range sheet.Participants {
		seen[p.ID] = true
		amount := decimal.Zero
		if n, ok := doc.Balances[p.ID]; ok {
			var err error
			if amount, err = parseNumber(n); err != nil {
				return BalanceSheet{}, fmt.Errorf("balance of %s: %w", p.ID, err)
			}
		}
		sheet.Balances = append(sheet.Balances, model.Balance{ParticipantID: p.ID, Amount: amount})
	}

	var extra []string
	for pid := range doc.Balances {
		if !seen[pid] {
			extra = append(extra, pid)
		}
	}
	sort.Strings(extra)
	for _, pid := range extra {
		amount, err := parseNumber(doc.Balances[pid])
		if err != nil {
			return BalanceSheet{}, fmt.Errorf("balance of %s: %w", pid, err)
		}
		sheet.Balances = append(sheet.Balances, model.Balance{ParticipantID: pid, Amount: amount})
	}
	return sheet, nil
}

// EncodeSettlement writes s with its transfers under "debts".
func EncodeSettlement(w io.Writer, s model.Settlement) error {
	doc := settlementJSON{
		ID:          s.ID,
		Name:        s.Name,
		Type:        SettlementType,
		Date:        s.CreatedAt,
		People:      make([]personJSON, len(s.People)),
		Debts:       transfersToJSON(s.Transfers),
		TotalAmount: number(s.Total()),
	}
	for i, p := range s.People {
		doc.People[i] = personJSON{
			ID:         p.ID,
			Name:       p.Name,
			AmountPaid: number(p.Paid),
			AmountOwed: number(p.Owed),
			Balance:    number(p.Balance),
		}
	}
	return encode(w, doc)
}

// DecodeSettlement reads a document written by EncodeSettlement. A
// "transfers" array is accepted when "debts" is absent.
func DecodeSettlement(r io.Reader) (model.Settlement, error) {
	var doc settlementJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Settlement{}, fmt.Errorf("decoding settlement: %w", err)
	}
	if doc.Type != SettlementType {
		return model.Settlement{}, fmt.Errorf("%w: type %q", ErrNotASettlement, doc.Type)
	}
	if doc.Debts == nil {
		doc.Debts = doc.Transfers
	}

	s := model.Settlement{
		ID:        doc.ID,
		Name:      doc.Name,
		CreatedAt: doc.Date,
		People:    make([]model.PersonPayment, len(doc.People)),
		Transfers: make([]model.Transfer, len(doc.Debts)),
	}
	for i, p := range doc.People {
		var row model.PersonPayment
		row.Participant = model.Participant{ID: p.ID, Name: p.Name}
		var err error
		if row.Paid, err = parseOptional(p.AmountPaid); err != nil {
			return model.Settlement{}, fmt.Errorf("person %s amountPaid: %w", p.ID, err)
		}
		if row.Owed, err = parseOptional(p.AmountOwed); err != nil {
			return model.Settlement{}, fmt.Errorf("person %s amountOwed: %w", p.ID, err)
		}
		if row.Balance, err = parseOptional(p.Balance); err != nil {
			return model.Settlement{}, fmt.Errorf("person %s balance: %w", p.ID, err)
		}
		s.People[i] = row
	}
	for i, d := range doc.Debts {
		amount, err := parseNumber(d.Amount)
		if err != nil {
			return model.Settlement{}, fmt.Errorf("debt %d: %w", i+1, err)
		}
		s.Transfers[i] = model.Transfer{From: d.From, To: d.To, Amount: amount, Settled: d.Settled}
	}
	return s, nil
}

func itemFromJSON(it itemJSON) (model.Item, error) {
	qty := it.Quantity
	if qty < 1 {
		qty = 1
	}
	price, err := parseOptional(it.Price)
	if err != nil {
		return model.Item{}, fmt.Errorf("price: %w", err)
	}
	unit, err := parseOptional(it.PricePerUnit)
	if err != nil {
		return model.Item{}, fmt.Errorf("pricePerUnit: %w", err)
	}

	switch {
	case it.Price == "" && it.PricePerUnit != "":
		price = unit.Mul(decimal.NewFromInt(int64(qty)))
	case it.PricePerUnit == "":
		unit = price.Div(decimal.NewFromInt(int64(qty)))
	}
	if price.IsNegative() || unit.IsNegative() {
		return model.Item{}, fmt.Errorf("%w: negative price", money.ErrInvalidAmount)
	}

	return model.Item{
		ID:         it.ID,
		Name:       it.Name,
		UnitPrice:  unit,
		Quantity:   qty,
		Price:      price,
		AssignedTo: append([]string(nil), it.AssignedTo...),
	}, nil
}

func participantsFromJSON(in []participantJSON) []model.Participant {
	out := make([]model.Participant, len(in))
	for i, p := range in {
		out[i] = model.Participant{ID: p.ID, Name: p.Name}
	}
	return out
}

func participantsToJSON(in []model.Participant) []participantJSON {
	out := make([]participantJSON, len(in))
	for i, p := range in {
		out[i] = participantJSON{ID: p.ID, Name: p.Name}
	}
	return out
}

func transfersToJSON(in []model.Transfer) []transferJSON {
	out := make([]transferJSON, len(in))
	for i, t := range in {
		out[i] = transferJSON{From: t.From, To: t.To, Amount: number(t.Amount), Settled: t.Settled}
	}
	return out
}

// number renders d as a JSON number with two places.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(money.Places))
}

// exact is number for whole cents and the full decimal otherwise, so item
// prices survive a save and load unchanged.
func exact(d decimal.Decimal) json.Number {
	if money.HasSubCents(d) {
		return json.Number(d.String())
	}
	return number(d)
}

func parseNumber(n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q", money.ErrInvalidAmount, n.String())
	}
	return d, nil
}

func parseOptional(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return parseNumber(n)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
