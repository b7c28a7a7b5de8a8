// Package ledger maintains the participants and items of one bill and
// derives how much each participant owes.
package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/id"
	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/settle"
)

// Ledger owns a bill for the duration of an editing session. Every mutation
// is applied immediately and either succeeds or leaves the bill untouched.
// A Ledger is not safe for concurrent use.
type Ledger struct {
	bill model.Bill
	ids  id.Generator
}

// ItemParams holds the user-entered fields of a new item.
type ItemParams struct {
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   decimal.Decimal // zero means 1; floored, minimum 1
	AssignedTo []string
}

// New starts a session over a copy of bill. Assignments that reference
// unknown participants are dropped and duplicate assignees are collapsed, so
// the ledger never holds a dangling reference. A bill without an ID gets one
// from ids.
func New(bill model.Bill, ids id.Generator) *Ledger {
	l := &Ledger{bill: bill.Clone(), ids: ids}

	if o, ok := ids.(id.Observer); ok {
		o.Observe(l.bill.ID)
		for _, p := range l.bill.Participants {
			o.Observe(p.ID)
		}
		for _, it := range l.bill.Items {
			o.Observe(it.ID)
		}
	}

	if l.bill.ID == "" {
		l.bill.ID = ids.Next(id.KindBill)
	}
	if strings.TrimSpace(l.bill.Name) == "" {
		l.bill.Name = model.DefaultBillName
	}
	for i := range l.bill.Items {
		l.bill.Items[i].AssignedTo = l.knownAssignees(l.bill.Items[i].AssignedTo)
	}
	return l
}

// Bill returns a copy of the current session.
func (l *Ledger) Bill() model.Bill {
	return l.bill.Clone()
}

// Participants returns the participants in the order they were added.
func (l *Ledger) Participants() []model.Participant {
	return slices.Clone(l.bill.Participants)
}

// Participant looks up a participant by ID.
func (l *Ledger) Participant(participantID string) (model.Participant, bool) {
	i := l.participantIndex(participantID)
	if i < 0 {
		return model.Participant{}, false
	}
	return l.bill.Participants[i], true
}

// Items returns copies of the items in the order they were added.
func (l *Ledger) Items() []model.Item {
	return l.Bill().Items
}

// Item looks up an item by ID.
func (l *Ledger) Item(itemID string) (model.Item, bool) {
	i := l.itemIndex(itemID)
	if i < 0 {
		return model.Item{}, false
	}
	return l.bill.Items[i].Clone(), true
}

// Total returns the sum of all item prices.
func (l *Ledger) Total() decimal.Decimal {
	return l.bill.Total()
}

// Rename changes the bill's display name.
func (l *Ledger) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("bill name", "", ErrEmptyName)
	}
	l.bill.Name = name
	return nil
}

// AddParticipant adds a participant with a fresh ID. The name is trimmed;
// an empty name is refused.
func (l *Ledger) AddParticipant(name string) (model.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Participant{}, invalid("participant name", "", ErrEmptyName)
	}
	p := model.Participant{ID: l.freshID(id.KindParticipant), Name: name}
	l.bill.Participants = append(l.bill.Participants, p)
	return p, nil
}

// RemoveParticipant removes a participant and strips it from every item's
// assignment set. It reports whether anything was removed; an unknown ID is
// a no-op.
func (l *Ledger) RemoveParticipant(participantID string) bool {
	i := l.participantIndex(participantID)
	if i < 0 {
		return false
	}
	l.bill.Participants = slices.Delete(l.bill.Participants, i, i+1)
	for j := range l.bill.Items {
		l.bill.Items[j].AssignedTo = slices.DeleteFunc(l.bill.Items[j].AssignedTo, func(a string) bool {
			return a == participantID
		})
	}
	return true
}

// AddItem validates params and appends a new item.
func (l *Ledger) AddItem(params ItemParams) (model.Item, error) {
	item := model.Item{
		Name:       params.Name,
		UnitPrice:  params.UnitPrice,
		Quantity:   NormalizeQuantity(params.Quantity),
		AssignedTo: params.AssignedTo,
	}
	item, err := l.validItem(item)
	if err != nil {
		return model.Item{}, err
	}
	item.ID = l.freshID(id.KindItem)
	l.bill.Items = append(l.bill.Items, item)
	return item.Clone(), nil
}

// RemoveItem removes an item and reports whether it existed.
func (l *Ledger) RemoveItem(itemID string) bool {
	i := l.itemIndex(itemID)
	if i < 0 {
		return false
	}
	l.bill.Items = slices.Delete(l.bill.Items, i, i+1)
	return true
}

// UpdateItem replaces the item with the same ID. The replacement is validated
// like a new item and its Price is recomputed from UnitPrice and Quantity.
func (l *Ledger) UpdateItem(item model.Item) error {
	i := l.itemIndex(item.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item, err := l.validItem(item)
	if err != nil {
		return err
	}
	l.bill.Items[i] = item
	return nil
}

// Assign replaces an item's assignment set.
func (l *Ledger) Assign(itemID string, participantIDs []string) error {
	item, ok := l.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	item.AssignedTo = participantIDs
	return l.UpdateItem(item)
}

// UndoLastItem removes the most recently added item and returns it.
func (l *Ledger) UndoLastItem() (model.Item, bool) {
	n := len(l.bill.Items)
	if n == 0 {
		return model.Item{}, false
	}
	last := l.bill.Items[n-1]
	l.bill.Items = l.bill.Items[:n-1]
	return last, true
}

// ClearItems removes every item, keeping the participants, and returns how
// many were removed.
func (l *Ledger) ClearItems() int {
	n := len(l.bill.Items)
	l.bill.Items = nil
	return n
}

// ReadyToSettle reports whether the bill can be settled: at least two
// participants and at least one item.
func (l *Ledger) ReadyToSettle() error {
	if len(l.bill.Participants) < 2 {
		return fmt.Errorf("%w: have %d", settle.ErrTooFewParticipants, len(l.bill.Participants))
	}
	if len(l.bill.Items) == 0 {
		return ErrNoItems
	}
	return nil
}

// NormalizeQuantity floors q to an integer and clamps it to at least 1.
// Zero (unset) yields 1.
func NormalizeQuantity(q decimal.Decimal) int {
	n := q.Floor().IntPart()
	if n < 1 {
		return 1
	}
	return int(n)
}

func (l *Ledger) validItem(item model.Item) (model.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return model.Item{}, invalid("item name", "", ErrEmptyName)
	}
	if !item.UnitPrice.IsPositive() {
		return model.Item{}, invalid("unit price", item.UnitPrice.String(), ErrNonPositivePrice)
	}
	assigned := make([]string, 0, len(item.AssignedTo))
	for _, a := range item.AssignedTo {
		if l.participantIndex(a) < 0 {
			return model.Item{}, invalid("assigned participant", a, ErrUnknownParticipant)
		}
		if !slices.Contains(assigned, a) {
			assigned = append(assigned, a)
		}
	}
	item.AssignedTo = assigned
	item.Price = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return item, nil
}

func (l *Ledger) knownAssignees(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, a := range ids {
		if l.participantIndex(a) >= 0 && !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

// freshID draws from the generator until it returns an ID not on the bill.
func (l *Ledger) freshID(kind id.Kind) string {
	for {
		next := l.ids.Next(kind)
		if l.participantIndex(next) < 0 && l.itemIndex(next) < 0 && next != l.bill.ID {
			return next
		}
	}
}

func (l *Ledger) participantIndex(participantID string) int {
	return slices.IndexFunc(l.bill.Participants, func(p model.Participant) bool {
		return p.ID == participantID
	})
}

func (l *Ledger) itemIndex(itemID string) int {
	return slices.IndexFunc(l.bill.Items, func(it model.Item) bool {
		return it.ID == itemID
	})
}
