package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billsplit-dev/billsplit/internal/ledger"
	"github.com/billsplit-dev/billsplit/internal/model"
	"github.com/billsplit-dev/billsplit/internal/money"
)

// resolveParticipant finds a participant by exact ID or, failing that, by
// case-insensitive name. A name shared by several participants is refused.
func resolveParticipant(participants []model.Participant, ref string) (model.Participant, error) {
	ref = strings.TrimSpace(ref)
	for _, p := range participants {
		if p.ID == ref {
			return p, nil
		}
	}

	var found []model.Participant
	for _, p := range participants {
		if strings.EqualFold(p.Name, ref) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return model.Participant{}, fmt.Errorf("%w: %q", ledger.ErrUnknownParticipant, ref)
	case 1:
		return found[0], nil
	default:
		return model.Participant{}, fmt.Errorf("%q matches %d participants; use an ID", ref, len(found))
	}
}

// resolveParticipants resolves a comma separated list. "all" selects every
// participant.
func resolveParticipants(participants []model.Participant, refs []string) ([]string, error) {
	if len(refs) == 1 && strings.EqualFold(strings.TrimSpace(refs[0]), "all") {
		ids := make([]string, len(participants))
		for i, p := range participants {
			ids[i] = p.ID
		}
		return ids, nil
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		p, err := resolveParticipant(participants, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// resolveItem finds an item by exact ID or case-insensitive name.
func resolveItem(items []model.Item, ref string) (model.Item, error) {
	ref = strings.TrimSpace(ref)
	for _, it := range items {
		if it.ID == ref {
			return it, nil
		}
	}
	var found []model.Item
	for _, it := range items {
		if strings.EqualFold(it.Name, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return model.Item{}, fmt.Errorf("%w: %q", ledger.ErrItemNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return model.Item{}, fmt.Errorf("%q matches %d items; use an ID", ref, len(found))
	}
}

// parseAmountPair splits "NAME=AMOUNT". The last '=' separates the two so
// names may contain '='.
func parseAmountPair(s string) (string, decimal.Decimal, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return "", decimal.Zero, fmt.Errorf("expected NAME=AMOUNT, got %q", s)
	}
	amount, err := money.Parse(s[i+1:])
	if err != nil {
		return "", decimal.Zero, err
	}
	if amount.IsNegative() {
		return "", decimal.Zero, fmt.Errorf("%w: %q is negative", money.ErrInvalidAmount, s)
	}
	return strings.TrimSpace(s[:i]), amount, nil
}
