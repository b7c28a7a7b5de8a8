// Package id issues identifiers for participants, items, bills and
// settlements. Identifiers are opaque to the core; the only requirement is
// uniqueness within a bill.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind is the prefix of a sequential identifier.
type Kind string

const (
	KindParticipant Kind = "p"
	KindItem        Kind = "i"
	KindBill        Kind = "b"
	KindSettlement  Kind = "s"
)

// Generator hands out new identifiers.
type Generator interface {
	Next(kind Kind) string
}

// Observer is implemented by generators that must skip identifiers already
// in use, e.g. after a bill is loaded from a snapshot.
type Observer interface {
	Observe(id string)
}

// UUID issues random v4 UUIDs. The kind is ignored.
type UUID struct{}

// Next returns a new random UUID string.
func (UUID) Next(Kind) string {
	return uuid.NewString()
}

// Sequence issues short readable identifiers like "p-001", "i-002".
// It is safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	last map[Kind]int
}

// NewSequence returns a Sequence starting at 1 for every kind.
func NewSequence() *Sequence {
	return &Sequence{last: make(map[Kind]int)}
}

// Next returns the next identifier of the given kind.
func (s *Sequence) Next(kind Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[kind]++
	return Format(kind, s.last[kind])
}

// Observe advances the sequence past id if id is a sequential identifier.
// Anything else is ignored.
func (s *Sequence) Observe(id string) {
	kind, seq, err := Parse(id)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.last[kind] {
		s.last[kind] = seq
	}
}

// Format returns an identifier like "p-001".
func Format(kind Kind, seq int) string {
	return fmt.Sprintf("%s-%03d", kind, seq)
}

// Parse splits "p-001" into its kind and sequence number.
func Parse(id string) (Kind, int, error) {
	prefix, num, ok := strings.Cut(id, "-")
	if !ok || prefix == "" {
		return "", 0, fmt.Errorf("invalid sequential ID format: %q", id)
	}
	seq, err := strconv.Atoi(num)
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in ID %q: %w", id, err)
	}
	if seq < 1 {
		return "", 0, fmt.Errorf("invalid sequence in ID %q: must be positive", id)
	}
	return Kind(prefix), seq, nil
}

// FromName returns the generator for a configured ID style:
// "sequential" (the default) or "uuid".
func FromName(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sequential":
		return NewSequence(), nil
	case "uuid":
		return UUID{}, nil
	default:
		return nil, fmt.Errorf("unknown ID style %q (want sequential or uuid)", name)
	}
}
