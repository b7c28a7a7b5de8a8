// Package money holds the fixed-point helpers shared by the ledger and the
// settlement engine. Amounts are decimal.Decimal throughout; rounding to cents
// happens only where a value leaves the core.
package money

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits in a displayed amount.
const Places = 2

// Cent is the smallest displayed unit.
var Cent = decimal.New(1, -Places)

// Epsilon is the currency-rounding tolerance. Balances and transfers at or
// below it are treated as settled.
var Epsilon = Cent

// ErrInvalidAmount is returned when an amount cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// Parse reads a decimal amount such as "12.50". An optional leading currency
// symbol and thousands separators are tolerated.
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimLeft(clean, "$€£¥₹")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}
	return d, nil
}

// Round rounds d to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// NearZero reports whether |d| < Epsilon.
func NearZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}

// Format renders d with two places and the given symbol: "$12.50", "-$3.00".
func Format(d decimal.Decimal, symbol string) string {
	if d.IsNegative() {
		return "-" + symbol + d.Neg().StringFixed(Places)
	}
	return symbol + d.StringFixed(Places)
}

// FormatSigned is Format with an explicit "+" on non-negative values.
func FormatSigned(d decimal.Decimal, symbol string) string {
	if d.IsNegative() {
		return Format(d, symbol)
	}
	return "+" + Format(d, symbol)
}

// Split divides total into n shares that sum to total exactly. Every share is
// total/n truncated to cents; the leftover cents go one each to the first
// shares, and any sub-cent remainder lands on the first share.
// Split returns nil when n <= 0.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	base := total.Div(count).Truncate(Places)

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}

	rest := total.Sub(base.Mul(count))
	for i := 0; rest.GreaterThanOrEqual(Cent); i++ {
		shares[i%n] = shares[i%n].Add(Cent)
		rest = rest.Sub(Cent)
	}
	if !rest.IsZero() {
		shares[0] = shares[0].Add(rest)
	}
	return shares
}

// RoundAll rounds every amount to cents while keeping the rounded total equal
// to Round(sum). Each amount is floored to cents, then the missing cents go
// to the amounts with the largest remainders; equal remainders keep input
// order. No result differs from its input by a cent or more.
func RoundAll(amounts []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(amounts))
	rem := make([]decimal.Decimal, len(amounts))
	sum, floors := decimal.Zero, decimal.Zero
	for i, a := range amounts {
		out[i] = a.RoundFloor(Places)
		rem[i] = a.Sub(out[i])
		sum = sum.Add(a)
		floors = floors.Add(out[i])
	}

	missing := Round(sum).Sub(floors).Div(Cent).IntPart()
	order := make([]int, len(amounts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rem[order[a]].GreaterThan(rem[order[b]])
	})
	for k := 0; k < int(missing) && k < len(order); k++ {
		out[order[k]] = out[order[k]].Add(Cent)
	}
	return out
}

// HasSubCents reports whether d carries more precision than a cent.
func HasSubCents(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(Places))
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}
