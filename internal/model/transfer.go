package model

import "github.com/shopspring/decimal"

// Transfer is one payment instruction from a debtor to a creditor.
type Transfer struct {
	From    string
	To      string
	Amount  decimal.Decimal
	Settled bool // bookkeeping only; never set by the settlement engine
}
