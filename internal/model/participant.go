package model

// Participant is one person splitting a bill.
type Participant struct {
	ID   string
	Name string
}
