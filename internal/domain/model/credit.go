package model

import "time"

// CreditAccount is a per-user integer balance. The repository guarantees the
// amount never goes negative via a conditional decrement.
type CreditAccount struct {
	UserID    string
	Amount    int64
	UpdatedAt time.Time
}

// CreditEntry is one row of the deduction log. The unique job id makes a
// per-job deduction exactly-once even when several pollers race.
type CreditEntry struct {
	ID        string
	UserID    string
	JobID     string
	Amount    int64
	CreatedAt time.Time
}

// Deduction reports a successful deduction to the caller.
type Deduction struct {
	Previous int64
	New      int64
	Amount   int64
}
