package models

import "github.com/mmynk/splitledger/internal/money"

// Expense is a shared cost recorded in a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// Amount is the total paid.
	Amount money.Cents `json:"amount"`

	Description string `json:"description"`
	Category    string `json:"category,omitempty"`

	// PaidBy is the member who paid the full amount.
	PaidBy string `json:"paid_by"`

	// Splits assigns a share of Amount to each member, in entry order.
	// The shares are expected to add up to Amount (validated on write).
	Splits []Split `json:"splits"`

	// Date is the day the expense happened, YYYY-MM-DD.
	Date string `json:"date"`

	// CreatedAt is the Unix timestamp when the expense was first recorded.
	CreatedAt int64 `json:"created_at"`
}

// Split is one member's share of an expense.
type Split struct {
	MemberID string      `json:"member_id"`
	Amount   money.Cents `json:"amount"`
	Settled  bool        `json:"settled"`
}
