package models

import "github.com/mmynk/splitledger/internal/money"

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"group_id"`

	// FromUserID is the member who paid (debtor settling up).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the member who received payment (creditor being paid).
	ToUserID string `json:"to_user_id"`

	// Amount is the payment amount.
	Amount money.Cents `json:"amount"`

	// Description is an optional note, e.g. "Settlement: Bob → Alice".
	Description string `json:"description,omitempty"`

	// Date is the day the payment happened, YYYY-MM-DD.
	Date string `json:"date"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`
}
