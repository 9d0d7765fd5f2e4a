// Package ledger computes who owes whom inside a group.
//
// The package is a pure function of its inputs: a list of members, the
// shared expenses they recorded and the repayments (settlements) made
// between them. Nothing is cached, persisted or mutated; every call builds
// fresh output structures, so independent groups can be computed in
// parallel without coordination.
//
// The pipeline has three stages:
//
//	BuildDebtMatrix -> Aggregate -> Suggest
//
// Compute runs all three. Validation of records (split totals, positive
// amounts) is the caller's job; see ValidateExpense and ValidateSettlement.
package ledger

import "github.com/mmynk/splitledger/internal/money"

// Member is a participant of a group. Identity is by ID only.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Split is one member's share of an expense.
type Split struct {
	MemberID string      `json:"member_id"`
	Amount   money.Cents `json:"amount"`
}

// Expense is a shared cost paid by one member and split across members.
// The payer may (and usually does) appear in Splits with their own share.
type Expense struct {
	ID     string      `json:"id"`
	Amount money.Cents `json:"amount"`
	PaidBy string      `json:"paid_by"`
	Splits []Split     `json:"splits"`
}

// Settlement is a repayment already made from one member to another.
type Settlement struct {
	ID     string      `json:"id"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Cents `json:"amount"`
}

// Debt is an amount owed to or by a counterparty.
type Debt struct {
	MemberID string      `json:"member_id"`
	Amount   money.Cents `json:"amount"`
}
