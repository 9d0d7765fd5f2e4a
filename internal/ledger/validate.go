package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/money"
)

// SplitTolerance is how far the sum of an expense's splits may drift from
// its amount.
const SplitTolerance money.Cents = 1

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNegativeShare = errors.New("split amounts cannot be negative")
	ErrNoSplits      = errors.New("at least one split is required")
	ErrMissingPayer  = errors.New("payer is required")
	ErrMissingMember = errors.New("split member is required")
	ErrSplitMismatch = errors.New("split amounts don't match the total expense")
	ErrMissingParty  = errors.New("sender and receiver are required")
	ErrSelfSettle    = errors.New("payer and receiver cannot be the same person")
)

// ValidateExpense checks an expense before it is recorded. The engine itself
// never calls this: it computes whatever the stored records say.
func ValidateExpense(e Expense) error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if e.PaidBy == "" {
		return ErrMissingPayer
	}
	if len(e.Splits) == 0 {
		return ErrNoSplits
	}

	var sum money.Cents
	for _, s := range e.Splits {
		if s.MemberID == "" {
			return ErrMissingMember
		}
		if s.Amount < 0 {
			return ErrNegativeShare
		}
		sum += s.Amount
	}

	if diff := (e.Amount - sum).Abs(); diff > SplitTolerance {
		return fmt.Errorf("%w: difference %s", ErrSplitMismatch, diff)
	}
	return nil
}

// ValidateSettlement checks a settlement before it is recorded.
func ValidateSettlement(s Settlement) error {
	if s.From == "" || s.To == "" {
		return ErrMissingParty
	}
	if s.From == s.To {
		return ErrSelfSettle
	}
	if s.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// EqualSplit divides amount evenly across memberIDs. Every member gets the
// floored share and the leftover cents go one each to the last members, so
// no share is negative and the shares add up to amount.
func EqualSplit(amount money.Cents, memberIDs []string) []Split {
	n := money.Cents(len(memberIDs))
	if n == 0 || amount <= 0 {
		return nil
	}

	share, leftover := amount/n, amount%n
	splits := make([]Split, len(memberIDs))
	for i, id := range memberIDs {
		splits[i] = Split{MemberID: id, Amount: share}
		if money.Cents(i) >= n-leftover {
			splits[i].Amount++
		}
	}
	return splits
}
