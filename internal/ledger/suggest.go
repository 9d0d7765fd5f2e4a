package ledger

import (
	"cmp"
	"slices"

	"github.com/mmynk/splitledger/internal/money"
)

// UnknownName is shown for a counterparty that is not a group member.
const UnknownName = "Unknown"

// Suggestion is a transfer that would clear one outstanding debt.
type Suggestion struct {
	From     string      `json:"from"`
	FromName string      `json:"from_name"`
	To       string      `json:"to"`
	ToName   string      `json:"to_name"`
	Amount   money.Cents `json:"amount"`
}

// Suggest lists every outstanding debt as a transfer, largest first. Ties
// keep the input order (balances order, then creditor order).
//
// This is a direct dump of residual pairwise debts, not a netting plan:
// A owes B and B owes C stays two transfers. Use Simplify for a plan with
// fewer transfers.
func Suggest(balances []DetailedBalance) []Suggestion {
	names := make(map[string]string, len(balances))
	for _, b := range balances {
		names[b.MemberID] = b.Name
	}

	suggestions := make([]Suggestion, 0)
	for _, b := range balances {
		for _, debt := range b.Owes {
			if debt.Amount <= 0 {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				From:     b.MemberID,
				FromName: b.Name,
				To:       debt.MemberID,
				ToName:   displayName(names, debt.MemberID),
				Amount:   debt.Amount,
			})
		}
	}

	slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
		return cmp.Compare(b.Amount, a.Amount)
	})
	return suggestions
}

// TotalSuggested sums the amounts of a suggestion list.
func TotalSuggested(suggestions []Suggestion) money.Cents {
	var sum money.Cents
	for _, s := range suggestions {
		sum += s.Amount
	}
	return sum
}

func displayName(names map[string]string, id string) string {
	if name := names[id]; name != "" {
		return name
	}
	return UnknownName
}
