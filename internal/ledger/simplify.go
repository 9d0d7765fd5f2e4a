package ledger

import (
	"cmp"
	"slices"

	"github.com/mmynk/splitledger/internal/money"
)

type position struct {
	id     string
	name   string
	amount money.Cents
}

// Simplify turns net balances into a short list of transfers that zeroes
// every balance.
//
// Algorithm:
//   - split members into debtors (Net < 0) and creditors (Net > 0)
//   - order both by amount, largest first (ties keep input order)
//   - repeatedly match the current debtor with the current creditor for the
//     smaller of the two amounts, advancing whichever side reaches zero
//
// This is opt-in; Suggest reports debts as they were recorded.
func Simplify(balances []DetailedBalance) []Suggestion {
	var debtors, creditors []position
	for _, b := range balances {
		switch {
		case b.Net < 0:
			debtors = append(debtors, position{id: b.MemberID, name: b.Name, amount: -b.Net})
		case b.Net > 0:
			creditors = append(creditors, position{id: b.MemberID, name: b.Name, amount: b.Net})
		}
	}

	largestFirst := func(a, b position) int { return cmp.Compare(b.amount, a.amount) }
	slices.SortStableFunc(debtors, largestFirst)
	slices.SortStableFunc(creditors, largestFirst)

	transfers := make([]Suggestion, 0)
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := min(d.amount, c.amount)
		if amount > 0 {
			transfers = append(transfers, Suggestion{
				From:     d.id,
				FromName: d.name,
				To:       c.id,
				ToName:   c.name,
				Amount:   amount,
			})
		}

		d.amount -= amount
		c.amount -= amount
		if d.amount == 0 {
			i++
		}
		if c.amount == 0 {
			j++
		}
	}

	return transfers
}
