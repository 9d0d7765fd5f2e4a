package ledger

import "github.com/mmynk/splitledger/internal/money"

// GroupBalance is a member's paid-minus-share position, without the pairwise
// breakdown of DetailedBalance.
type GroupBalance struct {
	MemberID string      `json:"member_id"`
	Name     string      `json:"name"`
	Balance  money.Cents `json:"balance"` // Positive = owed money, negative = owes money

	// Settlements pairs a debtor with each creditor it could pay, capped by
	// both balances. Empty for members who are not in debt.
	Settlements []Debt `json:"settlements"`
}

// NetBalances computes each member's balance from totals instead of pairs:
// the payer is credited the full expense amount, each split member is
// debited their share, and a settlement credits the sender and debits the
// receiver. Ids outside members are ignored.
//
// Unlike Aggregate, settlements are not clamped here, so overpaying flips the
// sign of both balances.
func NetBalances(members []Member, expenses []Expense, settlements []Settlement) []GroupBalance {
	balances := make(map[string]money.Cents, len(members))
	for _, m := range members {
		balances[m.ID] = 0
	}
	credit := func(id string, amount money.Cents) {
		if _, ok := balances[id]; ok {
			balances[id] += amount
		}
	}

	for _, e := range expenses {
		credit(e.PaidBy, e.Amount)
		for _, split := range e.Splits {
			credit(split.MemberID, -split.Amount)
		}
	}
	for _, s := range settlements {
		credit(s.From, s.Amount)
		credit(s.To, -s.Amount)
	}

	result := make([]GroupBalance, 0, len(members))
	for _, m := range members {
		own := balances[m.ID]
		gb := GroupBalance{
			MemberID:    m.ID,
			Name:        m.Name,
			Balance:     own,
			Settlements: []Debt{},
		}
		if own < 0 {
			for _, other := range members {
				if other.ID == m.ID {
					continue
				}
				if theirs := balances[other.ID]; theirs > 0 {
					gb.Settlements = append(gb.Settlements, Debt{
						MemberID: other.ID,
						Amount:   min(own.Abs(), theirs),
					})
				}
			}
		}
		result = append(result, gb)
	}
	return result
}
