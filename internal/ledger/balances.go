package ledger

import "github.com/mmynk/splitledger/internal/money"

// DetailedBalance is one member's position in the group.
type DetailedBalance struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`

	// Owes lists creditors this member still owes, positive amounts only.
	Owes []Debt `json:"owes"`

	// OwedBy lists group members that still owe this member, positive amounts only.
	OwedBy []Debt `json:"owed_by"`

	// Net is sum(OwedBy) - sum(Owes). Positive = owed money, negative = owes money.
	Net money.Cents `json:"net_balance"`
}

// OwesTo returns what this member owes creditor, or zero.
func (b DetailedBalance) OwesTo(creditor string) money.Cents {
	return lookup(b.Owes, creditor)
}

// OwedFrom returns what debtor owes this member, or zero.
func (b DetailedBalance) OwedFrom(debtor string) money.Cents {
	return lookup(b.OwedBy, debtor)
}

// TotalOwes is the sum of Owes.
func (b DetailedBalance) TotalOwes() money.Cents {
	return total(b.Owes)
}

// TotalOwed is the sum of OwedBy.
func (b DetailedBalance) TotalOwed() money.Cents {
	return total(b.OwedBy)
}

// Settled reports whether the member neither owes nor is owed anything.
func (b DetailedBalance) Settled() bool {
	return len(b.Owes) == 0 && len(b.OwedBy) == 0
}

// Aggregate reduces a debt matrix into one DetailedBalance per member, in
// members order.
//
// Owes includes every positive entry of the member's row, even for creditors
// outside members. OwedBy only looks at the other members' rows.
func Aggregate(members []Member, matrix *DebtMatrix) []DetailedBalance {
	balances := make([]DetailedBalance, 0, len(members))

	for _, member := range members {
		bal := DetailedBalance{
			MemberID: member.ID,
			Name:     member.Name,
			Owes:     []Debt{},
			OwedBy:   []Debt{},
		}

		for _, creditor := range matrix.Creditors(member.ID) {
			if amount := matrix.Owed(member.ID, creditor); amount > 0 {
				bal.Owes = append(bal.Owes, Debt{MemberID: creditor, Amount: amount})
			}
		}

		for _, other := range members {
			if other.ID == member.ID {
				continue
			}
			if amount := matrix.Owed(other.ID, member.ID); amount > 0 {
				bal.OwedBy = append(bal.OwedBy, Debt{MemberID: other.ID, Amount: amount})
			}
		}

		// Integer cents: the only rounding happened when amounts entered the ledger.
		bal.Net = bal.TotalOwed() - bal.TotalOwes()
		balances = append(balances, bal)
	}

	return balances
}

func lookup(debts []Debt, id string) money.Cents {
	for _, d := range debts {
		if d.MemberID == id {
			return d.Amount
		}
	}
	return 0
}

func total(debts []Debt) money.Cents {
	var sum money.Cents
	for _, d := range debts {
		sum += d.Amount
	}
	return sum
}
