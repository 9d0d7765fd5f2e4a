package ledger

import "github.com/mmynk/splitledger/internal/money"

// DebtMatrix holds pairwise debts: Owed(from, to) is what from currently owes to.
// Entries are never negative for well-formed input and an absent entry means zero.
//
// Iteration order is deterministic: debtors in the order their rows were
// created (members first), creditors in the order they were first charged.
type DebtMatrix struct {
	rows    map[string]map[string]money.Cents
	debtors []string
	order   map[string][]string
}

func newDebtMatrix(size int) *DebtMatrix {
	return &DebtMatrix{
		rows:    make(map[string]map[string]money.Cents, size),
		debtors: make([]string, 0, size),
		order:   make(map[string][]string, size),
	}
}

// BuildDebtMatrix derives pairwise debtor -> creditor amounts from a group's
// expenses and settlements.
//
// Algorithm:
//   - every member gets an empty row
//   - for each expense split that is not the payer's own share, the split
//     member owes the payer the share amount
//   - each settlement reduces the matching debt, floored at zero
//
// Settling more than the recorded debt does not create a reverse credit: the
// excess is discarded. Ids that are not in members simply get their own
// entries; the caller keeps references consistent.
func BuildDebtMatrix(members []Member, expenses []Expense, settlements []Settlement) *DebtMatrix {
	m := newDebtMatrix(len(members))
	for _, member := range members {
		m.row(member.ID)
	}

	for _, expense := range expenses {
		for _, split := range expense.Splits {
			if split.MemberID == expense.PaidBy {
				continue
			}
			m.add(split.MemberID, expense.PaidBy, split.Amount)
		}
	}

	for _, s := range settlements {
		row, ok := m.rows[s.From]
		if !ok {
			continue
		}
		owed, ok := row[s.To]
		if !ok || owed == 0 {
			continue
		}
		row[s.To] = max(0, owed-s.Amount)
	}

	return m
}

func (m *DebtMatrix) row(debtor string) map[string]money.Cents {
	row, ok := m.rows[debtor]
	if !ok {
		row = make(map[string]money.Cents)
		m.rows[debtor] = row
		m.debtors = append(m.debtors, debtor)
	}
	return row
}

func (m *DebtMatrix) add(from, to string, amount money.Cents) {
	row := m.row(from)
	if _, ok := row[to]; !ok {
		m.order[from] = append(m.order[from], to)
	}
	row[to] += amount
}

// Owed returns what from owes to, or zero.
func (m *DebtMatrix) Owed(from, to string) money.Cents {
	return m.rows[from][to]
}

// Debtors returns every id that has a row, members first.
func (m *DebtMatrix) Debtors() []string {
	return append([]string(nil), m.debtors...)
}

// Creditors returns the ids debtor has ever been charged by, in first-charge
// order. Settled entries (zero) are included.
func (m *DebtMatrix) Creditors(debtor string) []string {
	return append([]string(nil), m.order[debtor]...)
}

// Total is the sum of all positive entries.
func (m *DebtMatrix) Total() money.Cents {
	var total money.Cents
	for _, row := range m.rows {
		for _, amount := range row {
			if amount > 0 {
				total += amount
			}
		}
	}
	return total
}
