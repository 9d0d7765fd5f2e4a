package ledger

// Report is the full result of one ledger computation.
type Report struct {
	Matrix      *DebtMatrix       `json:"-"`
	Balances    []DetailedBalance `json:"balances"`
	Suggestions []Suggestion      `json:"suggestions"`
}

// Compute runs BuildDebtMatrix, Aggregate and Suggest over one snapshot.
func Compute(members []Member, expenses []Expense, settlements []Settlement) Report {
	matrix := BuildDebtMatrix(members, expenses, settlements)
	balances := Aggregate(members, matrix)
	return Report{
		Matrix:      matrix,
		Balances:    balances,
		Suggestions: Suggest(balances),
	}
}

// Settled reports whether nobody owes anything.
func (r Report) Settled() bool {
	return len(r.Suggestions) == 0
}

// Snapshot is everything the engine needs for one group.
type Snapshot struct {
	Members     []Member     `json:"members"`
	Expenses    []Expense    `json:"expenses"`
	Settlements []Settlement `json:"settlements"`
}

// Compute runs the full pipeline over the snapshot.
func (s Snapshot) Compute() Report {
	return Compute(s.Members, s.Expenses, s.Settlements)
}
