package service

import (
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

func toSnapshot(group *models.Group, expenses []*models.Expense, settlements []*models.Settlement) ledger.Snapshot {
	snapshot := ledger.Snapshot{
		Members:     make([]ledger.Member, len(group.Members)),
		Expenses:    make([]ledger.Expense, len(expenses)),
		Settlements: make([]ledger.Settlement, len(settlements)),
	}
	for i, m := range group.Members {
		snapshot.Members[i] = ledger.Member{ID: m.UserID, Name: m.Name}
	}
	for i, e := range expenses {
		snapshot.Expenses[i] = toLedgerExpense(e)
	}
	for i, st := range settlements {
		snapshot.Settlements[i] = toLedgerSettlement(st)
	}
	return snapshot
}

func toLedgerExpense(e *models.Expense) ledger.Expense {
	splits := make([]ledger.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = ledger.Split{MemberID: s.MemberID, Amount: s.Amount}
	}
	return ledger.Expense{ID: e.ID, Amount: e.Amount, PaidBy: e.PaidBy, Splits: splits}
}

func toLedgerSettlement(s *models.Settlement) ledger.Settlement {
	return ledger.Settlement{ID: s.ID, From: s.FromUserID, To: s.ToUserID, Amount: s.Amount}
}
