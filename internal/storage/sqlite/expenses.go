package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SaveExpense inserts a new expense or replaces an existing one with the same
// ID. Replacing keeps the original CreatedAt and recording position.
func (s *SQLiteStore) SaveExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Date == "" {
		expense.Date = today()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var createdAt int64
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM expenses WHERE id = ?", expense.ID).Scan(&createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if expense.CreatedAt == 0 {
			expense.CreatedAt = time.Now().Unix()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, amount_cents, description, category, paid_by, date, created_at, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM expenses))`,
			expense.ID, expense.GroupID, int64(expense.Amount), expense.Description, expense.Category,
			expense.PaidBy, expense.Date, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to check expense existence: %w", err)
	default:
		expense.CreatedAt = createdAt
		_, err = tx.ExecContext(ctx,
			`UPDATE expenses SET group_id = ?, amount_cents = ?, description = ?, category = ?, paid_by = ?, date = ?
			 WHERE id = ?`,
			expense.GroupID, int64(expense.Amount), expense.Description, expense.Category,
			expense.PaidBy, expense.Date, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear splits: %w", err)
		}
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, member_id, amount_cents, settled, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.MemberID, int64(split.Amount), split.Settled, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const expenseColumns = "id, group_id, amount_cents, description, category, paid_by, date, created_at"

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{Splits: []models.Split{}}
	var amount int64
	if err := row.Scan(&e.ID, &e.GroupID, &amount, &e.Description, &e.Category, &e.PaidBy, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Amount = money.Cents(amount)
	return e, nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, member_id, amount_cents, settled FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	if err := attachSplits(rows, map[string]*models.Expense{expense.ID: expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group in recording order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	// One query for all splits of the group, no nested cursors.
	splitRows, err := s.db.QueryContext(ctx,
		`SELECT sp.expense_id, sp.member_id, sp.amount_cents, sp.settled
		 FROM expense_splits sp JOIN expenses e ON e.id = sp.expense_id
		 WHERE e.group_id = ? ORDER BY e.seq, sp.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer splitRows.Close()

	if err := attachSplits(splitRows, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

func attachSplits(rows *sql.Rows, byID map[string]*models.Expense) error {
	for rows.Next() {
		var expenseID string
		var split models.Split
		var amount int64
		if err := rows.Scan(&expenseID, &split.MemberID, &amount, &split.Settled); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		split.Amount = money.Cents(amount)
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("expense", expenseID)
	}
	return nil
}
