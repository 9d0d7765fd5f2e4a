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

// CreateSettlement persists a new settlement. An ID that is already stored is
// left untouched, so resubmitting the same settlement is harmless.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == "" {
		settlement.Date = today()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount_cents, description, date, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM settlements))
		 ON CONFLICT(id) DO NOTHING`,
		settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		int64(settlement.Amount), nullable(settlement.Description), settlement.Date, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

const settlementColumns = "id, group_id, from_user_id, to_user_id, amount_cents, description, date, created_at"

func scanSettlement(row interface{ Scan(...any) error }) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount int64
	var description sql.NullString
	if err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID, &settlement.ToUserID,
		&amount, &description, &settlement.Date, &settlement.CreatedAt); err != nil {
		return nil, err
	}
	settlement.Amount = money.Cents(amount)
	if description.Valid {
		settlement.Description = description.String
	}
	return settlement, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group in recording order.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	settlements := []*models.Settlement{}
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("settlement", settlementID)
	}
	return nil
}
