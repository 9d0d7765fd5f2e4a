// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the group repository used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	GroupStore
	ExpenseStore
	SettlementStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup persists a new group. ID, CreatedAt and member JoinedAt are
	// filled in when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// UpdateGroup replaces the name, description and member list of a group.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group with its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers appends members that are not in the group yet.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error
}

// ExpenseStore persists group expenses.
type ExpenseStore interface {
	// SaveExpense inserts the expense or replaces the one with the same ID.
	SaveExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// ListExpensesByGroup returns a group's expenses in recording order.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// SettlementStore persists recorded repayments.
type SettlementStore interface {
	// CreateSettlement inserts a settlement. Saving an ID that already exists
	// is a no-op, so retried submissions are not counted twice.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// ListSettlementsByGroup returns a group's settlements in recording order.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
}

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns nil, nil when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
