package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseInput is a new or edited expense. Shares come from, in order of
// precedence: explicit Splits, a Split request (exact, percentage or
// itemised), or an equal split across SplitAmong, falling back to every
// group member.
type ExpenseInput struct {
	ID          string              `json:"id,omitempty"`
	Amount      money.Cents         `json:"amount"`
	Description string              `json:"description"`
	Category    string              `json:"category,omitempty"`
	PaidBy      string              `json:"paid_by"`
	Splits      []models.Split      `json:"splits,omitempty"`
	Split       *calculator.Request `json:"split,omitempty"`
	SplitAmong  []string            `json:"split_among,omitempty"`
	Date        string              `json:"date,omitempty"`
}

// SettlementInput is a repayment between two members. Supplying an ID makes
// retries idempotent.
type SettlementInput struct {
	ID          string      `json:"id,omitempty"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	Amount      money.Cents `json:"amount"`
	Description string      `json:"description,omitempty"`
	Date        string      `json:"date,omitempty"`
}

// Options configures a LedgerService. Zero values are valid.
type Options struct {
	// CacheSize is the number of groups whose balance reports are kept.
	CacheSize int
	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

// LedgerService records expenses and settlements and serves balances.
//
// Balance reports are memoised per group and dropped on every write to that
// group. Concurrent requests for the same group share one computation.
type LedgerService struct {
	store     storage.Store
	cache     *cache.LRU[ledger.Report]
	flight    singleflight.Group
	publisher events.Publisher
	metrics   *metrics.Metrics

	// generations guards against caching a report computed from data that
	// was changed while the computation ran.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts Options) *LedgerService {
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	return &LedgerService{
		store:       store,
		cache:       cache.NewLRU[ledger.Report](opts.CacheSize),
		publisher:   opts.Publisher,
		metrics:     opts.Metrics,
		generations: make(map[string]uint64),
	}
}

// Invalidate drops the memoised report of a group.
func (s *LedgerService) Invalidate(groupID string) {
	s.mu.Lock()
	s.generations[groupID]++
	s.cache.Delete(groupID)
	s.mu.Unlock()

	s.flight.Forget(groupID)
}

func (s *LedgerService) generation(groupID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[groupID]
}

// cacheIfCurrent stores report unless the group was written since gen was
// read. The check and the store happen under the lock Invalidate takes.
func (s *LedgerService) cacheIfCurrent(groupID string, gen uint64, report ledger.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[groupID] == gen {
		s.cache.Set(groupID, report)
	}
}

// written invalidates the group and publishes an event. Publishing failures
// are logged only; the write has already succeeded.
func (s *LedgerService) written(ctx context.Context, t events.Type, groupID, entityID string) {
	s.Invalidate(groupID)
	if s.metrics != nil {
		s.metrics.Writes.WithLabelValues(string(t)).Inc()
	}
	if err := s.publisher.Publish(ctx, events.New(t, groupID, entityID)); err != nil {
		slog.Warn("Failed to publish ledger event", "type", t, "group_id", groupID, "error", err)
	}
}

// RecordExpense validates and stores an expense. An input ID that already
// exists in the group replaces that expense.
func (s *LedgerService) RecordExpense(ctx context.Context, groupID string, in ExpenseInput) (*models.Expense, error) {
	slog.Info("RecordExpense request received",
		"group_id", groupID,
		"amount", in.Amount,
		"paid_by", in.PaidBy,
		"splits", len(in.Splits),
	)

	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:          in.ID,
		GroupID:     groupID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		PaidBy:      strings.TrimSpace(in.PaidBy),
		Splits:      in.Splits,
		Date:        in.Date,
	}

	if expense.ID != "" {
		existing, err := s.store.GetExpense(ctx, expense.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to load expense: %w", err)
		case existing.GroupID != groupID:
			return nil, fmt.Errorf("%w: expense %s belongs to another group", ErrInvalidInput, expense.ID)
		}
	}

	if len(expense.Splits) == 0 {
		splits, err := calculateSplits(group, expense.Amount, in)
		if err != nil {
			slog.Warn("RecordExpense split calculation failed", "group_id", groupID, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		expense.Splits = splits
	}

	if err := ledger.ValidateExpense(toLedgerExpense(expense)); err != nil {
		slog.Warn("RecordExpense validation failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	participants := []string{expense.PaidBy}
	for _, split := range expense.Splits {
		participants = append(participants, split.MemberID)
	}
	if err := autoAddParticipants(ctx, s.store, group, participants); err != nil {
		slog.Error("RecordExpense: failed to add participants", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to add participants: %w", err)
	}

	if err := s.store.SaveExpense(ctx, expense); err != nil {
		slog.Error("RecordExpense failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	s.written(ctx, events.ExpenseRecorded, groupID, expense.ID)

	slog.Info("Expense recorded", "group_id", groupID, "expense_id", expense.ID)
	return expense, nil
}

// UpdateExpense replaces an existing expense of the group.
func (s *LedgerService) UpdateExpense(ctx context.Context, groupID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	existing, err := s.expenseInGroup(ctx, groupID, expenseID)
	if err != nil {
		return nil, err
	}
	in.ID = existing.ID
	if in.Date == "" {
		in.Date = existing.Date
	}
	return s.RecordExpense(ctx, groupID, in)
}

// DeleteExpense removes an expense of the group.
func (s *LedgerService) DeleteExpense(ctx context.Context, groupID, expenseID string) error {
	if _, err := loadGroup(ctx, s.store, groupID); err != nil {
		return err
	}
	if _, err := s.expenseInGroup(ctx, groupID, expenseID); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.written(ctx, events.ExpenseDeleted, groupID, expenseID)
	return nil
}

// calculateSplits derives shares for an expense that did not list them.
func calculateSplits(group *models.Group, amount money.Cents, in ExpenseInput) ([]models.Split, error) {
	req := calculator.Request{Method: calculator.MethodEqual, Participants: in.SplitAmong}
	if in.Split != nil {
		req = *in.Split
	}
	if len(req.Participants) == 0 && (req.Method == calculator.MethodEqual || req.Method == "") {
		for _, m := range group.Members {
			req.Participants = append(req.Participants, m.UserID)
		}
	}

	shares, err := calculator.Calculate(amount, req)
	if err != nil {
		return nil, err
	}
	splits := make([]models.Split, len(shares))
	for i, s := range shares {
		splits[i] = models.Split{MemberID: s.MemberID, Amount: s.Amount}
	}
	return splits, nil
}

func (s *LedgerService) expenseInGroup(ctx context.Context, groupID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.GroupID != groupID {
		return nil, fmt.Errorf("expense %s in group %s: %w", expenseID, groupID, storage.ErrNotFound)
	}
	return expense, nil
}

// ListExpenses returns a group's expenses in recording order.
func (s *LedgerService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := loadGroup(ctx, s.store, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// RecordSettlement validates and stores a repayment. Resubmitting an ID
// already recorded in the group returns the stored settlement unchanged.
func (s *LedgerService) RecordSettlement(ctx context.Context, groupID string, in SettlementInput) (*models.Settlement, error) {
	slog.Info("RecordSettlement request received",
		"group_id", groupID,
		"from", in.From,
		"to", in.To,
		"amount", in.Amount,
	)

	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}

	settlement := &models.Settlement{
		ID:          in.ID,
		GroupID:     groupID,
		FromUserID:  strings.TrimSpace(in.From),
		ToUserID:    strings.TrimSpace(in.To),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}

	if err := ledger.ValidateSettlement(toLedgerSettlement(settlement)); err != nil {
		slog.Warn("RecordSettlement validation failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !group.HasMember(settlement.FromUserID) || !group.HasMember(settlement.ToUserID) {
		return nil, fmt.Errorf("%w: both parties must be group members", ErrInvalidInput)
	}

	if settlement.ID != "" {
		existing, err := s.store.GetSettlement(ctx, settlement.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to load settlement: %w", err)
		case existing.GroupID != groupID:
			return nil, fmt.Errorf("%w: settlement %s belongs to another group", ErrInvalidInput, settlement.ID)
		default:
			slog.Info("Settlement already recorded", "group_id", groupID, "settlement_id", existing.ID)
			return existing, nil
		}
	}

	if settlement.Description == "" {
		settlement.Description = fmt.Sprintf("Settlement: %s → %s",
			group.MemberName(settlement.FromUserID), group.MemberName(settlement.ToUserID))
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to save settlement: %w", err)
	}
	s.written(ctx, events.SettlementRecorded, groupID, settlement.ID)

	slog.Info("Settlement recorded", "group_id", groupID, "settlement_id", settlement.ID)
	return settlement, nil
}

// DeleteSettlement removes a settlement of the group.
func (s *LedgerService) DeleteSettlement(ctx context.Context, groupID, settlementID string) error {
	if _, err := loadGroup(ctx, s.store, groupID); err != nil {
		return err
	}
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if settlement.GroupID != groupID {
		return fmt.Errorf("settlement %s in group %s: %w", settlementID, groupID, storage.ErrNotFound)
	}
	if err := s.store.DeleteSettlement(ctx, settlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlementID, "error", err)
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	s.written(ctx, events.SettlementDeleted, groupID, settlementID)
	return nil
}

// ListSettlements returns a group's settlements in recording order.
func (s *LedgerService) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := loadGroup(ctx, s.store, groupID); err != nil {
		return nil, err
	}
	return s.store.ListSettlementsByGroup(ctx, groupID)
}

// Balances returns the detailed balances and settlement suggestions of a
// group.
func (s *LedgerService) Balances(ctx context.Context, groupID string) (ledger.Report, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return ledger.Report{}, err
	}

	if report, ok := s.cache.Get(groupID); ok {
		s.observeCache(true)
		return report, nil
	}
	s.observeCache(false)

	v, err, _ := s.flight.Do(groupID, func() (interface{}, error) {
		gen := s.generation(groupID)
		start := time.Now()

		snapshot, err := s.loadSnapshot(ctx, group)
		if err != nil {
			return ledger.Report{}, err
		}
		report := snapshot.Compute()

		if s.metrics != nil {
			s.metrics.Computations.Inc()
			s.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
		}
		s.cacheIfCurrent(groupID, gen, report)

		slog.Debug("Balances computed",
			"group_id", groupID,
			"expenses", len(snapshot.Expenses),
			"settlements", len(snapshot.Settlements),
			"suggestions", len(report.Suggestions),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return report, nil
	})
	if err != nil {
		slog.Error("Balances failed", "group_id", groupID, "error", err)
		return ledger.Report{}, err
	}
	return v.(ledger.Report), nil
}

// SimplifiedBalances returns a greedy transfer plan that settles the group
// in few payments.
func (s *LedgerService) SimplifiedBalances(ctx context.Context, groupID string) ([]ledger.Suggestion, error) {
	report, err := s.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ledger.Simplify(report.Balances), nil
}

// NetBalances returns each member's paid-minus-share total.
func (s *LedgerService) NetBalances(ctx context.Context, groupID string) ([]ledger.GroupBalance, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.loadSnapshot(ctx, group)
	if err != nil {
		return nil, err
	}
	return ledger.NetBalances(snapshot.Members, snapshot.Expenses, snapshot.Settlements), nil
}

func (s *LedgerService) observeCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
}

// loadSnapshot reads a group's expenses and settlements in parallel.
func (s *LedgerService) loadSnapshot(ctx context.Context, group *models.Group) (ledger.Snapshot, error) {
	var (
		expenses    []*models.Expense
		settlements []*models.Settlement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpensesByGroup(gctx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settlements, err = s.store.ListSettlementsByGroup(gctx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to list settlements: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ledger.Snapshot{}, err
	}

	return toSnapshot(group, expenses, settlements), nil
}

// Compute runs the engine over a snapshot that is not stored anywhere.
// Callers do not need to be authenticated; an identity in ctx is logged.
func (s *LedgerService) Compute(ctx context.Context, snapshot ledger.Snapshot) ledger.Report {
	slog.Info("Compute request received",
		"user_id", middleware.GetUserID(ctx),
		"members", len(snapshot.Members),
		"expenses", len(snapshot.Expenses),
		"settlements", len(snapshot.Settlements),
	)

	start := time.Now()
	report := snapshot.Compute()
	if s.metrics != nil {
		s.metrics.Computations.Inc()
		s.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	}
	return report
}
