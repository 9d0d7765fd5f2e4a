// Package calculator turns a split description (equal, exact amounts,
// percentages or itemised receipt lines) into per-member shares that add up
// to the expense amount to the cent.
package calculator

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/money"
)

// Method selects how an expense amount is divided.
type Method string

const (
	MethodEqual      Method = "equal"
	MethodExact      Method = "exact"
	MethodPercentage Method = "percentage"
	MethodItemized   Method = "itemized"
)

var (
	ErrUnknownMethod       = errors.New("unknown split method")
	ErrNoParticipants      = errors.New("must have at least one participant")
	ErrMissingMember       = errors.New("member is required for every share")
	ErrNegativeAmount      = errors.New("amounts cannot be negative")
	ErrInvalidPercentages  = errors.New("percentages must sum to 100")
	ErrPercentageRange     = errors.New("percentage must be between 0 and 100")
	ErrInvalidExactAmounts = errors.New("exact amounts must sum to the total")
	ErrZeroSubtotal        = errors.New("subtotal cannot be zero")
)

// percentTolerance absorbs rounding in user-entered percentages.
var percentTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Share is one member's part in an exact or percentage split.
type Share struct {
	MemberID string          `json:"member_id"`
	Amount   money.Cents     `json:"amount,omitempty"`
	Percent  decimal.Decimal `json:"percent,omitempty"`
}

// Item is a single receipt line shared by the members it is assigned to.
// An item assigned to nobody is shared by every participant.
type Item struct {
	Description string      `json:"description"`
	Amount      money.Cents `json:"amount"`
	AssignedTo  []string    `json:"assigned_to"`
}

// Request describes how to split an expense.
type Request struct {
	Method Method `json:"method"`

	// Participants is used by equal and itemised splits.
	Participants []string `json:"participants,omitempty"`

	// Shares is used by exact and percentage splits.
	Shares []Share `json:"shares,omitempty"`

	// Items is used by itemised splits. The difference between the total
	// and the sum of items (tax, tip, service) is distributed in proportion
	// to each member's item subtotal.
	Items []Item `json:"items,omitempty"`
}

// Calculate splits total according to req. The returned shares always add
// up to total exactly and none is negative.
func Calculate(total money.Cents, req Request) ([]ledger.Split, error) {
	if total < 0 {
		return nil, ErrNegativeAmount
	}

	switch req.Method {
	case MethodEqual, "":
		if len(req.Participants) == 0 {
			return nil, ErrNoParticipants
		}
		return ledger.EqualSplit(total, req.Participants), nil
	case MethodExact:
		return exact(total, req.Shares)
	case MethodPercentage:
		return percentage(total, req.Shares)
	case MethodItemized:
		return itemized(total, req.Items, req.Participants)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}
}

func checkShares(shares []Share) error {
	if len(shares) == 0 {
		return ErrNoParticipants
	}
	for _, s := range shares {
		if s.MemberID == "" {
			return ErrMissingMember
		}
	}
	return nil
}

func exact(total money.Cents, shares []Share) ([]ledger.Split, error) {
	if err := checkShares(shares); err != nil {
		return nil, err
	}

	splits := make([]ledger.Split, len(shares))
	var sum money.Cents
	for i, s := range shares {
		if s.Amount < 0 {
			return nil, ErrNegativeAmount
		}
		splits[i] = ledger.Split{MemberID: s.MemberID, Amount: s.Amount}
		sum += s.Amount
	}

	if diff := (total - sum).Abs(); diff > ledger.SplitTolerance {
		return nil, fmt.Errorf("%w: off by %s", ErrInvalidExactAmounts, diff)
	}
	return splits, nil
}

func percentage(total money.Cents, shares []Share) ([]ledger.Split, error) {
	if err := checkShares(shares); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, s := range shares {
		if s.Percent.IsNegative() || s.Percent.GreaterThan(hundred) {
			return nil, ErrPercentageRange
		}
		sum = sum.Add(s.Percent)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidPercentages, sum)
	}

	weights := make([]decimal.Decimal, len(shares))
	ids := make([]string, len(shares))
	for i, s := range shares {
		ids[i] = s.MemberID
		weights[i] = s.Percent
	}
	return allocate(total, ids, weights, sum), nil
}

// itemized splits each item across its members, then scales every member's
// subtotal so the shares cover total:
//
//	share = subtotal × total / items_sum
func itemized(total money.Cents, items []Item, participants []string) ([]ledger.Split, error) {
	order := make([]string, 0, len(participants))
	subtotals := make(map[string]money.Cents)
	join := func(id string) {
		if _, ok := subtotals[id]; !ok && id != "" {
			subtotals[id] = 0
			order = append(order, id)
		}
	}
	for _, p := range participants {
		join(p)
	}
	for _, item := range items {
		for _, id := range item.AssignedTo {
			join(id)
		}
	}
	if len(order) == 0 {
		return nil, ErrNoParticipants
	}

	// No items: split total equally among all participants
	if len(items) == 0 {
		return ledger.EqualSplit(total, order), nil
	}

	var itemsSum money.Cents
	for _, item := range items {
		if item.Amount < 0 {
			return nil, ErrNegativeAmount
		}
		itemsSum += item.Amount

		assigned := item.AssignedTo
		if len(assigned) == 0 {
			assigned = order
		}
		for _, s := range ledger.EqualSplit(item.Amount, assigned) {
			subtotals[s.MemberID] += s.Amount
		}
	}
	if itemsSum == 0 {
		return nil, ErrZeroSubtotal
	}

	weights := make([]decimal.Decimal, len(order))
	for i, id := range order {
		weights[i] = subtotals[id].Decimal()
	}
	return allocate(total, order, weights, itemsSum.Decimal()), nil
}

// allocate distributes total in proportion to weights/whole. Shares are
// floored and the leftover cents go to the largest fractional parts, later
// members first on ties, so shares never go negative.
func allocate(total money.Cents, ids []string, weights []decimal.Decimal, whole decimal.Decimal) []ledger.Split {
	splits := make([]ledger.Split, len(ids))
	fractions := make([]decimal.Decimal, len(ids))
	totalDec := decimal.NewFromInt(int64(total))

	var assigned money.Cents
	for i, id := range ids {
		exact := totalDec.Mul(weights[i]).Div(whole)
		floor := exact.Floor()
		fractions[i] = exact.Sub(floor)
		splits[i] = ledger.Split{MemberID: id, Amount: money.Cents(floor.IntPart())}
		assigned += splits[i].Amount
	}

	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := fractions[b].Cmp(fractions[a]); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})
	for i := 0; assigned < total && len(order) > 0; i++ {
		splits[order[i%len(order)]].Amount++
		assigned++
	}
	return splits
}
