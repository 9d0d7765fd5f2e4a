package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/pkg/response"
)

// CreateExpense handles POST /groups/{groupID}/expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req service.ExpenseInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := h.ledger.RecordExpense(r.Context(), chi.URLParam(r, "groupID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, expense)
}

// ListExpenses handles GET /groups/{groupID}/expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.ledger.ListExpenses(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, expenses)
}

// UpdateExpense handles PUT /groups/{groupID}/expenses/{expenseID}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req service.ExpenseInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := h.ledger.UpdateExpense(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "expenseID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /groups/{groupID}/expenses/{expenseID}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteExpense(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "expenseID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSettlement handles POST /groups/{groupID}/settlements
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req service.SettlementInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	settlement, err := h.ledger.RecordSettlement(r.Context(), chi.URLParam(r, "groupID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, settlement)
}

// ListSettlements handles GET /groups/{groupID}/settlements
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.ledger.ListSettlements(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, settlements)
}

// DeleteSettlement handles DELETE /groups/{groupID}/settlements/{settlementID}
func (h *Handler) DeleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteSettlement(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "settlementID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BalancesResponse is the body of the balance endpoints.
type BalancesResponse struct {
	Balances    []ledger.DetailedBalance `json:"balances"`
	Suggestions []ledger.Suggestion      `json:"suggestions"`
	Simplified  []ledger.Suggestion      `json:"simplified,omitempty"`
	Settled     bool                     `json:"settled"`
}

func newBalancesResponse(report ledger.Report, simplify bool) BalancesResponse {
	resp := BalancesResponse{
		Balances:    report.Balances,
		Suggestions: report.Suggestions,
		Settled:     report.Settled(),
	}
	if simplify {
		resp.Simplified = ledger.Simplify(report.Balances)
	}
	return resp
}

// Balances handles GET /groups/{groupID}/balances
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Balances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, newBalancesResponse(report, false))
}

// SimplifiedBalances handles GET /groups/{groupID}/balances/simplified
func (h *Handler) SimplifiedBalances(w http.ResponseWriter, r *http.Request) {
	plan, err := h.ledger.SimplifiedBalances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, plan)
}

// NetBalances handles GET /groups/{groupID}/balances/net
func (h *Handler) NetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.NetBalances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, balances)
}

// Compute handles POST /ledger/compute. The snapshot in the body is not
// stored. Pass ?simplify=true to include a simplified plan.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var snapshot ledger.Snapshot
	if err := decode(w, r, &snapshot); err != nil {
		writeError(w, r, err)
		return
	}

	simplify, _ := strconv.ParseBool(r.URL.Query().Get("simplify"))
	report := h.ledger.Compute(r.Context(), snapshot)
	response.JSON(w, http.StatusOK, newBalancesResponse(report, simplify))
}
