package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

// setupServer starts the API over a temporary database. With withAuth the
// group routes require a token.
func setupServer(t *testing.T, withAuth bool) *client {
	t.Helper()

	dir, err := os.MkdirTemp("", "splitledger-api-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := sqlite.New(dir + "/test.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	ledgerSvc := service.NewLedgerService(store, service.Options{CacheSize: 16, Metrics: m})
	deps := Deps{
		Groups:  service.NewGroupService(store, ledgerSvc),
		Ledger:  ledgerSvc,
		Metrics: m,
	}
	if withAuth {
		deps.JWT = auth.NewJWTManager("test-secret", time.Hour)
		authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
		deps.Auth = service.NewAuthService(authenticator, deps.JWT, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)
	return &client{t: t, server: server}
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			c.t.Fatalf("%s %s: decode envelope: %v", method, path, err)
		}
	}
	return resp.StatusCode, env
}

// must performs a request that has to return want and decodes its data.
func (c *client) must(method, path string, body any, want int, out any) {
	c.t.Helper()
	status, env := c.do(method, path, body)
	if status != want {
		msg := ""
		if env.Error != nil {
			msg = env.Error.Code + ": " + env.Error.Message
		}
		c.t.Fatalf("%s %s: status %d, want %d (%s)", method, path, status, want, msg)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
}

func TestHealth(t *testing.T) {
	c := setupServer(t, false)
	var body map[string]string
	c.must(http.MethodGet, "/health", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestBalanceFlow(t *testing.T) {
	c := setupServer(t, false)

	var group models.Group
	c.must(http.MethodPost, "/api/v1/groups", map[string]any{
		"name": "Roommates",
		"members": []map[string]string{
			{"user_id": "alice", "name": "Alice"},
			{"user_id": "bob", "name": "Bob"},
			{"user_id": "carol", "name": "Carol"},
		},
	}, http.StatusCreated, &group)

	base := "/api/v1/groups/" + group.ID

	var expense models.Expense
	c.must(http.MethodPost, base+"/expenses", map[string]any{
		"amount":      "90.00",
		"description": "Groceries",
		"paid_by":     "alice",
	}, http.StatusCreated, &expense)
	if len(expense.Splits) != 3 || expense.Splits[0].Amount != 3000 {
		t.Fatalf("expected equal split, got %+v", expense.Splits)
	}

	c.must(http.MethodPost, base+"/settlements", map[string]any{
		"from":   "bob",
		"to":     "alice",
		"amount": 10,
	}, http.StatusCreated, nil)

	var balances BalancesResponse
	c.must(http.MethodGet, base+"/balances", nil, http.StatusOK, &balances)

	want := []ledger.Suggestion{
		{From: "carol", FromName: "Carol", To: "alice", ToName: "Alice", Amount: 3000},
		{From: "bob", FromName: "Bob", To: "alice", ToName: "Alice", Amount: 2000},
	}
	if len(balances.Suggestions) != len(want) {
		t.Fatalf("suggestions = %+v, want %+v", balances.Suggestions, want)
	}
	for i := range want {
		if balances.Suggestions[i] != want[i] {
			t.Errorf("suggestion %d = %+v, want %+v", i, balances.Suggestions[i], want[i])
		}
	}
	if balances.Settled {
		t.Error("group should not be settled")
	}
	if balances.Balances[0].Net != 5000 {
		t.Errorf("alice net = %s, want 50.00", balances.Balances[0].Net)
	}

	var net []ledger.GroupBalance
	c.must(http.MethodGet, base+"/balances/net", nil, http.StatusOK, &net)
	if len(net) != 3 || net[0].Balance != 5000 {
		t.Errorf("unexpected net balances: %+v", net)
	}

	var plan []ledger.Suggestion
	c.must(http.MethodGet, base+"/balances/simplified", nil, http.StatusOK, &plan)
	if ledger.TotalSuggested(plan) != 5000 {
		t.Errorf("simplified plan total = %s, want 50.00", ledger.TotalSuggested(plan))
	}

	c.must(http.MethodDelete, base+"/expenses/"+expense.ID, nil, http.StatusNoContent, nil)
	c.must(http.MethodGet, base+"/balances", nil, http.StatusOK, &balances)
	if !balances.Settled {
		t.Errorf("expected settled group after deleting the expense, got %+v", balances.Suggestions)
	}
}

func TestErrorMapping(t *testing.T) {
	c := setupServer(t, false)

	var group models.Group
	c.must(http.MethodPost, "/api/v1/groups", map[string]any{
		"name":    "Trip",
		"members": []map[string]string{{"user_id": "a"}, {"user_id": "b"}},
	}, http.StatusCreated, &group)
	base := "/api/v1/groups/" + group.ID

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		status   int
		wantCode string
	}{
		{"unknown group", http.MethodGet, "/api/v1/groups/missing", nil, http.StatusNotFound, "NOT_FOUND"},
		{"blank group name", http.MethodPost, "/api/v1/groups", map[string]any{"name": ""}, http.StatusBadRequest, "BAD_REQUEST"},
		{"split mismatch", http.MethodPost, base + "/expenses", map[string]any{
			"amount": 10, "paid_by": "a",
			"splits": []map[string]any{{"member_id": "a", "amount": 3}, {"member_id": "b", "amount": 3}},
		}, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad amount", http.MethodPost, base + "/expenses", map[string]any{"amount": "ten", "paid_by": "a"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"self settlement", http.MethodPost, base + "/settlements", map[string]any{"from": "a", "to": "a", "amount": 1}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown expense", http.MethodDelete, base + "/expenses/nope", nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := c.do(tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	c := setupServer(t, false)

	snapshot := ledger.Snapshot{
		Members: []ledger.Member{{ID: "A", Name: "Ann"}, {ID: "B", Name: "Ben"}, {ID: "C", Name: "Cat"}},
		Expenses: []ledger.Expense{
			{ID: "e1", Amount: 1000, PaidBy: "A", Splits: []ledger.Split{{MemberID: "B", Amount: 1000}}},
			{ID: "e2", Amount: 1000, PaidBy: "B", Splits: []ledger.Split{{MemberID: "C", Amount: 1000}}},
		},
	}

	var resp BalancesResponse
	c.must(http.MethodPost, "/api/v1/ledger/compute?simplify=true", snapshot, http.StatusOK, &resp)
	if len(resp.Suggestions) != 2 {
		t.Errorf("expected 2 raw suggestions, got %+v", resp.Suggestions)
	}
	if len(resp.Simplified) != 1 || resp.Simplified[0].From != "C" || resp.Simplified[0].To != "A" {
		t.Errorf("unexpected simplified plan: %+v", resp.Simplified)
	}
	if resp.Simplified[0].Amount != money.Cents(1000) {
		t.Errorf("simplified amount = %s, want 10.00", resp.Simplified[0].Amount)
	}
}

// lockedBuffer collects log output written from server goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCompute_OptionalToken(t *testing.T) {
	c := setupServer(t, true)

	logs := &lockedBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var session service.Session
	c.must(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "carol@example.com", "password": "password123",
	}, http.StatusCreated, &session)

	snapshot := ledger.Snapshot{
		Members:  []ledger.Member{{ID: "A", Name: "Ann"}, {ID: "B", Name: "Ben"}},
		Expenses: []ledger.Expense{{ID: "e1", Amount: 500, PaidBy: "A", Splits: []ledger.Split{{MemberID: "B", Amount: 500}}}},
	}

	c.token = "not-a-token"
	c.must(http.MethodPost, "/api/v1/ledger/compute", snapshot, http.StatusOK, nil)

	c.token = session.Token
	var resp BalancesResponse
	c.must(http.MethodPost, "/api/v1/ledger/compute", snapshot, http.StatusOK, &resp)
	if len(resp.Suggestions) != 1 {
		t.Errorf("expected 1 suggestion, got %+v", resp.Suggestions)
	}
	if !strings.Contains(logs.String(), "user_id="+session.User.ID) {
		t.Errorf("caller identity missing from logs:\n%s", logs.String())
	}
}

func TestAuthFlow(t *testing.T) {
	c := setupServer(t, true)

	status, env := c.do(http.MethodGet, "/api/v1/groups", nil)
	if status != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected 401 without token, got %d %+v", status, env)
	}

	var session service.Session
	c.must(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "alice@example.com", "display_name": "Alice", "password": "password123",
	}, http.StatusCreated, &session)
	if session.Token == "" {
		t.Fatal("expected a token")
	}

	status, _ = c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", status)
	}

	status, _ = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "nope-nope",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", status)
	}

	c.token = session.Token
	var group models.Group
	c.must(http.MethodPost, "/api/v1/groups", map[string]any{
		"name":    "Trip",
		"members": []map[string]string{{"user_id": "bob", "name": "Bob"}},
	}, http.StatusCreated, &group)
	if len(group.Members) != 2 || group.Members[0].Name != "Alice" {
		t.Errorf("expected creator as first member, got %+v", group.Members)
	}

	var other service.Session
	c.token = ""
	c.must(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, http.StatusOK, &session)
	c.must(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "mallory@example.com", "password": "password123",
	}, http.StatusCreated, &other)

	c.token = other.Token
	status, env = c.do(http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil)
	if status != http.StatusForbidden || env.Error == nil || env.Error.Code != "FORBIDDEN" {
		t.Errorf("expected 403 for outsider, got %d %+v", status, env)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	c := setupServer(t, false)
	c.do(http.MethodGet, "/health", nil)

	resp, err := http.Get(c.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "splitledger_http_requests_total") {
		t.Errorf("metrics output missing request counter")
	}
}
