package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const snapshotJSON = `{
  "members": [
    {"id": "a", "name": "Alice"},
    {"id": "b", "name": "Bob"},
    {"id": "c", "name": "Carol"}
  ],
  "expenses": [
    {"id": "e1", "amount": 90, "paid_by": "a",
     "splits": [{"member_id": "a", "amount": 30}, {"member_id": "b", "amount": 30}, {"member_id": "c", "amount": 30}]}
  ],
  "settlements": [
    {"id": "s1", "from": "b", "to": "a", "amount": "10.00"}
  ]
}`

func runBalances(t *testing.T, args ...string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	if err := os.WriteFile(path, []byte(snapshotJSON), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	cmd := balancesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--file", path}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("balances failed: %v", err)
	}
	return out.String()
}

func TestBalancesTable(t *testing.T) {
	out := runBalances(t, "--simplify")

	for _, want := range []string{
		"MEMBER",
		"50.00",
		"Suggested transfers:",
		"Carol",
		"30.00",
		"20.00",
		"Simplified plan:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	transfers := out[strings.Index(out, "Suggested transfers:"):]
	if strings.Index(transfers, "Carol") > strings.Index(transfers, "Bob") {
		t.Errorf("expected larger transfer first:\n%s", out)
	}
}

func TestBalancesMatrix(t *testing.T) {
	out := runBalances(t, "--matrix")

	idx := strings.Index(out, "Debt matrix:")
	if idx < 0 {
		t.Fatalf("matrix section missing:\n%s", out)
	}
	matrix := out[idx:]
	for _, want := range []string{"Bob", "Carol", "Alice", "20.00", "30.00"} {
		if !strings.Contains(matrix, want) {
			t.Errorf("matrix missing %q:\n%s", want, matrix)
		}
	}
	if strings.Index(matrix, "Bob") > strings.Index(matrix, "Carol") {
		t.Errorf("expected debtors in member order:\n%s", matrix)
	}
	if strings.Contains(runBalances(t), "Debt matrix:") {
		t.Error("matrix printed without --matrix")
	}
}

func TestBalancesJSON(t *testing.T) {
	out := runBalances(t, "--json")

	var got struct {
		Suggestions []struct {
			From   string  `json:"from"`
			Amount float64 `json:"amount"`
		} `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(got.Suggestions) != 2 || got.Suggestions[0].From != "c" || got.Suggestions[0].Amount != 30 {
		t.Errorf("unexpected suggestions: %+v", got.Suggestions)
	}
}

func TestBalancesStdin(t *testing.T) {
	cmd := balancesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`{"members": [{"id": "a", "name": "Alice"}]}`))
	cmd.SetArgs([]string{"-f", "-"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("balances failed: %v", err)
	}
	if !strings.Contains(out.String(), "All settled up.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestBalancesMissingFile(t *testing.T) {
	cmd := balancesCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-f", filepath.Join(t.TempDir(), "nope.json")})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for a missing file")
	}
}
