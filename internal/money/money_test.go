package money

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want Cents
	}{
		{0, 0},
		{12.34, 1234},
		{0.1 + 0.2, 30},
		{12.345, 1235},
		{12.344, 1234},
		{-12.345, -1235},
		{33.333333, 3333},
		{100, 10000},
	}

	for _, tt := range tests {
		if got := FromFloat(tt.in); got != tt.want {
			t.Errorf("FromFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{" 7 ", 700, false},
		{"0.005", 1, false},
		{"-0.005", -1, false},
		{"12.346", 1235, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   Cents
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1250, "12.50"},
		{-1250, "-12.50"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Cents `json:"amount"`
	}

	out, err := json.Marshal(payload{Amount: 4250})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"amount":42.50}` {
		t.Errorf("Marshal = %s", out)
	}

	for _, in := range []string{`{"amount":42.5}`, `{"amount":"42.50"}`, `{"amount":42.499}`} {
		var p payload
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		if p.Amount != 4250 {
			t.Errorf("Unmarshal(%s) = %d, want 4250", in, p.Amount)
		}
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"amount":"nope"}`), &p); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestAbsAndFloat(t *testing.T) {
	if got := Cents(-42).Abs(); got != 42 {
		t.Errorf("Abs = %d, want 42", got)
	}
	if got := Cents(1999).Float(); got != 19.99 {
		t.Errorf("Float = %v, want 19.99", got)
	}
}
