package filter

import (
	"math"
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestNewInclusiveRange_Valid(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi *float64
	}{
		{"lower only", floatPtr(10), nil},
		{"upper only", nil, floatPtr(100)},
		{"both", floatPtr(10), floatPtr(100)},
		{"zero lower", floatPtr(0), nil},
		{"equal bounds", floatPtr(5), floatPtr(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewInclusiveRange(tt.lo, tt.hi)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.Min() == nil) != (tt.lo == nil) {
				t.Error("Min() presence mismatch")
			}
			if (r.Max() == nil) != (tt.hi == nil) {
				t.Error("Max() presence mismatch")
			}
		})
	}
}

func TestNewInclusiveRange_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  *float64
		wantErr string
	}{
		{"no bounds", nil, nil, "at least one"},
		{"inverted", floatPtr(10), floatPtr(1), "exceeds"},
		{"nan lower", floatPtr(math.NaN()), nil, "finite"},
		{"inf upper", nil, floatPtr(math.Inf(1)), "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInclusiveRange(tt.lo, tt.hi)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewInclusiveRange_CopiesBounds(t *testing.T) {
	lo := 3.0
	r, err := NewInclusiveRange(&lo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lo = 99
	if *r.Min() != 3 {
		t.Errorf("Min() = %g, want 3 (caller mutation leaked)", *r.Min())
	}
}

func TestNewMatch(t *testing.T) {
	c, err := NewMatch("category", "electronics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsMatch() || c.IsRange() {
		t.Error("expected match condition")
	}
	if c.Key() != "category" || c.Match() != "electronics" {
		t.Errorf("got %s=%s", c.Key(), c.Match())
	}

	if _, err := NewMatch("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("brand", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestAnd(t *testing.T) {
	cat, _ := NewMatch("category", "books")
	r, _ := NewInclusiveRange(floatPtr(0), nil)
	price, _ := NewRange("price", r)

	expr, err := And(cat, price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.IsEmpty() {
		t.Fatal("expression should not be empty")
	}
	if len(expr.Conditions()) != 2 {
		t.Fatalf("conditions = %d, want 2", len(expr.Conditions()))
	}
	if got := expr.Conditions()[1]; got.Key() != "price" || !got.IsRange() || *got.Range().Min() != 0 {
		t.Errorf("second condition = %+v", got)
	}
}

func TestAnd_Duplicate(t *testing.T) {
	a, _ := NewMatch("brand", "sony")
	b, _ := NewMatch("brand", "apple")
	if _, err := And(a, b); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestAnd_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewMatch(strings.Repeat("k", i+1), "v")
	}
	if _, err := And(conds...); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnd_Empty(t *testing.T) {
	expr, err := And()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsEmpty() {
		t.Error("expected empty expression")
	}
}
