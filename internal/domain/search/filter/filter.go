package filter

import (
	"fmt"
	"math"
)

// MaxConditions caps the number of predicates in one expression.
const MaxConditions = 16

// Expression is a conjunction of hard predicates. Predicates never affect
// relevance scoring and their order carries no meaning.
type Expression struct {
	conds []Condition
}

// And validates the conditions and combines them into an Expression.
// A key may appear at most once.
func And(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	seen := make(map[string]struct{}, len(conds))
	for _, c := range conds {
		if c.key == "" {
			return Expression{}, fmt.Errorf("filter key is required")
		}
		if _, dup := seen[c.key]; dup {
			return Expression{}, fmt.Errorf("duplicate condition for key %q", c.key)
		}
		seen[c.key] = struct{}{}
	}
	out := make([]Condition, len(conds))
	copy(out, conds)
	return Expression{conds: out}, nil
}

// Conditions returns the predicates in insertion order.
func (e Expression) Conditions() []Condition { return e.conds }

// IsEmpty reports whether the expression has no predicates.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// Kind distinguishes predicate shapes.
type Kind int

const (
	// KindMatch is exact equality on a tag-like field.
	KindMatch Kind = iota + 1
	// KindRange is an inclusive numeric range.
	KindRange
)

// Condition is a single hard predicate.
type Condition struct {
	key   string
	kind  Kind
	match string
	rng   Range
}

// NewMatch creates an exact equality predicate.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, kind: KindMatch, match: value}, nil
}

// NewRange creates an inclusive numeric range predicate.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindRange, rng: r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Kind returns the predicate shape.
func (c Condition) Kind() Kind { return c.kind }

// Match returns the equality value of a match predicate.
func (c Condition) Match() string { return c.match }

// Range returns the bounds of a range predicate.
func (c Condition) Range() Range { return c.rng }

// IsMatch reports whether this is a match predicate.
func (c Condition) IsMatch() bool { return c.kind == KindMatch }

// IsRange reports whether this is a range predicate.
func (c Condition) IsRange() bool { return c.kind == KindRange }

// Range is an inclusive numeric interval. An unset bound is absent,
// not a sentinel: Min() or Max() return nil for it.
type Range struct {
	min *float64
	max *float64
}

// NewInclusiveRange validates and creates a Range. At least one bound is required.
func NewInclusiveRange(lo, hi *float64) (Range, error) {
	if lo == nil && hi == nil {
		return Range{}, fmt.Errorf("at least one range bound is required")
	}
	if lo != nil && (math.IsNaN(*lo) || math.IsInf(*lo, 0)) {
		return Range{}, fmt.Errorf("lower bound must be finite")
	}
	if hi != nil && (math.IsNaN(*hi) || math.IsInf(*hi, 0)) {
		return Range{}, fmt.Errorf("upper bound must be finite")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return Range{}, fmt.Errorf("lower bound %g exceeds upper bound %g", *lo, *hi)
	}
	r := Range{}
	if lo != nil {
		v := *lo
		r.min = &v
	}
	if hi != nil {
		v := *hi
		r.max = &v
	}
	return r, nil
}

// Min returns the inclusive lower bound or nil.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound or nil.
func (r Range) Max() *float64 { return r.max }
