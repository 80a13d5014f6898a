package filter

import (
	"fmt"
	"sort"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean
// semantics, evaluated in memory against fetched documents.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// CacheKey returns a canonical string form. Two expressions with the same
// CacheKey select the same documents, so their store queries can be
// coalesced. Condition order within a group is not significant.
func (e Expression) CacheKey() string {
	if e.IsEmpty() {
		return ""
	}
	var parts []string
	if s := groupKey("m", e.must); s != "" {
		parts = append(parts, s)
	}
	if s := groupKey("s", e.should); s != "" {
		parts = append(parts, s)
	}
	if s := groupKey("n", e.mustNot); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, ";")
}

func groupKey(tag string, conds []Condition) string {
	if len(conds) == 0 {
		return ""
	}
	keys := make([]string, len(conds))
	for i, c := range conds {
		keys[i] = c.cacheKey()
	}
	sort.Strings(keys)
	return tag + ":" + strings.Join(keys, "&")
}

// Matches evaluates the expression against a document's fields.
// All must conditions must hold, no must_not condition may hold, and at
// least one should condition must hold when any are present.
func (e Expression) Matches(fields map[string]any) bool {
	for _, c := range e.must {
		if !c.matches(fields) {
			return false
		}
	}
	for _, c := range e.mustNot {
		if c.matches(fields) {
			return false
		}
	}
	if len(e.should) == 0 {
		return true
	}
	for _, c := range e.should {
		if c.matches(fields) {
			return true
		}
	}
	return false
}

// Condition is a single filter clause: either an exact match or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

func (c Condition) cacheKey() string {
	if c.IsMatch() {
		return c.key + "=" + c.match
	}
	if c.rangeExpr != nil {
		return c.key + "~" + c.rangeExpr.cacheKey()
	}
	return c.key
}

func (c Condition) matches(fields map[string]any) bool {
	v, ok := fields[c.key]
	if !ok {
		return false
	}
	if c.IsMatch() {
		return matchValue(v, c.match)
	}
	if c.rangeExpr != nil {
		n, ok := numericValue(v)
		if !ok {
			return false
		}
		return c.rangeExpr.contains(n)
	}
	return false
}

// matchValue compares a field value against a match string. Strings
// compare directly; booleans compare against "true"/"false".
func matchValue(v any, match string) bool {
	switch t := v.(type) {
	case string:
		return t == match
	case bool:
		if t {
			return match == "true"
		}
		return match == "false"
	default:
		return false
	}
}

// numericValue coerces JSON numeric representations to float64.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

func (r Range) cacheKey() string {
	var b strings.Builder
	writeBound := func(tag string, v *float64) {
		if v != nil {
			fmt.Fprintf(&b, "%s%g", tag, *v)
		}
	}
	writeBound("(", r.gt)
	writeBound("[", r.gte)
	writeBound(")", r.lt)
	writeBound("]", r.lte)
	return b.String()
}

func (r Range) contains(n float64) bool {
	if r.gt != nil && !(n > *r.gt) {
		return false
	}
	if r.gte != nil && !(n >= *r.gte) {
		return false
	}
	if r.lt != nil && !(n < *r.lt) {
		return false
	}
	if r.lte != nil && !(n <= *r.lte) {
		return false
	}
	return true
}
