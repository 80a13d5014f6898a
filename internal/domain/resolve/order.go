package resolve

import (
	"sort"

	"github.com/patchwell/docref/internal/domain/document"
)

// Order declares the result ordering for a resolved reference sequence.
// The zero value means store-determined order (no guarantee).
type Order struct {
	field      string
	descending bool
}

// NewOrder creates an Order on the given field.
func NewOrder(field string, descending bool) Order {
	return Order{field: field, descending: descending}
}

// Field returns the ordering field ("" when unordered).
func (o Order) Field() string { return o.field }

// Descending reports whether the order is reversed.
func (o Order) Descending() bool { return o.descending }

// IsZero reports whether no ordering was requested.
func (o Order) IsZero() bool { return o.field == "" }

// Apply sorts documents in place by the order field. The sort is stable;
// documents missing the field sort after those that have it. Strings and
// numbers compare within their own kind.
func (o Order) Apply(docs []document.Document) {
	if o.IsZero() {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if o.descending {
			return o.less(&docs[j], &docs[i])
		}
		return o.less(&docs[i], &docs[j])
	})
}

func (o Order) less(a, b *document.Document) bool {
	av, aok := a.Field(o.field)
	bv, bok := b.Field(o.field)
	if !aok || !bok {
		return aok && !bok
	}
	switch at := av.(type) {
	case string:
		if bt, ok := bv.(string); ok {
			return at < bt
		}
	case float64:
		if bn, ok := asFloat(bv); ok {
			return at < bn
		}
	case int:
		if bn, ok := asFloat(bv); ok {
			return float64(at) < bn
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
