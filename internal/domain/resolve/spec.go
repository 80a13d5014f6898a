package resolve

import (
	"fmt"

	"github.com/patchwell/docref/internal/domain"
	"github.com/patchwell/docref/internal/domain/resolve/filter"
)

// DefaultMaxDepth bounds reference-spec nesting when no limit is configured.
const DefaultMaxDepth = 8

// Spec declares how one reference field is resolved: the field path, the
// target collection, an optional projection over returned fields, an
// optional filter and ordering for sequence references, an optional
// result-count limit, and nested specs applied to the fetched documents.
type Spec struct {
	path       string
	collection string
	projection Projection
	filter     filter.Expression
	order      Order
	limit      int
	nested     []Spec
}

// NewSpec validates and creates a Spec. Path and target collection are
// required; limit must be non-negative (0 = unlimited).
func NewSpec(path, collection string, opts ...SpecOption) (Spec, error) {
	s := Spec{path: path, collection: collection}
	for _, o := range opts {
		o(&s)
	}
	if err := s.validate(1, 0); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// SpecOption configures optional Spec parts.
type SpecOption func(*Spec)

// WithProjection restricts the fields of resolved documents.
func WithProjection(p Projection) SpecOption {
	return func(s *Spec) { s.projection = p }
}

// WithFilter excludes fetched documents failing the expression.
func WithFilter(f filter.Expression) SpecOption {
	return func(s *Spec) { s.filter = f }
}

// WithOrder sorts resolved reference sequences.
func WithOrder(o Order) SpecOption {
	return func(s *Spec) { s.order = o }
}

// WithLimit caps the resolved sequence length (0 = unlimited).
func WithLimit(n int) SpecOption {
	return func(s *Spec) { s.limit = n }
}

// WithNested resolves further references on the fetched documents.
func WithNested(nested ...Spec) SpecOption {
	return func(s *Spec) { s.nested = nested }
}

// Path returns the reference field path.
func (s Spec) Path() string { return s.path }

// Collection returns the target collection name.
func (s Spec) Collection() string { return s.collection }

// Projection returns the field projection.
func (s Spec) Projection() Projection { return s.projection }

// Filter returns the filter expression.
func (s Spec) Filter() filter.Expression { return s.filter }

// Order returns the requested result ordering.
func (s Spec) Order() Order { return s.order }

// Limit returns the result-count limit (0 = unlimited).
func (s Spec) Limit() int { return s.limit }

// Nested returns the nested specs.
func (s Spec) Nested() []Spec { return s.nested }

// Validate checks the spec tree against a nesting depth limit.
// maxDepth <= 0 falls back to DefaultMaxDepth.
func (s Spec) Validate(maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return s.validate(1, maxDepth)
}

func (s Spec) validate(depth, maxDepth int) error {
	if s.path == "" {
		return fmt.Errorf("spec path is required: %w", domain.ErrInvalidSpec)
	}
	if s.collection == "" {
		return fmt.Errorf("spec %q: target collection is required: %w", s.path, domain.ErrInvalidSpec)
	}
	if s.limit < 0 {
		return fmt.Errorf("spec %q: limit must be non-negative: %w", s.path, domain.ErrInvalidSpec)
	}
	if maxDepth > 0 && depth > maxDepth {
		return fmt.Errorf("spec %q: nesting exceeds max depth %d: %w", s.path, maxDepth, domain.ErrInvalidSpec)
	}
	for _, n := range s.nested {
		if err := n.validate(depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
