package docref

import (
	"fmt"

	domres "github.com/patchwell/docref/internal/domain/resolve"
	"github.com/patchwell/docref/internal/domain/resolve/filter"
)

// Spec is a fluent builder describing how one reference field resolves:
//
//	docref.Ref("author", "users").Include("name", "email")
//	docref.Ref("comments", "comments").
//		Filter(docref.FilterExpression{
//			Must: []docref.FilterCondition{{Key: "status", Match: "published"}},
//		}).
//		SortBy("created_at", true).
//		Limit(10).
//		Nested(docref.Ref("author", "users"))
type Spec struct {
	path       string
	collection string
	include    []string
	exclude    []string
	filter     *FilterExpression
	sortField  string
	sortDesc   bool
	limit      int
	nested     []*Spec
}

// Ref starts a spec resolving the reference field at path against the
// named collection.
func Ref(path, collection string) *Spec {
	return &Spec{path: path, collection: collection}
}

// Include restricts resolved documents to the named fields.
func (s *Spec) Include(fields ...string) *Spec {
	s.include = append(s.include, fields...)
	return s
}

// Exclude drops the named fields from resolved documents.
func (s *Spec) Exclude(fields ...string) *Spec {
	s.exclude = append(s.exclude, fields...)
	return s
}

// Filter excludes fetched documents failing the expression. Applies to
// sequence references.
func (s *Spec) Filter(f FilterExpression) *Spec {
	s.filter = &f
	return s
}

// SortBy orders resolved reference sequences by a field.
func (s *Spec) SortBy(field string, descending bool) *Spec {
	s.sortField = field
	s.sortDesc = descending
	return s
}

// Limit caps the resolved sequence length (0 = unlimited).
func (s *Spec) Limit(n int) *Spec {
	s.limit = n
	return s
}

// Nested resolves further reference fields on the fetched documents.
func (s *Spec) Nested(specs ...*Spec) *Spec {
	s.nested = append(s.nested, specs...)
	return s
}

func (s *Spec) build() (domres.Spec, error) {
	var opts []domres.SpecOption

	if len(s.include) > 0 || len(s.exclude) > 0 {
		p, err := domres.NewProjection(s.include, s.exclude)
		if err != nil {
			return domres.Spec{}, fmt.Errorf("spec %q: %w", s.path, err)
		}
		opts = append(opts, domres.WithProjection(p))
	}

	if s.filter != nil {
		expr, err := toFilterExpression(*s.filter)
		if err != nil {
			return domres.Spec{}, fmt.Errorf("spec %q: %w", s.path, err)
		}
		opts = append(opts, domres.WithFilter(expr))
	}

	if s.sortField != "" {
		opts = append(opts, domres.WithOrder(domres.NewOrder(s.sortField, s.sortDesc)))
	}

	if s.limit > 0 {
		opts = append(opts, domres.WithLimit(s.limit))
	}

	if len(s.nested) > 0 {
		nested, err := buildSpecs(s.nested)
		if err != nil {
			return domres.Spec{}, err
		}
		opts = append(opts, domres.WithNested(nested...))
	}

	return domres.NewSpec(s.path, s.collection, opts...)
}

func buildSpecs(specs []*Spec) ([]domres.Spec, error) {
	out := make([]domres.Spec, len(specs))
	for i, s := range specs {
		sp, err := s.build()
		if err != nil {
			return nil, err
		}
		out[i] = sp
	}
	return out, nil
}

func toFilterExpression(fe FilterExpression) (filter.Expression, error) {
	must, err := toConditions(fe.Must)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter must: %w", err)
	}
	should, err := toConditions(fe.Should)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter should: %w", err)
	}
	mustNot, err := toConditions(fe.MustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter must_not: %w", err)
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter expression: %w", err)
	}
	return expr, nil
}

func toConditions(conds []FilterCondition) ([]filter.Condition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, len(conds))
	for i, c := range conds {
		var err error
		if c.Range != nil {
			r, rerr := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
			if rerr != nil {
				return nil, fmt.Errorf("filter %q: %w", c.Key, rerr)
			}
			out[i], err = filter.NewRange(c.Key, r)
		} else {
			out[i], err = filter.NewMatch(c.Key, c.Match)
		}
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", c.Key, err)
		}
	}
	return out, nil
}
