package resolve

import (
	"context"
	"fmt"

	domdoc "github.com/patchwell/docref/internal/domain/document"
	domres "github.com/patchwell/docref/internal/domain/resolve"
)

// Service resolves reference fields on documents: it fetches the referenced
// documents in batched store calls and substitutes them in place of the raw
// identifiers. Each call is an independent, stateless transformation; the
// input documents are never mutated.
type Service struct {
	finder   DocumentFinder
	recorder Recorder
	maxDepth int
}

// New creates a resolver service.
func New(finder DocumentFinder) *Service {
	return &Service{
		finder:   finder,
		recorder: noopRecorder{},
		maxDepth: domres.DefaultMaxDepth,
	}
}

// WithMaxDepth configures the maximum nesting depth accepted in specs.
func (s *Service) WithMaxDepth(n int) *Service {
	if n > 0 {
		s.maxDepth = n
	}
	return s
}

// WithRecorder configures an outcome recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Resolve returns copies of docs with every reference field named by specs
// replaced by the referenced document(s). An unset or dangling reference
// resolves to null, never an error. Store failures abort the whole call:
// no partially resolved documents are returned.
func (s *Service) Resolve(
	ctx context.Context, docs []domdoc.Document, specs []domres.Spec,
) ([]domdoc.Document, error) {
	for _, sp := range specs {
		if err := sp.Validate(s.maxDepth); err != nil {
			return nil, err
		}
	}
	return s.resolveLevel(ctx, docs, specs)
}

// fetchGroup is one batched store query: specs naming the same collection
// with the same projection and filter share a group, so the store sees at
// most one query per such combination regardless of the document count.
type fetchGroup struct {
	collection string
	projection domres.Projection
	ids        []string
	seen       map[string]bool
	fetched    []domdoc.Document
}

func (s *Service) resolveLevel(
	ctx context.Context, docs []domdoc.Document, specs []domres.Spec,
) ([]domdoc.Document, error) {
	if len(docs) == 0 || len(specs) == 0 {
		return docs, nil
	}

	// Phase 1: gather every identifier each spec needs across all docs.
	groups := make(map[string]*fetchGroup)
	groupOrder := make([]*fetchGroup, 0, len(specs))
	groupOf := make([]*fetchGroup, len(specs))
	specIDs := make([]map[string]bool, len(specs))

	for i, sp := range specs {
		key := sp.Collection() + "|" + sp.Projection().CacheKey() + "|" + sp.Filter().CacheKey()
		g, ok := groups[key]
		if !ok {
			g = &fetchGroup{
				collection: sp.Collection(),
				projection: sp.Projection(),
				seen:       make(map[string]bool),
			}
			groups[key] = g
			groupOrder = append(groupOrder, g)
		}
		groupOf[i] = g

		specIDs[i] = make(map[string]bool)
		for j := range docs {
			raw, ok := docs[j].Field(sp.Path())
			if !ok {
				continue
			}
			for _, id := range rawIdentifiers(raw) {
				specIDs[i][id] = true
				if !g.seen[id] {
					g.seen[id] = true
					g.ids = append(g.ids, id)
				}
			}
		}
	}

	// Phase 2: one batched fetch per group. A group with no identifiers
	// issues no query at all.
	for _, g := range groupOrder {
		if len(g.ids) == 0 {
			continue
		}
		fetched, err := s.finder.FindByIDs(ctx, g.collection, g.ids, g.projection)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", g.collection, err)
		}
		s.recorder.StoreQuery(g.collection)
		g.fetched = fetched
	}

	out := make([]domdoc.Document, len(docs))
	copy(out, docs)

	// Phase 3: per spec, resolve nested references on the fetched
	// documents, then substitute into each input document.
	for i, sp := range specs {
		g := groupOf[i]

		candidates := make([]domdoc.Document, 0, len(specIDs[i]))
		for j := range g.fetched {
			if specIDs[i][g.fetched[j].ID()] {
				candidates = append(candidates, g.fetched[j])
			}
		}

		// The filter is evaluated on the fields as fetched, before
		// nested substitution rewrites them.
		matched := make(map[string]bool, len(candidates))
		for j := range candidates {
			matched[candidates[j].ID()] = sp.Filter().IsEmpty() ||
				sp.Filter().Matches(candidates[j].Fields())
		}

		resolved, err := s.resolveLevel(ctx, candidates, sp.Nested())
		if err != nil {
			return nil, err
		}
		byID := make(map[string]domdoc.Document, len(resolved))
		for j := range resolved {
			byID[resolved[j].ID()] = resolved[j]
		}

		for j := range out {
			raw, ok := out[j].Field(sp.Path())
			if !ok {
				continue
			}
			value, substituted := s.substitute(sp, raw, resolved, byID, matched)
			if !substituted {
				continue
			}
			out[j] = out[j].WithField(sp.Path(), value)
			s.record(sp.Collection(), value)
		}
	}

	return out, nil
}

// substitute computes the resolved value for one document's raw reference
// value. The second return is false when the value is not a reference at
// all (already resolved or foreign shape) and must be left untouched.
func (s *Service) substitute(
	sp domres.Spec, raw any,
	resolved []domdoc.Document, byID map[string]domdoc.Document, matched map[string]bool,
) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case string:
		if v == "" {
			return nil, true
		}
		target, ok := byID[v]
		if !ok {
			// Dangling reference: a silent absent outcome.
			return nil, true
		}
		return docValue(&target), true
	case []string:
		return s.sequenceValue(sp, v, resolved, matched), true
	case []any:
		ids := stringIDs(v)
		if len(ids) == 0 && len(v) > 0 {
			// No raw identifiers remain: already resolved, no-op.
			return nil, false
		}
		return s.sequenceValue(sp, ids, resolved, matched), true
	default:
		return nil, false
	}
}

// sequenceValue assembles the resolved sequence for an array reference:
// fetched documents in store order, filtered, then ordered and limited per
// the spec.
func (s *Service) sequenceValue(
	sp domres.Spec, ids []string, resolved []domdoc.Document, matched map[string]bool,
) []any {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	subset := make([]domdoc.Document, 0, len(ids))
	for j := range resolved {
		id := resolved[j].ID()
		if want[id] && matched[id] {
			subset = append(subset, resolved[j])
		}
	}

	sp.Order().Apply(subset)

	if limit := sp.Limit(); limit > 0 && len(subset) > limit {
		subset = subset[:limit]
	}

	values := make([]any, len(subset))
	for j := range subset {
		values[j] = docValue(&subset[j])
	}
	return values
}

func (s *Service) record(collection string, value any) {
	switch v := value.(type) {
	case nil:
		s.recorder.Absent(collection, 1)
	case map[string]any:
		s.recorder.Resolved(collection, 1)
	case []any:
		if len(v) == 0 {
			s.recorder.Absent(collection, 1)
			return
		}
		s.recorder.Resolved(collection, len(v))
	}
}

// docValue renders a resolved document as a plain field map with its
// identifier included, ready for substitution.
func docValue(doc *domdoc.Document) map[string]any {
	fields := doc.Fields()
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[domdoc.IDField] = doc.ID()
	return out
}

// rawIdentifiers extracts the identifiers a raw field value refers to.
func rawIdentifiers(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		ids := make([]string, 0, len(v))
		for _, id := range v {
			if id != "" {
				ids = append(ids, id)
			}
		}
		return ids
	case []any:
		return stringIDs(v)
	default:
		return nil
	}
}

func stringIDs(values []any) []string {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
