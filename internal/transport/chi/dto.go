package chi

import (
	"errors"
	"fmt"
	"time"

	"github.com/patchwell/docref/internal/domain"
	dombatch "github.com/patchwell/docref/internal/domain/batch"
	domcol "github.com/patchwell/docref/internal/domain/collection"
	"github.com/patchwell/docref/internal/domain/collection/field"
	domdoc "github.com/patchwell/docref/internal/domain/document"
	domres "github.com/patchwell/docref/internal/domain/resolve"
	"github.com/patchwell/docref/internal/domain/resolve/filter"
)

type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeUnauthorized       errorCode = "unauthorized"
	codeValidationFailed   errorCode = "validation_failed"
	codeInvalidSpec        errorCode = "invalid_spec"
	codeCollectionNotFound errorCode = "collection_not_found"
	codeDocumentNotFound   errorCode = "document_not_found"
	codeAlreadyExists      errorCode = "collection_already_exists"
	codeStoreUnavailable   errorCode = "store_unavailable"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// --- collections ---

type fieldDefinition struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
}

type upsertCollectionRequest struct {
	Fields []fieldDefinition `json:"fields"`
}

type collectionResponse struct {
	Name          string            `json:"name"`
	Fields        []fieldDefinition `json:"fields,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Revision      int               `json:"revision"`
	DocumentCount *int              `json:"document_count,omitempty"`
}

type collectionListResponse struct {
	Items []collectionResponse `json:"items"`
}

func fieldsFromWire(defs []fieldDefinition) ([]field.Field, error) {
	fields := make([]field.Field, len(defs))
	for i, d := range defs {
		f, err := field.New(d.Name, field.Type(d.Type), d.Target)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", d.Name, err)
		}
		fields[i] = f
	}
	return fields, nil
}

func collectionToWire(c domcol.Collection) collectionResponse {
	var defs []fieldDefinition
	if len(c.Fields()) > 0 {
		defs = make([]fieldDefinition, len(c.Fields()))
		for i, f := range c.Fields() {
			defs[i] = fieldDefinition{
				Name:   f.Name(),
				Type:   string(f.FieldType()),
				Target: f.Target(),
			}
		}
	}
	return collectionResponse{
		Name:      c.Name(),
		Fields:    defs,
		CreatedAt: time.UnixMilli(c.CreatedAt()).UTC(),
		Revision:  c.Revision(),
	}
}

// --- documents ---

type upsertDocumentRequest struct {
	Fields map[string]any `json:"fields"`
}

type createDocumentRequest struct {
	Fields map[string]any `json:"fields"`
}

type patchDocumentRequest struct {
	Fields map[string]any `json:"fields"`
}

type documentResponse struct {
	ID       string         `json:"id"`
	Fields   map[string]any `json:"fields"`
	Revision int            `json:"revision"`
}

type documentListResponse struct {
	Items      []documentResponse `json:"items"`
	HasMore    bool               `json:"has_more"`
	NextCursor *string            `json:"next_cursor,omitempty"`
}

func documentToWire(doc *domdoc.Document) documentResponse {
	fields := doc.Fields()
	if fields == nil {
		fields = map[string]any{}
	}
	return documentResponse{
		ID:       doc.ID(),
		Fields:   fields,
		Revision: doc.Revision(),
	}
}

// --- batch ---

type batchDocumentItem struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type batchUpsertRequest struct {
	Documents []batchDocumentItem `json:"documents"`
}

type batchDeleteRequest struct {
	IDs []string `json:"ids"`
}

type batchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *errorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Items     []batchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

func batchResultToWire(r dombatch.Result) batchResultItem {
	item := batchResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		item.Error = &errorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) errorCode {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return codeDocumentNotFound
	case errors.Is(err, domain.ErrNotFound):
		return codeCollectionNotFound
	case errors.Is(err, domain.ErrInvalidSchema):
		return codeValidationFailed
	case errors.Is(err, domain.ErrStoreUnavailable):
		return codeStoreUnavailable
	default:
		return codeInternalError
	}
}

// --- resolve ---

type resolveRequest struct {
	IDs   []string   `json:"ids"`
	Specs []specBody `json:"specs"`
}

type resolveDocumentRequest struct {
	Specs []specBody `json:"specs"`
}

type specBody struct {
	Path       string          `json:"path"`
	Collection string          `json:"collection"`
	Projection *projectionBody `json:"projection,omitempty"`
	Filter     *filterBody     `json:"filter,omitempty"`
	Sort       *sortBody       `json:"sort,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Nested     []specBody      `json:"nested,omitempty"`
}

type projectionBody struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

type filterBody struct {
	Must    []conditionBody `json:"must,omitempty"`
	Should  []conditionBody `json:"should,omitempty"`
	MustNot []conditionBody `json:"must_not,omitempty"`
}

type conditionBody struct {
	Key   string     `json:"key"`
	Match *string    `json:"match,omitempty"`
	Range *rangeBody `json:"range,omitempty"`
}

type rangeBody struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

type sortBody struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

type resolveResponse struct {
	Items []documentResponse `json:"items"`
}

func specsFromWire(bodies []specBody) ([]domres.Spec, error) {
	specs := make([]domres.Spec, len(bodies))
	for i, b := range bodies {
		sp, err := specFromWire(b)
		if err != nil {
			return nil, err
		}
		specs[i] = sp
	}
	return specs, nil
}

func specFromWire(b specBody) (domres.Spec, error) {
	var opts []domres.SpecOption

	if b.Projection != nil {
		p, err := domres.NewProjection(b.Projection.Include, b.Projection.Exclude)
		if err != nil {
			return domres.Spec{}, fmt.Errorf("spec %q: %w: %w", b.Path, domain.ErrInvalidSpec, err)
		}
		opts = append(opts, domres.WithProjection(p))
	}

	if b.Filter != nil {
		expr, err := filterFromWire(b.Filter)
		if err != nil {
			return domres.Spec{}, fmt.Errorf("spec %q: %w: %w", b.Path, domain.ErrInvalidSpec, err)
		}
		opts = append(opts, domres.WithFilter(expr))
	}

	if b.Sort != nil {
		opts = append(opts, domres.WithOrder(domres.NewOrder(b.Sort.Field, b.Sort.Descending)))
	}

	if b.Limit > 0 {
		opts = append(opts, domres.WithLimit(b.Limit))
	}

	if len(b.Nested) > 0 {
		nested, err := specsFromWire(b.Nested)
		if err != nil {
			return domres.Spec{}, err
		}
		opts = append(opts, domres.WithNested(nested...))
	}

	return domres.NewSpec(b.Path, b.Collection, opts...)
}

func filterFromWire(f *filterBody) (filter.Expression, error) {
	must, err := conditionsFromWire(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromWire(f.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromWire(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.NewExpression(must, should, mustNot)
}

func conditionsFromWire(cs []conditionBody) ([]filter.Condition, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := conditionFromWire(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFromWire(c conditionBody) (filter.Condition, error) {
	if c.Match != nil && c.Range != nil {
		return filter.Condition{},
			fmt.Errorf("filter condition for %q must have match or range, not both", c.Key)
	}
	if c.Match != nil {
		return filter.NewMatch(c.Key, *c.Match)
	}
	if c.Range != nil {
		r, err := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter: %w", err)
		}
		return filter.NewRange(c.Key, r)
	}
	return filter.Condition{}, errors.New("filter condition must have either match or range")
}
