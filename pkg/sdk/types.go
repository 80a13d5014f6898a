package sdk

import "time"

// FieldDefinition describes one schema field of a collection.
// Type is one of "tag", "numeric", "reference", "references"; reference
// types name their target collection.
type FieldDefinition struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
}

// Collection is a collection schema as reported by the server.
type Collection struct {
	Name          string            `json:"name"`
	Fields        []FieldDefinition `json:"fields,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Revision      int               `json:"revision"`
	DocumentCount *int              `json:"document_count,omitempty"`
}

// Document is a stored document.
type Document struct {
	ID       string         `json:"id"`
	Fields   map[string]any `json:"fields"`
	Revision int            `json:"revision"`
}

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Items      []Document `json:"items"`
	HasMore    bool       `json:"has_more"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// BatchItem is one document in a batch upsert.
type BatchItem struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// BatchResult reports the outcome of one batch item.
type BatchResult struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Error  *APIError `json:"error,omitempty"`
}

// BatchOutcome aggregates per-item batch results.
type BatchOutcome struct {
	Items     []BatchResult `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// Spec describes how one reference field is resolved. Path names the
// field holding the reference; Collection names where referenced
// documents live. Zero-value optional parts are omitted from the request.
type Spec struct {
	Path       string      `json:"path"`
	Collection string      `json:"collection"`
	Projection *Projection `json:"projection,omitempty"`
	Filter     *Filter     `json:"filter,omitempty"`
	Sort       *Sort       `json:"sort,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Nested     []Spec      `json:"nested,omitempty"`
}

// Projection limits resolved documents to (or strips) the named fields.
// Include and Exclude are mutually exclusive.
type Projection struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Filter keeps only resolved documents matching the expression.
type Filter struct {
	Must    []Condition `json:"must,omitempty"`
	Should  []Condition `json:"should,omitempty"`
	MustNot []Condition `json:"must_not,omitempty"`
}

// Condition is a single match or range check on a document field.
type Condition struct {
	Key   string  `json:"key"`
	Match *string `json:"match,omitempty"`
	Range *Range  `json:"range,omitempty"`
}

// Range bounds a numeric field. At least one bound must be set.
type Range struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// Sort orders resolved multi-reference documents by a field.
type Sort struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}
