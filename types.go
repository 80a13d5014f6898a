package docref

import (
	"time"

	dombatch "github.com/patchwell/docref/internal/domain/batch"
	domcol "github.com/patchwell/docref/internal/domain/collection"
	domdoc "github.com/patchwell/docref/internal/domain/document"
)

// FieldType declares the shape of a collection field.
type FieldType string

// Field type constants.
const (
	// FieldTag is an exact-match string field.
	FieldTag FieldType = "tag"
	// FieldNumeric is a numeric field.
	FieldNumeric FieldType = "numeric"
	// FieldReference holds the identifier of one document in another collection.
	FieldReference FieldType = "reference"
	// FieldReferences holds a sequence of identifiers into another collection.
	FieldReferences FieldType = "references"
)

// FieldInfo describes one declared collection field. Target names the
// referenced collection for reference fields.
type FieldInfo struct {
	Name   string
	Type   FieldType
	Target string
}

// Collection is a declared document schema.
type Collection struct {
	Name      string
	Fields    []FieldInfo
	CreatedAt time.Time
	Revision  int
}

// Document is a stored document: an identifier plus free-form fields.
type Document struct {
	ID       string
	Fields   map[string]any
	Revision int
}

// BatchResult reports the outcome of one item in a batch operation.
type BatchResult struct {
	ID     string
	Status string
	Err    error
}

// FilterCondition matches one document field: an exact Match or a numeric
// Range (exactly one must be set).
type FilterCondition struct {
	Key   string
	Match string
	Range *RangeFilter
}

// RangeFilter bounds a numeric field. Nil bounds are open.
type RangeFilter struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// FilterExpression combines conditions: all Must, at least one Should
// (when present), none of MustNot.
type FilterExpression struct {
	Must    []FilterCondition
	Should  []FilterCondition
	MustNot []FilterCondition
}

func fromCollection(c domcol.Collection) Collection {
	fields := make([]FieldInfo, len(c.Fields()))
	for i, f := range c.Fields() {
		fields[i] = FieldInfo{
			Name:   f.Name(),
			Type:   FieldType(f.FieldType()),
			Target: f.Target(),
		}
	}
	return Collection{
		Name:      c.Name(),
		Fields:    fields,
		CreatedAt: time.UnixMilli(c.CreatedAt()).UTC(),
		Revision:  c.Revision(),
	}
}

func fromDocument(doc *domdoc.Document) Document {
	return Document{
		ID:       doc.ID(),
		Fields:   doc.Fields(),
		Revision: doc.Revision(),
	}
}

func fromDocuments(docs []domdoc.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromDocument(&docs[i])
	}
	return out
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{ID: r.ID(), Status: string(r.Status()), Err: r.Err()}
	}
	return out
}
