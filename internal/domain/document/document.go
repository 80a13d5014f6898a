package document

import (
	"fmt"
	"regexp"
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	reservedIDs = map[string]bool{"resolve": true, "batch": true, "collections": true}
)

// IDField is the document field name that always holds the identifier.
const IDField = "id"

// MaxFields is the maximum number of fields per document.
const MaxFields = 256

// Document is a single record: an identifier plus a mapping from field
// name to value. Reference fields hold identifiers of documents in other
// collections; after resolution they hold the referenced documents
// themselves (or nil for an absent reference).
type Document struct {
	id       string
	fields   map[string]any
	revision int
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars, not reserved. Fields: max 256,
// "id" is not a valid field name.
func New(id string, fields map[string]any) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if reservedIDs[id] {
		return Document{}, fmt.Errorf("document ID %q is reserved", id)
	}
	if len(fields) > MaxFields {
		return Document{}, fmt.Errorf("too many fields (max %d)", MaxFields)
	}
	if _, ok := fields[IDField]; ok {
		return Document{}, fmt.Errorf("field name %q is reserved", IDField)
	}

	return Document{id: id, fields: cloneFields(fields), revision: 1}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, fields map[string]any, revision int) Document {
	return Document{id: id, fields: fields, revision: revision}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Fields returns the field map. Callers must not mutate it; use
// WithField for derived copies.
func (d *Document) Fields() map[string]any { return d.fields }

// Revision returns the document revision number.
func (d *Document) Revision() int { return d.revision }

// Field returns the value at the given field name and whether it is set.
func (d *Document) Field(name string) (any, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// WithField returns a copy of the document with one field replaced.
// The receiver is left untouched; resolution works on copies only.
func (d *Document) WithField(name string, value any) Document {
	fields := cloneFields(d.fields)
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[name] = value
	return Document{id: d.id, fields: fields, revision: d.revision}
}

func cloneFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
