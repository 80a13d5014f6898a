package field

import "fmt"

// Type is the declared type of a collection field.
type Type string

// Field type constants.
const (
	// Tag is an exact-match string field.
	Tag Type = "tag"
	// Numeric is a float64 field.
	Numeric Type = "numeric"
	// Reference holds the identifier of one document in a target collection.
	Reference Type = "reference"
	// References holds a sequence of identifiers into a target collection.
	References Type = "references"
)

var reservedFieldNames = map[string]bool{
	"id": true, "revision": true,
}

// Field is an immutable value object describing a declared collection field.
// Reference and References fields carry the target collection name.
type Field struct {
	name      string
	fieldType Type
	target    string
}

// New validates and creates a Field.
// Name must be non-empty, max 64 chars, and not reserved. Reference types
// require a target collection; scalar types must not have one.
func New(name string, ft Type, target string) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	switch ft {
	case Tag, Numeric:
		if target != "" {
			return Field{}, fmt.Errorf("field %q: target collection is only valid for reference fields", name)
		}
	case Reference, References:
		if target == "" {
			return Field{}, fmt.Errorf("field %q: reference field requires a target collection", name)
		}
	default:
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft, target: target}, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, ft Type, target string) Field {
	return Field{name: name, fieldType: ft, target: target}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the declared field type.
func (f Field) FieldType() Type { return f.fieldType }

// Target returns the target collection for reference fields ("" otherwise).
func (f Field) Target() string { return f.target }

// IsReference reports whether the field holds one or many references.
func (f Field) IsReference() bool {
	return f.fieldType == Reference || f.fieldType == References
}
