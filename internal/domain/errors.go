package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid schema or field definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidSpec signals a malformed reference spec: empty path or
	// target collection, bad limit, or nesting past the depth limit.
	// Fatal to the resolve call, never retried.
	ErrInvalidSpec = errors.New("invalid reference spec")
	// ErrStoreUnavailable signals a document store failure during
	// resolution. Surfaced to the caller and never reported as an
	// absent reference.
	ErrStoreUnavailable = errors.New("store unavailable")
)
