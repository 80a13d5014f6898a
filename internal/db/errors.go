package db

import "errors"

// Sentinel errors for storage operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrKeyExists   = errors.New("db: key already exists")
)

// Op constants name the underlying storage command for error context.
const (
	OpPutDocument    = "PUT_DOCUMENT"
	OpGetDocument    = "GET_DOCUMENT"
	OpGetDocuments   = "GET_DOCUMENTS"
	OpDeleteDocument = "DELETE_DOCUMENT"
	OpExists         = "EXISTS"
	OpListDocuments  = "LIST_DOCUMENTS"
	OpCountDocuments = "COUNT_DOCUMENTS"
	OpPutMeta        = "PUT_META"
	OpGetMeta        = "GET_META"
	OpListMeta       = "LIST_META"
	OpDeleteMeta     = "DELETE_META"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
