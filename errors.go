package docref

import "github.com/patchwell/docref/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrInvalidSchema    = domain.ErrInvalidSchema
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrInvalidSpec      = domain.ErrInvalidSpec
	ErrStoreUnavailable = domain.ErrStoreUnavailable
)
