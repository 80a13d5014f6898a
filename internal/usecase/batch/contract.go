package batch

import (
	"context"

	domdoc "github.com/patchwell/docref/internal/domain/document"
)

// DocumentUpserter stores one document with schema validation.
type DocumentUpserter interface {
	Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (created bool, err error)
}

// DocumentDeleter removes one document.
type DocumentDeleter interface {
	Delete(ctx context.Context, collectionName, id string) error
}
