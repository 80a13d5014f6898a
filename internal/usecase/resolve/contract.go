package resolve

import (
	"context"

	domdoc "github.com/patchwell/docref/internal/domain/document"
	domres "github.com/patchwell/docref/internal/domain/resolve"
)

// DocumentFinder fetches referenced documents from a collection in one
// batched store call. Missing identifiers are silently omitted; a store
// failure must surface as an error, never as an empty result.
type DocumentFinder interface {
	FindByIDs(ctx context.Context, collection string, ids []string, projection domres.Projection) (
		[]domdoc.Document, error,
	)
}

// Recorder observes resolution outcomes, e.g. for metrics.
type Recorder interface {
	StoreQuery(collection string)
	Resolved(collection string, count int)
	Absent(collection string, count int)
}

type noopRecorder struct{}

func (noopRecorder) StoreQuery(string)    {}
func (noopRecorder) Resolved(string, int) {}
func (noopRecorder) Absent(string, int)   {}
