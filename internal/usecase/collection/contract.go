package collection

import (
	"context"

	domcol "github.com/patchwell/docref/internal/domain/collection"
)

// Repository defines the storage contract for collection schemas.
type Repository interface {
	Create(ctx context.Context, col domcol.Collection) error
	Update(ctx context.Context, col domcol.Collection) error
	Get(ctx context.Context, name string) (domcol.Collection, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, name string) error
}

// DocumentCounter counts stored documents, for stats.
type DocumentCounter interface {
	Count(ctx context.Context, collectionName string) (int, error)
}
