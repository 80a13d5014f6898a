package collection

import (
	"context"
	"fmt"
	"sort"

	"github.com/patchwell/docref/internal/domain"
	domcol "github.com/patchwell/docref/internal/domain/collection"
)

// metaKeyPrefix namespaces collection metadata hashes in the store.
const metaKeyPrefix = "collection:"

// store is the consumer interface for collection metadata (ISP).
type store interface {
	PutMeta(ctx context.Context, key string, fields map[string]string) error
	GetMeta(ctx context.Context, key string) (map[string]string, error)
	ListMeta(ctx context.Context, prefix string) ([]map[string]string, error)
	DeleteMeta(ctx context.Context, key string) error
	MetaExists(ctx context.Context, key string) (bool, error)
}

// Repo implements usecase/collection.Repository.
type Repo struct {
	store store
}

// New creates a collection repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a collection's schema. Fails if the name is taken.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	key := metaKey(col.Name())

	exists, err := r.store.MetaExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	hashData, err := collectionToHash(col)
	if err != nil {
		return err
	}

	if err := r.store.PutMeta(ctx, key, hashData); err != nil {
		return fmt.Errorf("put collection %s: %w", col.Name(), err)
	}
	return nil
}

// Update overwrites a collection's schema. Fails if it does not exist.
func (r *Repo) Update(ctx context.Context, col domcol.Collection) error {
	key := metaKey(col.Name())

	exists, err := r.store.MetaExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	hashData, err := collectionToHash(col)
	if err != nil {
		return err
	}

	if err := r.store.PutMeta(ctx, key, hashData); err != nil {
		return fmt.Errorf("put collection %s: %w", col.Name(), err)
	}
	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.GetMeta(ctx, metaKey(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}

	return collectionFromHash(m)
}

// List returns all collections sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domcol.Collection, error) {
	results, err := r.store.ListMeta(ctx, metaKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	collections := make([]domcol.Collection, 0, len(results))
	for _, m := range results {
		col, err := collectionFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", m["name"], err)
		}
		collections = append(collections, col)
	}

	sort.Slice(collections, func(i, j int) bool {
		return collections[i].CreatedAt() < collections[j].CreatedAt()
	})

	return collections, nil
}

// Exists reports whether a collection is registered.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := r.store.MetaExists(ctx, metaKey(name))
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", name, err)
	}
	return exists, nil
}

// Delete removes a collection's schema.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := metaKey(name)

	exists, err := r.store.MetaExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.DeleteMeta(ctx, key); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

func metaKey(name string) string {
	return metaKeyPrefix + name
}
