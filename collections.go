package docref

import (
	"context"
	"errors"
	"fmt"

	"github.com/patchwell/docref/internal/domain"
	"github.com/patchwell/docref/internal/domain/collection/field"
	collectionuc "github.com/patchwell/docref/internal/usecase/collection"
)

// CollectionService manages collection schemas.
type CollectionService struct {
	svc *collectionuc.Service
}

// Create declares a new collection schema.
func (s *CollectionService) Create(ctx context.Context, name string, fields ...FieldInfo) (Collection, error) {
	defs, err := toFields(fields)
	if err != nil {
		return Collection{}, fmt.Errorf("create %q: %w", name, err)
	}
	col, err := s.svc.Create(ctx, name, defs)
	if err != nil {
		return Collection{}, fmt.Errorf("create %q: %w", name, err)
	}
	return fromCollection(col), nil
}

// Ensure creates the collection if it does not exist (idempotent). An
// existing collection is returned as-is; its schema is not compared.
func (s *CollectionService) Ensure(ctx context.Context, name string, fields ...FieldInfo) (Collection, error) {
	col, err := s.Create(ctx, name, fields...)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return s.Get(ctx, name)
	}
	return col, err
}

// Update replaces a collection's schema, bumping its revision.
func (s *CollectionService) Update(ctx context.Context, name string, fields ...FieldInfo) (Collection, error) {
	defs, err := toFields(fields)
	if err != nil {
		return Collection{}, fmt.Errorf("update %q: %w", name, err)
	}
	col, err := s.svc.Update(ctx, name, defs)
	if err != nil {
		return Collection{}, fmt.Errorf("update %q: %w", name, err)
	}
	return fromCollection(col), nil
}

// Get retrieves a collection schema by name.
func (s *CollectionService) Get(ctx context.Context, name string) (Collection, error) {
	col, err := s.svc.Get(ctx, name)
	if err != nil {
		return Collection{}, fmt.Errorf("get %q: %w", name, err)
	}
	return fromCollection(col), nil
}

// List returns all declared collections.
func (s *CollectionService) List(ctx context.Context) ([]Collection, error) {
	cols, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]Collection, len(cols))
	for i, c := range cols {
		out[i] = fromCollection(c)
	}
	return out, nil
}

// Stats returns the stored document count for a collection.
func (s *CollectionService) Stats(ctx context.Context, name string) (int, error) {
	count, err := s.svc.Stats(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("stats %q: %w", name, err)
	}
	return count, nil
}

// Delete removes a collection schema. Stored documents are kept.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	if err := s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

func toFields(infos []FieldInfo) ([]field.Field, error) {
	out := make([]field.Field, len(infos))
	for i, info := range infos {
		f, err := field.New(info.Name, field.Type(info.Type), info.Target)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w: %w", info.Name, domain.ErrInvalidSchema, err)
		}
		out[i] = f
	}
	return out, nil
}
