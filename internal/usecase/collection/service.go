package collection

import (
	"context"
	"fmt"

	"github.com/patchwell/docref/internal/domain"
	domcol "github.com/patchwell/docref/internal/domain/collection"
	"github.com/patchwell/docref/internal/domain/collection/field"
)

// Service handles collection CRUD operations.
type Service struct {
	repo Repository
	docs DocumentCounter
}

// New creates a collection service.
func New(repo Repository, docs DocumentCounter) *Service {
	return &Service{repo: repo, docs: docs}
}

// Create validates and stores a new collection schema. Reference targets
// are not required to exist yet: schemas may reference collections created
// later, or themselves.
func (s *Service) Create(ctx context.Context, name string, fields []field.Field) (domcol.Collection, error) {
	col, err := domcol.New(name, fields)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}

	if err := s.repo.Create(ctx, col); err != nil {
		return domcol.Collection{}, fmt.Errorf("create collection: %w", err)
	}

	return col, nil
}

// Update replaces a collection's schema, bumping its revision.
func (s *Service) Update(ctx context.Context, name string, fields []field.Field) (domcol.Collection, error) {
	current, err := s.repo.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}

	validated, err := domcol.New(name, fields)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}

	updated := domcol.Reconstruct(name, validated.Fields(), current.CreatedAt(), current.Revision()+1)
	if err := s.repo.Update(ctx, updated); err != nil {
		return domcol.Collection{}, fmt.Errorf("update collection: %w", err)
	}

	return updated, nil
}

// Get retrieves a collection by name.
func (s *Service) Get(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return col, nil
}

// List returns all collections.
func (s *Service) List(ctx context.Context) ([]domcol.Collection, error) {
	cols, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cols, nil
}

// Stats returns the stored document count for a collection.
func (s *Service) Stats(ctx context.Context, name string) (int, error) {
	if _, err := s.repo.Get(ctx, name); err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	count, err := s.docs.Count(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Delete removes a collection schema. Stored documents are kept; they
// become orphaned and can be removed separately.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
