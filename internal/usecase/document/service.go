package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patchwell/docref/internal/domain"
	domcol "github.com/patchwell/docref/internal/domain/collection"
	"github.com/patchwell/docref/internal/domain/collection/field"
	domdoc "github.com/patchwell/docref/internal/domain/document"
)

// Service handles document CRUD with schema validation against the owning
// collection. Fields not declared in the schema pass through untouched;
// declared fields must carry a value of the declared shape.
type Service struct {
	repo            Repository
	colls           CollectionReader
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service.
func New(repo Repository, colls CollectionReader) *Service {
	return &Service{
		repo:            repo,
		colls:           colls,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or updates a document under its caller-chosen identifier.
// Returns true if the document was created, false if updated.
func (s *Service) Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (bool, error) {
	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return false, fmt.Errorf("get collection: %w", err)
	}

	if err := validateDocFields(doc, col); err != nil {
		return false, err
	}

	created, err := s.repo.Upsert(ctx, collectionName, doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	return created, nil
}

// Create stores a document under a server-generated identifier.
func (s *Service) Create(ctx context.Context, collectionName string, fields map[string]any) (domdoc.Document, error) {
	doc, err := domdoc.New(uuid.NewString(), fields)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("validate document: %w: %w", domain.ErrInvalidSchema, err)
	}

	if _, err := s.Upsert(ctx, collectionName, &doc); err != nil {
		return domdoc.Document{}, err
	}
	return doc, nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return domdoc.Document{}, fmt.Errorf("get collection: %w", err)
	}

	doc, err := s.repo.Get(ctx, collectionName, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a page of documents.
func (s *Service) List(ctx context.Context, collectionName, cursor string, limit int) (
	[]domdoc.Document, string, error,
) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, "", fmt.Errorf("get collection: %w", err)
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, next, err := s.repo.List(ctx, collectionName, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, next, nil
}

// Patch applies a partial field update. A null value removes the field.
func (s *Service) Patch(ctx context.Context, collectionName, id string, fields map[string]any) error {
	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	if len(fields) == 0 {
		return fmt.Errorf("patch has no fields: %w", domain.ErrInvalidSchema)
	}
	if _, ok := fields[domdoc.IDField]; ok {
		return fmt.Errorf("field %q cannot be patched: %w", domdoc.IDField, domain.ErrInvalidSchema)
	}
	for name, value := range fields {
		if value == nil {
			continue
		}
		if err := validateFieldValue(col, name, value); err != nil {
			return err
		}
	}

	if err := s.repo.Patch(ctx, collectionName, id, fields); err != nil {
		return fmt.Errorf("patch document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents in a collection.
func (s *Service) Count(ctx context.Context, collectionName string) (int, error) {
	n, err := s.repo.Count(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, collectionName, id string) error {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	if err := s.repo.Delete(ctx, collectionName, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// validateDocFields checks a document's declared fields against the schema.
func validateDocFields(doc *domdoc.Document, col domcol.Collection) error {
	for name, value := range doc.Fields() {
		if value == nil {
			continue
		}
		if err := validateFieldValue(col, name, value); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldValue(col domcol.Collection, name string, value any) error {
	f, ok := col.FieldByName(name)
	if !ok {
		return nil
	}

	switch f.FieldType() {
	case field.Tag:
		switch value.(type) {
		case string, bool:
			return nil
		}
		return typeError(name, "string or bool")
	case field.Numeric:
		switch value.(type) {
		case float64, float32, int, int64:
			return nil
		}
		return typeError(name, "number")
	case field.Reference:
		if _, ok := value.(string); ok {
			return nil
		}
		return typeError(name, "identifier string")
	case field.References:
		switch v := value.(type) {
		case []string:
			return nil
		case []any:
			for _, item := range v {
				if _, ok := item.(string); !ok {
					return typeError(name, "sequence of identifier strings")
				}
			}
			return nil
		}
		return typeError(name, "sequence of identifier strings")
	}
	return nil
}

func typeError(name, want string) error {
	return fmt.Errorf("field %q must be a %s: %w", name, want, domain.ErrInvalidSchema)
}
