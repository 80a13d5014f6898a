package docref

import (
	"context"
	"fmt"

	"github.com/patchwell/docref/internal/domain"
	domdoc "github.com/patchwell/docref/internal/domain/document"
	domres "github.com/patchwell/docref/internal/domain/resolve"
	batchuc "github.com/patchwell/docref/internal/usecase/batch"
	documentuc "github.com/patchwell/docref/internal/usecase/document"
	resolveuc "github.com/patchwell/docref/internal/usecase/resolve"
)

// DocumentService performs document operations against a single collection.
type DocumentService struct {
	collection string
	docSvc     *documentuc.Service
	batchSvc   *batchuc.Service
	resolveSvc *resolveuc.Service
	finder     resolveuc.DocumentFinder
}

// Upsert creates or updates a document. Returns true if created.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (bool, error) {
	d, err := domdoc.New(doc.ID, doc.Fields)
	if err != nil {
		return false, fmt.Errorf("upsert: %w: %w", domain.ErrInvalidSchema, err)
	}
	created, err := s.docSvc.Upsert(ctx, s.collection, &d)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Create stores a document under a generated identifier.
func (s *DocumentService) Create(ctx context.Context, fields map[string]any) (Document, error) {
	doc, err := s.docSvc.Create(ctx, s.collection, fields)
	if err != nil {
		return Document{}, fmt.Errorf("create: %w", err)
	}
	return fromDocument(&doc), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (Document, error) {
	doc, err := s.docSvc.Get(ctx, s.collection, id)
	if err != nil {
		return Document{}, fmt.Errorf("get: %w", err)
	}
	return fromDocument(&doc), nil
}

// List returns a page of documents and the cursor for the next page
// ("" when exhausted). Pass an empty cursor for the first page and
// limit 0 for the default page size.
func (s *DocumentService) List(ctx context.Context, cursor string, limit int) ([]Document, string, error) {
	docs, next, err := s.docSvc.List(ctx, s.collection, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list: %w", err)
	}
	return fromDocuments(docs), next, nil
}

// Patch applies a partial field update. A nil field value removes the field.
func (s *DocumentService) Patch(ctx context.Context, id string, fields map[string]any) error {
	if err := s.docSvc.Patch(ctx, s.collection, id, fields); err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	return nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.docSvc.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *DocumentService) Count(ctx context.Context) (int, error) {
	count, err := s.docSvc.Count(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

// BatchUpsert creates or updates documents in batch, reporting per-item
// outcomes. One failing item never aborts the rest.
func (s *DocumentService) BatchUpsert(ctx context.Context, docs []Document) ([]BatchResult, error) {
	items := make([]domdoc.Document, len(docs))
	for i, doc := range docs {
		d, err := domdoc.New(doc.ID, doc.Fields)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w: %w", i, domain.ErrInvalidSchema, err)
		}
		items[i] = d
	}
	return fromBatchResults(s.batchSvc.Upsert(ctx, s.collection, items)), nil
}

// BatchDelete removes documents in batch, reporting per-item outcomes.
func (s *DocumentService) BatchDelete(ctx context.Context, ids []string) ([]BatchResult, error) {
	return fromBatchResults(s.batchSvc.Delete(ctx, s.collection, ids)), nil
}

// Resolve fetches the named documents and substitutes their reference
// fields per the given specs. Unset and dangling references resolve to
// nil, never an error.
func (s *DocumentService) Resolve(ctx context.Context, ids []string, specs ...*Spec) ([]Document, error) {
	domSpecs, err := buildSpecs(specs)
	if err != nil {
		return nil, err
	}

	docs, err := s.finder.FindByIDs(ctx, s.collection, ids, domres.Projection{})
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	resolved, err := s.resolveSvc.Resolve(ctx, docs, domSpecs)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return fromDocuments(resolved), nil
}

// ResolveOne resolves reference fields on a single document.
func (s *DocumentService) ResolveOne(ctx context.Context, id string, specs ...*Spec) (Document, error) {
	domSpecs, err := buildSpecs(specs)
	if err != nil {
		return Document{}, err
	}

	doc, err := s.docSvc.Get(ctx, s.collection, id)
	if err != nil {
		return Document{}, fmt.Errorf("resolve: %w", err)
	}

	resolved, err := s.resolveSvc.Resolve(ctx, []domdoc.Document{doc}, domSpecs)
	if err != nil {
		return Document{}, fmt.Errorf("resolve: %w", err)
	}
	return fromDocument(&resolved[0]), nil
}
