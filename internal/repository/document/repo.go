package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/patchwell/docref/internal/db"
	"github.com/patchwell/docref/internal/domain"
	domdoc "github.com/patchwell/docref/internal/domain/document"
	"github.com/patchwell/docref/internal/domain/resolve"
)

// store is the consumer interface for documents (ISP).
type store interface {
	PutDocument(ctx context.Context, collection, id string, data []byte) error
	GetDocument(ctx context.Context, collection, id string) ([]byte, error)
	GetDocuments(ctx context.Context, collection string, ids []string) ([]db.Entry, error)
	DeleteDocument(ctx context.Context, collection, id string) error
	DocumentExists(ctx context.Context, collection, id string) (bool, error)
	ListDocuments(ctx context.Context, collection string, offset, limit int) ([]db.Entry, error)
	CountDocuments(ctx context.Context, collection string) (int, error)
}

// Repo implements usecase/document.Repository and usecase/resolve.DocumentFinder.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert creates or updates a document. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (bool, error) {
	data, err := buildPayload(doc)
	if err != nil {
		return false, err
	}

	exists, err := r.store.DocumentExists(ctx, collectionName, doc.ID())
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", doc.ID(), err)
	}

	if err := r.store.PutDocument(ctx, collectionName, doc.ID(), data); err != nil {
		return false, fmt.Errorf("put document %s: %w", doc.ID(), err)
	}

	return !exists, nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	raw, err := r.store.GetDocument(ctx, collectionName, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return parsePayload(id, raw)
}

// List returns documents with cursor-based pagination.
func (r *Repo) List(ctx context.Context, collectionName, cursor string, limit int) (
	[]domdoc.Document, string, error,
) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w: %w", cursor, domain.ErrInvalidSchema, err)
		}
		offset = parsed
	}

	// Fetch one past the page to detect whether a next page exists.
	entries, err := r.store.ListDocuments(ctx, collectionName, offset, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("list documents %s: %w", collectionName, err)
	}

	docs := make([]domdoc.Document, 0, limit)
	for i, entry := range entries {
		if i >= limit {
			break
		}
		doc, err := parsePayload(entry.ID, entry.Data)
		if err != nil {
			return nil, "", err
		}
		docs = append(docs, doc)
	}

	var nextCursor string
	if len(entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}

	return docs, nextCursor, nil
}

// Count returns the number of documents in a collection.
func (r *Repo) Count(ctx context.Context, collectionName string) (int, error) {
	n, err := r.store.CountDocuments(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("count documents %s: %w", collectionName, err)
	}
	return n, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, collectionName, id string) error {
	exists, err := r.store.DocumentExists(ctx, collectionName, id)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", id, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.DeleteDocument(ctx, collectionName, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Patch performs a partial update: get, merge fields, put.
// A nil field value removes the field.
func (r *Repo) Patch(ctx context.Context, collectionName, id string, fields map[string]any) error {
	current, err := r.Get(ctx, collectionName, id)
	if err != nil {
		return err
	}

	merged := make(map[string]any, len(current.Fields())+len(fields))
	for k, v := range current.Fields() {
		merged[k] = v
	}
	for k, v := range fields {
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}

	updated := domdoc.Reconstruct(id, merged, current.Revision()+1)
	data, err := buildPayload(&updated)
	if err != nil {
		return err
	}

	if err := r.store.PutDocument(ctx, collectionName, id, data); err != nil {
		return fmt.Errorf("put patched document %s: %w", id, err)
	}
	return nil
}

// FindByIDs fetches documents by identifier in one batched store call and
// applies the projection. Missing identifiers are silently omitted; any
// store failure surfaces as ErrStoreUnavailable, never as an empty result.
func (r *Repo) FindByIDs(
	ctx context.Context, collectionName string, ids []string, projection resolve.Projection,
) ([]domdoc.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	entries, err := r.store.GetDocuments(ctx, collectionName, ids)
	if err != nil {
		return nil, fmt.Errorf("find %s by ids: %w: %w", collectionName, domain.ErrStoreUnavailable, err)
	}

	docs := make([]domdoc.Document, 0, len(entries))
	for _, entry := range entries {
		doc, err := parsePayload(entry.ID, entry.Data)
		if err != nil {
			return nil, fmt.Errorf("find %s by ids: %w: %w", collectionName, domain.ErrStoreUnavailable, err)
		}
		if !projection.IsEmpty() {
			doc = domdoc.Reconstruct(doc.ID(), projection.Apply(doc.Fields()), doc.Revision())
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
