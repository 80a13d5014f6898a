package document

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/patchwell/docref/internal/db"
	domdoc "github.com/patchwell/docref/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	putFn     func(ctx context.Context, collection, id string, data []byte) error
	getFn     func(ctx context.Context, collection, id string) ([]byte, error)
	getManyFn func(ctx context.Context, collection string, ids []string) ([]db.Entry, error)
	deleteFn  func(ctx context.Context, collection, id string) error
	existsFn  func(ctx context.Context, collection, id string) (bool, error)
	listFn    func(ctx context.Context, collection string, offset, limit int) ([]db.Entry, error)
	countFn   func(ctx context.Context, collection string) (int, error)
}

func (m *mockStore) PutDocument(ctx context.Context, collection, id string, data []byte) error {
	if m.putFn != nil {
		return m.putFn(ctx, collection, id, data)
	}
	return nil
}

func (m *mockStore) GetDocument(ctx context.Context, collection, id string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) GetDocuments(ctx context.Context, collection string, ids []string) ([]db.Entry, error) {
	if m.getManyFn != nil {
		return m.getManyFn(ctx, collection, ids)
	}
	return nil, nil
}

func (m *mockStore) DeleteDocument(ctx context.Context, collection, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collection, id)
	}
	return nil
}

func (m *mockStore) DocumentExists(ctx context.Context, collection, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, collection, id)
	}
	return false, nil
}

func (m *mockStore) ListDocuments(
	ctx context.Context, collection string, offset, limit int,
) ([]db.Entry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection, offset, limit)
	}
	return nil, nil
}

func (m *mockStore) CountDocuments(ctx context.Context, collection string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, collection)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func testDocument(t *testing.T) domdoc.Document {
	t.Helper()
	return domdoc.Reconstruct("doc-1", map[string]any{
		"title":  "hello world",
		"rating": 4.5,
		"author": "author-1",
	}, 1)
}

func testEntry(t *testing.T, id string, fields map[string]any, revision int) db.Entry {
	t.Helper()
	data, err := json.Marshal(docRow{Fields: fields, Revision: revision})
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	return db.Entry{ID: id, Data: data}
}
