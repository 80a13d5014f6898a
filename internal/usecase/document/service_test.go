package document

import (
	"context"
	"errors"
	"testing"

	"github.com/patchwell/docref/internal/domain"
	domcol "github.com/patchwell/docref/internal/domain/collection"
	"github.com/patchwell/docref/internal/domain/collection/field"
	domdoc "github.com/patchwell/docref/internal/domain/document"
)

type mockRepo struct {
	upsertFn func(ctx context.Context, collectionName string, doc *domdoc.Document) (bool, error)
	getFn    func(ctx context.Context, collectionName, id string) (domdoc.Document, error)
	listFn   func(ctx context.Context, collectionName, cursor string, limit int) ([]domdoc.Document, string, error)
	deleteFn func(ctx context.Context, collectionName, id string) error
	patchFn  func(ctx context.Context, collectionName, id string, fields map[string]any) error
	countFn  func(ctx context.Context, collectionName string) (int, error)
}

func (m *mockRepo) Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collectionName, doc)
	}
	return true, nil
}

func (m *mockRepo) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collectionName, id)
	}
	return domdoc.Document{}, domain.ErrDocumentNotFound
}

func (m *mockRepo) List(
	ctx context.Context, collectionName, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collectionName, cursor, limit)
	}
	return nil, "", nil
}

func (m *mockRepo) Delete(ctx context.Context, collectionName, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collectionName, id)
	}
	return nil
}

func (m *mockRepo) Patch(ctx context.Context, collectionName, id string, fields map[string]any) error {
	if m.patchFn != nil {
		return m.patchFn(ctx, collectionName, id, fields)
	}
	return nil
}

func (m *mockRepo) Count(ctx context.Context, collectionName string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, collectionName)
	}
	return 0, nil
}

type mockColls struct {
	getFn func(ctx context.Context, name string) (domcol.Collection, error)
}

func (m *mockColls) Get(ctx context.Context, name string) (domcol.Collection, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return domcol.Collection{}, domain.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockColls) {
	t.Helper()
	mr := &mockRepo{}
	mc := &mockColls{}
	return New(mr, mc), mr, mc
}

func schemaColls(t *testing.T) *mockColls {
	t.Helper()
	title, err := field.New("title", field.Tag, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rating, err := field.New("rating", field.Numeric, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	author, err := field.New("author", field.Reference, "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, err := field.New("tags", field.References, "tags")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col := domcol.Reconstruct("posts", []field.Field{title, rating, author, tags}, 1700000000, 1)
	return &mockColls{getFn: func(_ context.Context, _ string) (domcol.Collection, error) {
		return col, nil
	}}
}

func TestUpsert(t *testing.T) {
	_, mr, _ := newTestService(t)
	svc := New(mr, schemaColls(t))

	doc, err := domdoc.New("d1", map[string]any{
		"title":  "hello",
		"rating": 4.5,
		"author": "u1",
		"tags":   []any{"t1", "t2"},
		"extra":  "undeclared fields pass through",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := svc.Upsert(context.Background(), "posts", &doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true")
	}
}

func TestUpsert_CollectionMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc, err := domdoc.New("d1", map[string]any{"title": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Upsert(context.Background(), "missing", &doc)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsert_SchemaViolations(t *testing.T) {
	_, mr, _ := newTestService(t)
	svc := New(mr, schemaColls(t))

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"tag gets number", map[string]any{"title": 12.0}},
		{"numeric gets string", map[string]any{"rating": "high"}},
		{"reference gets number", map[string]any{"author": 7.0}},
		{"references gets scalar", map[string]any{"tags": "t1"}},
		{"references gets mixed sequence", map[string]any{"tags": []any{"t1", 2.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := domdoc.New("d1", tt.fields)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err = svc.Upsert(context.Background(), "posts", &doc)
			if !errors.Is(err, domain.ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestCreate_GeneratesID(t *testing.T) {
	_, mr, _ := newTestService(t)
	svc := New(mr, schemaColls(t))

	var storedID string
	mr.upsertFn = func(_ context.Context, _ string, doc *domdoc.Document) (bool, error) {
		storedID = doc.ID()
		return true, nil
	}

	doc, err := svc.Create(context.Background(), "posts", map[string]any{"title": "generated"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() == "" {
		t.Fatal("expected generated id")
	}
	if storedID != doc.ID() {
		t.Errorf("stored id %q does not match returned id %q", storedID, doc.ID())
	}
}

func TestList_ClampsLimit(t *testing.T) {
	_, mr, _ := newTestService(t)
	svc := New(mr, schemaColls(t)).WithPagination(10, 50)

	var gotLimit int
	mr.listFn = func(_ context.Context, _, _ string, limit int) ([]domdoc.Document, string, error) {
		gotLimit = limit
		return nil, "", nil
	}

	if _, _, err := svc.List(context.Background(), "posts", "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 {
		t.Errorf("expected default page size 10, got %d", gotLimit)
	}

	if _, _, err := svc.List(context.Background(), "posts", "", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 50 {
		t.Errorf("expected max page size 50, got %d", gotLimit)
	}
}

func TestPatch_Validation(t *testing.T) {
	_, mr, _ := newTestService(t)
	svc := New(mr, schemaColls(t))

	err := svc.Patch(context.Background(), "posts", "d1", map[string]any{})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for empty patch, got %v", err)
	}

	err = svc.Patch(context.Background(), "posts", "d1", map[string]any{"id": "other"})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for id patch, got %v", err)
	}

	err = svc.Patch(context.Background(), "posts", "d1", map[string]any{"rating": "high"})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for type violation, got %v", err)
	}

	// Null removes a field and skips type validation.
	var patched map[string]any
	mr.patchFn = func(_ context.Context, _, _ string, fields map[string]any) error {
		patched = fields
		return nil
	}
	if err := svc.Patch(context.Background(), "posts", "d1", map[string]any{"rating": nil}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := patched["rating"]; !ok || v != nil {
		t.Errorf("expected null passthrough for removal, got %v", patched)
	}
}
