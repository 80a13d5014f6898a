package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/patchwell/docref/internal/domain"
	domcol "github.com/patchwell/docref/internal/domain/collection"
	"github.com/patchwell/docref/internal/domain/collection/field"
)

type mockRepo struct {
	createFn func(ctx context.Context, col domcol.Collection) error
	updateFn func(ctx context.Context, col domcol.Collection) error
	getFn    func(ctx context.Context, name string) (domcol.Collection, error)
	listFn   func(ctx context.Context) ([]domcol.Collection, error)
	deleteFn func(ctx context.Context, name string) error
}

func (m *mockRepo) Create(ctx context.Context, col domcol.Collection) error {
	if m.createFn != nil {
		return m.createFn(ctx, col)
	}
	return nil
}

func (m *mockRepo) Update(ctx context.Context, col domcol.Collection) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, col)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return domcol.Collection{}, domain.ErrNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]domcol.Collection, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

type mockCounter struct {
	countFn func(ctx context.Context, collectionName string) (int, error)
}

func (m *mockCounter) Count(ctx context.Context, collectionName string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, collectionName)
	}
	return 0, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockCounter) {
	t.Helper()
	mr := &mockRepo{}
	mc := &mockCounter{}
	return New(mr, mc), mr, mc
}

func testFields(t *testing.T) []field.Field {
	t.Helper()
	title, err := field.New("title", field.Tag, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	author, err := field.New("author", field.Reference, "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return []field.Field{title, author}
}

func TestCreate(t *testing.T) {
	svc, mr, _ := newTestService(t)

	var stored domcol.Collection
	mr.createFn = func(_ context.Context, col domcol.Collection) error {
		stored = col
		return nil
	}

	col, err := svc.Create(context.Background(), "posts", testFields(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Name() != "posts" {
		t.Errorf("unexpected name: %s", col.Name())
	}
	if col.Revision() != 1 {
		t.Errorf("expected revision 1, got %d", col.Revision())
	}
	if stored.Name() != "posts" {
		t.Errorf("expected collection stored, got %s", stored.Name())
	}
}

func TestCreate_InvalidName(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "bad name!", testFields(t))
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	svc, mr, _ := newTestService(t)

	mr.createFn = func(_ context.Context, _ domcol.Collection) error {
		return domain.ErrAlreadyExists
	}

	_, err := svc.Create(context.Background(), "posts", testFields(t))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdate_BumpsRevision(t *testing.T) {
	svc, mr, _ := newTestService(t)

	mr.getFn = func(_ context.Context, name string) (domcol.Collection, error) {
		return domcol.Reconstruct(name, testFields(t), 1700000000, 3), nil
	}
	var stored domcol.Collection
	mr.updateFn = func(_ context.Context, col domcol.Collection) error {
		stored = col
		return nil
	}

	updated, err := svc.Update(context.Background(), "posts", testFields(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Revision() != 4 {
		t.Errorf("expected revision 4, got %d", updated.Revision())
	}
	if updated.CreatedAt() != 1700000000 {
		t.Errorf("created_at must be preserved, got %d", updated.CreatedAt())
	}
	if stored.Revision() != 4 {
		t.Errorf("expected bumped revision stored, got %d", stored.Revision())
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "missing", testFields(t))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	svc, mr, mc := newTestService(t)

	mr.getFn = func(_ context.Context, name string) (domcol.Collection, error) {
		return domcol.Reconstruct(name, nil, 1700000000, 1), nil
	}
	mc.countFn = func(_ context.Context, name string) (int, error) {
		if name != "posts" {
			t.Errorf("unexpected collection: %s", name)
		}
		return 42, nil
	}

	count, err := svc.Stats(context.Background(), "posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

func TestStats_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Stats(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
