package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/patchwell/docref/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, "docref:")
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "docref:")
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- documents.go tests ---

func TestPutDocument_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.SET", "docref:posts:p1", "$", `{"title":"hello"}`)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, "docref:")
	err := s.PutDocument(context.Background(), "posts", "p1", []byte(`{"title":"hello"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPutDocument_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "docref:")
	err := s.PutDocument(context.Background(), "posts", "p1", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestGetDocument_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.GET", "docref:posts:p1")).
		Return(mock.Result(mock.RedisString(`{"title":"hello"}`)))

	s := NewStoreForTest(c, "docref:")
	data, err := s.GetDocument(context.Background(), "posts", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"title":"hello"}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET"
		})).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c, "docref:")
	_, err := s.GetDocument(context.Background(), "posts", "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGetDocument_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "docref:")
	_, err := s.GetDocument(context.Background(), "posts", "p1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
}

func TestGetDocuments_SingleRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	// One JSON.MGET for all keys; u2 is missing and must be omitted.
	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"JSON.MGET", "docref:users:u1", "docref:users:u2", "docref:users:u3", "$",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`[{"name":"Ada"}]`),
			mock.RedisNil(),
			mock.RedisString(`[{"name":"Grace"}]`),
		)))

	s := NewStoreForTest(c, "docref:")
	entries, err := s.GetDocuments(context.Background(), "users", []string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "u1" || string(entries[0].Data) != `{"name":"Ada"}` {
		t.Errorf("unexpected entry 0: %s %s", entries[0].ID, entries[0].Data)
	}
	if entries[1].ID != "u3" || string(entries[1].Data) != `{"name":"Grace"}` {
		t.Errorf("unexpected entry 1: %s %s", entries[1].ID, entries[1].Data)
	}
}

func TestGetDocuments_Empty(t *testing.T) {
	s := NewStoreForTest(nil, "docref:") // client not called
	entries, err := s.GetDocuments(context.Background(), "users", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil, got %v", entries)
	}
}

func TestGetDocuments_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.MGET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "docref:")
	_, err := s.GetDocuments(context.Background(), "users", []string{"u1"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteDocument_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "docref:posts:p1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c, "docref:")
	if err := s.DeleteDocument(context.Background(), "posts", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDocumentExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "docref:posts:p1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c, "docref:")
	exists, err := s.DocumentExists(context.Background(), "posts", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestListDocuments_SortsScanResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	// SCAN yields keys out of order; listing must sort before paging.
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(
				mock.RedisString("docref:posts:b"),
				mock.RedisString("docref:posts:a"),
			),
		)))

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.MGET", "docref:posts:a", "docref:posts:b", "$")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`[{"n":1}]`),
			mock.RedisString(`[{"n":2}]`),
		)))

	s := NewStoreForTest(c, "docref:")
	entries, err := s.ListDocuments(context.Background(), "posts", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "a" || entries[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", entries[0].ID, entries[1].ID)
	}
}

func TestListDocuments_OffsetPastEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("docref:posts:a")),
		)))

	s := NewStoreForTest(c, "docref:")
	entries, err := s.ListDocuments(context.Background(), "posts", 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil page, got %v", entries)
	}
}

func TestCountDocuments_MultiPageScan(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	first := true
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		DoAndReturn(func(_ context.Context, _ rueidis.Completed) rueidis.RedisResult {
			if first {
				first = false
				return mock.Result(mock.RedisArray(
					mock.RedisInt64(42),
					mock.RedisArray(mock.RedisString("docref:posts:a")),
				))
			}
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(0),
				mock.RedisArray(mock.RedisString("docref:posts:b")),
			))
		}).Times(2)

	s := NewStoreForTest(c, "docref:")
	count, err := s.CountDocuments(context.Background(), "posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}
}

// --- meta.go tests ---

func TestPutMeta_PrefixesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "docref:collection:posts"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c, "docref:")
	err := s.PutMeta(context.Background(), "collection:posts", map[string]string{"name": "posts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetMeta_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "docref:collection:posts")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"name":     mock.RedisString("posts"),
			"revision": mock.RedisString("1"),
		})))

	s := NewStoreForTest(c, "docref:")
	m, err := s.GetMeta(context.Background(), "collection:posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["name"] != "posts" || m["revision"] != "1" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestListMeta_ScanAndPipelinedHGetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "SCAN" {
				return false
			}
			for _, arg := range cmd {
				if arg == "docref:collection:*" {
					return true
				}
			}
			return false
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(
				mock.RedisString("docref:collection:posts"),
				mock.RedisString("docref:collection:users"),
			),
		)))

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"name": mock.RedisString("posts"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"name": mock.RedisString("users"),
			})),
		})

	s := NewStoreForTest(c, "docref:")
	results, err := s.ListMeta(context.Background(), "collection:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["name"] != "posts" || results[1]["name"] != "users" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestListMeta_NoKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0), mock.RedisArray())))

	s := NewStoreForTest(c, "docref:")
	results, err := s.ListMeta(context.Background(), "collection:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

func TestDeleteMeta_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "docref:collection:posts")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c, "docref:")
	if err := s.DeleteMeta(context.Background(), "collection:posts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMetaExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "docref:collection:missing")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c, "docref:")
	exists, err := s.MetaExists(context.Background(), "collection:missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestUnwrapPathArray(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[{"a":1}]`, `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{` [{"a":1}] `, `{"a":1}`},
	}
	for _, tc := range tests {
		if got := string(unwrapPathArray(tc.in)); got != tc.want {
			t.Errorf("unwrapPathArray(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
