package redis

import (
	"context"
	"sort"
	"strings"

	"github.com/redis/rueidis"

	"github.com/patchwell/docref/internal/db"
)

// PutDocument stores a document as a JSON value.
func (s *Store) PutDocument(ctx context.Context, collection, id string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(s.docKey(collection, id)).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPutDocument, Err: err}
	}
	return nil
}

// GetDocument retrieves one document's raw JSON.
func (s *Store) GetDocument(ctx context.Context, collection, id string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(s.docKey(collection, id)).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGetDocument, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// GetDocuments fetches many documents in a single JSON.MGET round trip.
// Missing identifiers are omitted from the result.
func (s *Store) GetDocuments(ctx context.Context, collection string, ids []string) ([]db.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}

	cmd := s.b().Arbitrary("JSON.MGET").Keys(keys...).Args("$").Build()
	results, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
	}

	entries := make([]db.Entry, 0, len(results))
	for i, msg := range results {
		if i >= len(ids) {
			break
		}
		raw, err := msg.ToString()
		if err != nil || raw == "" {
			continue // nil reply: key does not exist
		}
		// JSON.MGET with a $ path wraps each value in a one-element array.
		entries = append(entries, db.Entry{ID: ids[i], Data: unwrapPathArray(raw)})
	}
	return entries, nil
}

// unwrapPathArray strips the enclosing [...] that a $-path JSON.MGET adds.
func unwrapPathArray(raw string) []byte {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return []byte(trimmed[1 : len(trimmed)-1])
	}
	return []byte(trimmed)
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	cmd := s.b().Del().Key(s.docKey(collection, id)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDeleteDocument, Err: err}
	}
	return nil
}

// DocumentExists checks whether a document is stored.
func (s *Store) DocumentExists(ctx context.Context, collection, id string) (bool, error) {
	cmd := s.b().Exists().Key(s.docKey(collection, id)).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

// ListDocuments returns a page of documents in lexicographic key order.
// SCAN yields keys in no particular order, so the full key set is
// collected and sorted before paging.
func (s *Store) ListDocuments(ctx context.Context, collection string, offset, limit int) ([]db.Entry, error) {
	keys, err := s.scanKeys(ctx, s.docPattern(collection))
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	if offset >= len(keys) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(keys) {
		end = len(keys)
	}
	page := keys[offset:end]
	if len(page) == 0 {
		return nil, nil
	}

	cmd := s.b().Arbitrary("JSON.MGET").Keys(page...).Args("$").Build()
	results, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpListDocuments, Err: err}
	}

	keyPrefix := s.prefix + collection + ":"
	entries := make([]db.Entry, 0, len(results))
	for i, msg := range results {
		if i >= len(page) {
			break
		}
		raw, err := msg.ToString()
		if err != nil || raw == "" {
			continue
		}
		entries = append(entries, db.Entry{
			ID:   strings.TrimPrefix(page[i], keyPrefix),
			Data: unwrapPathArray(raw),
		})
	}
	return entries, nil
}

// CountDocuments counts stored documents in a collection.
func (s *Store) CountDocuments(ctx context.Context, collection string) (int, error) {
	keys, err := s.scanKeys(ctx, s.docPattern(collection))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Store) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpListDocuments, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
