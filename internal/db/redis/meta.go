package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/patchwell/docref/internal/db"
)

// PutMeta stores metadata fields in a hash.
func (s *Store) PutMeta(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(s.metaKey(key)).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPutMeta, Err: err}
	}
	return nil
}

// GetMeta returns all metadata fields of a hash.
func (s *Store) GetMeta(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(s.metaKey(key)).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpGetMeta, Err: err}
	}
	return m, nil
}

// ListMeta fetches every metadata hash under a key prefix using SCAN
// followed by a single pipelined HGETALL round trip.
func (s *Store) ListMeta(ctx context.Context, prefix string) ([]map[string]string, error) {
	keys, err := s.scanKeys(ctx, s.metaKey(prefix)+"*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, 0, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpListMeta, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		if len(m) > 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// DeleteMeta removes a metadata hash.
func (s *Store) DeleteMeta(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(s.metaKey(key)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDeleteMeta, Err: err}
	}
	return nil
}

// MetaExists checks if a metadata hash exists.
func (s *Store) MetaExists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(s.metaKey(key)).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}
