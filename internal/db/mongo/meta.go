package mongo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/patchwell/docref/internal/db"
)

// PutMeta stores metadata fields under a key.
func (s *Store) PutMeta(ctx context.Context, key string, fields map[string]string) error {
	doc := bson.M{"_id": key, "fields": fields}
	_, err := s.meta().ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return &db.Error{Op: db.OpPutMeta, Err: err}
	}
	return nil
}

// GetMeta returns all metadata fields of a key. A missing key yields an
// empty map, matching hash semantics on the Redis backend.
func (s *Store) GetMeta(ctx context.Context, key string) (map[string]string, error) {
	var doc metaDoc
	err := s.meta().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return map[string]string{}, nil
		}
		return nil, &db.Error{Op: db.OpGetMeta, Err: err}
	}
	return doc.Fields, nil
}

// ListMeta fetches every metadata document whose key starts with prefix.
func (s *Store) ListMeta(ctx context.Context, prefix string) ([]map[string]string, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}
	cursor, err := s.meta().Find(ctx, bson.M{"_id": pattern})
	if err != nil {
		return nil, &db.Error{Op: db.OpListMeta, Err: err}
	}
	defer cursor.Close(ctx)

	var docs []metaDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpListMeta, Err: err}
	}

	out := make([]map[string]string, 0, len(docs))
	for _, d := range docs {
		if len(d.Fields) > 0 {
			out = append(out, d.Fields)
		}
	}
	return out, nil
}

// DeleteMeta removes a metadata key.
func (s *Store) DeleteMeta(ctx context.Context, key string) error {
	_, err := s.meta().DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return &db.Error{Op: db.OpDeleteMeta, Err: err}
	}
	return nil
}

// MetaExists checks if a metadata key exists.
func (s *Store) MetaExists(ctx context.Context, key string) (bool, error) {
	count, err := s.meta().CountDocuments(ctx, bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

type metaDoc struct {
	ID     string            `bson:"_id"`
	Fields map[string]string `bson:"fields"`
}
