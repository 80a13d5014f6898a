package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/patchwell/docref/internal/db"
)

// PutDocument upserts a document, stored natively with _id set to the
// document identifier.
func (s *Store) PutDocument(ctx context.Context, collection, id string, data []byte) error {
	doc, err := toBSON(id, data)
	if err != nil {
		return &db.Error{Op: db.OpPutDocument, Err: err}
	}

	_, err = s.docs(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return &db.Error{Op: db.OpPutDocument, Err: err}
	}
	return nil
}

// GetDocument retrieves one document's raw JSON.
func (s *Store) GetDocument(ctx context.Context, collection, id string) ([]byte, error) {
	var doc bson.M
	err := s.docs(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGetDocument, Err: err}
	}
	return fromBSON(doc)
}

// GetDocuments fetches many documents with a single $in query.
// Missing identifiers are omitted from the result.
func (s *Store) GetDocuments(ctx context.Context, collection string, ids []string) ([]db.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.docs(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
	}

	entries := make([]db.Entry, 0, len(docs))
	for _, doc := range docs {
		id, _ := doc["_id"].(string)
		data, err := fromBSON(doc)
		if err != nil {
			return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
		}
		entries = append(entries, db.Entry{ID: id, Data: data})
	}
	return entries, nil
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := s.docs(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return &db.Error{Op: db.OpDeleteDocument, Err: err}
	}
	return nil
}

// DocumentExists checks whether a document is stored.
func (s *Store) DocumentExists(ctx context.Context, collection, id string) (bool, error) {
	count, err := s.docs(collection).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

// ListDocuments returns a page of documents ordered by identifier.
func (s *Store) ListDocuments(ctx context.Context, collection string, offset, limit int) ([]db.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := s.docs(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpListDocuments, Err: err}
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpListDocuments, Err: err}
	}

	entries := make([]db.Entry, 0, len(docs))
	for _, doc := range docs {
		id, _ := doc["_id"].(string)
		data, err := fromBSON(doc)
		if err != nil {
			return nil, &db.Error{Op: db.OpListDocuments, Err: err}
		}
		entries = append(entries, db.Entry{ID: id, Data: data})
	}
	return entries, nil
}

// CountDocuments counts stored documents in a collection.
func (s *Store) CountDocuments(ctx context.Context, collection string) (int, error) {
	count, err := s.docs(collection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, &db.Error{Op: db.OpCountDocuments, Err: err}
	}
	return int(count), nil
}

// toBSON converts a raw JSON payload into a native document with _id.
func toBSON(id string, data []byte) (bson.M, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	doc := bson.M(m)
	doc["_id"] = id
	return doc, nil
}

// fromBSON strips the _id and renders a document back to raw JSON.
func fromBSON(doc bson.M) ([]byte, error) {
	delete(doc, "_id")
	data, err := json.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}
