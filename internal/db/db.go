package db

import (
	"context"
	"time"
)

// Store is the storage facade combining all sub-interfaces.
// Consumers depend on narrow sub-interfaces (ISP); the facade exists for
// the composition root and backend implementations.
type Store interface {
	Pinger
	DocumentStore
	MetaStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Entry is one stored document: its identifier and raw JSON payload.
type Entry struct {
	ID   string
	Data []byte
}

// DocumentStore provides collection-scoped document operations.
// GetDocuments is the batched fetch: one call, one underlying round trip,
// regardless of how many identifiers are requested. Identifiers with no
// stored document are silently omitted from the result.
type DocumentStore interface {
	PutDocument(ctx context.Context, collection, id string, data []byte) error
	GetDocument(ctx context.Context, collection, id string) ([]byte, error)
	GetDocuments(ctx context.Context, collection string, ids []string) ([]Entry, error)
	DeleteDocument(ctx context.Context, collection, id string) error
	DocumentExists(ctx context.Context, collection, id string) (bool, error)
	ListDocuments(ctx context.Context, collection string, offset, limit int) ([]Entry, error)
	CountDocuments(ctx context.Context, collection string) (int, error)
}

// MetaStore provides keyed hash storage for collection metadata.
type MetaStore interface {
	PutMeta(ctx context.Context, key string, fields map[string]string) error
	GetMeta(ctx context.Context, key string) (map[string]string, error)
	ListMeta(ctx context.Context, prefix string) ([]map[string]string, error)
	DeleteMeta(ctx context.Context, key string) error
	MetaExists(ctx context.Context, key string) (bool, error)
}
