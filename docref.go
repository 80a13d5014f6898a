// Package docref embeds the document-reference store as an in-process
// client: collection schemas, document CRUD, and batched reference
// resolution over Redis or MongoDB.
package docref

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patchwell/docref/internal/db"
	dbMongo "github.com/patchwell/docref/internal/db/mongo"
	dbRedis "github.com/patchwell/docref/internal/db/redis"
	collectionrepo "github.com/patchwell/docref/internal/repository/collection"
	documentrepo "github.com/patchwell/docref/internal/repository/document"
	batchuc "github.com/patchwell/docref/internal/usecase/batch"
	collectionuc "github.com/patchwell/docref/internal/usecase/collection"
	documentuc "github.com/patchwell/docref/internal/usecase/document"
	resolveuc "github.com/patchwell/docref/internal/usecase/resolve"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the docref SDK entry point.
type Client struct {
	store      db.Store
	collSvc    *collectionuc.Service
	docSvc     *documentuc.Service
	batchSvc   *batchuc.Service
	resolveSvc *resolveuc.Service
	finder     resolveuc.DocumentFinder
}

// New creates a docref Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("docref: database required (use WithRedis or WithMongo)")
	}
	if cfg.keyPrefix == "" {
		cfg.keyPrefix = "docref:"
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("docref: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("docref: create redis store: %w", err)
		}
		return s, nil
	case "mongo":
		s, err := dbMongo.NewStore(dbMongo.Config{
			URI:      cfg.uri,
			Database: cfg.database,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("docref: create mongo store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("docref: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	collRepo := collectionrepo.New(store)
	docRepo := documentrepo.New(store)

	collSvc := collectionuc.New(collRepo, docRepo)
	docSvc := documentuc.New(docRepo, collSvc)
	if cfg.defaultPageSize > 0 || cfg.maxPageSize > 0 {
		docSvc = docSvc.WithPagination(cfg.defaultPageSize, cfg.maxPageSize)
	}
	batchSvc := batchuc.New(docSvc, docSvc)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	resolveSvc := resolveuc.New(docRepo)
	if cfg.maxResolveDepth > 0 {
		resolveSvc = resolveSvc.WithMaxDepth(cfg.maxResolveDepth)
	}

	return &Client{
		store:      store,
		collSvc:    collSvc,
		docSvc:     docSvc,
		batchSvc:   batchSvc,
		resolveSvc: resolveSvc,
		finder:     docRepo,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collections returns the collection management service.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{svc: c.collSvc}
}

// Documents returns the document service for a given collection.
func (c *Client) Documents(collection string) *DocumentService {
	return &DocumentService{
		collection: collection,
		docSvc:     c.docSvc,
		batchSvc:   c.batchSvc,
		resolveSvc: c.resolveSvc,
		finder:     c.finder,
	}
}
