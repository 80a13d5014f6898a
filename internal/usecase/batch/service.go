package batch

import (
	"context"
	"fmt"

	"github.com/patchwell/docref/internal/domain"
	dombatch "github.com/patchwell/docref/internal/domain/batch"
	domdoc "github.com/patchwell/docref/internal/domain/document"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Service handles batch document operations with per-item error reporting.
// One failing item never aborts the rest of the batch.
type Service struct {
	docs         DocumentUpserter
	del          DocumentDeleter
	maxBatchSize int
}

// New creates a batch service.
func New(docs DocumentUpserter, del DocumentDeleter) *Service {
	return &Service{docs: docs, del: del, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert creates or updates documents in batch.
func (s *Service) Upsert(ctx context.Context, collectionName string, items []domdoc.Document) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i := range items {
			results[i] = dombatch.NewError(
				items[i].ID(),
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidSchema),
			)
		}
		return results
	}

	for i := range items {
		created, err := s.docs.Upsert(ctx, collectionName, &items[i])
		if err != nil {
			results[i] = dombatch.NewError(items[i].ID(), err)
			continue
		}
		if created {
			results[i] = dombatch.NewOK(items[i].ID(), dombatch.StatusCreated)
		} else {
			results[i] = dombatch.NewOK(items[i].ID(), dombatch.StatusUpdated)
		}
	}

	return results
}

// Delete removes documents in batch.
func (s *Service) Delete(ctx context.Context, collectionName string, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		for i, id := range ids {
			results[i] = dombatch.NewError(
				id,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidSchema),
			)
		}
		return results
	}

	for i, id := range ids {
		if err := s.del.Delete(ctx, collectionName, id); err != nil {
			results[i] = dombatch.NewError(id, err)
			continue
		}
		results[i] = dombatch.NewOK(id, dombatch.StatusDeleted)
	}

	return results
}
