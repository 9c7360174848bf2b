package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
)

// DefaultBatchSize bounds the inserts sent per round trip.
const DefaultBatchSize = 50

// WriteResult counts what a Writer applied.
type WriteResult struct {
	Inserted int
	Updated  int
	// Missing lists update ids the store no longer had.
	Missing []string
}

// Writer applies a plan to a store. Inserts are buffered and flushed in
// batches; updates are sent one by one so a vanished record fails alone.
type Writer struct {
	store     WriteStore
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Writer. A batchSize outside 1..DefaultBatchSize uses
// DefaultBatchSize.
func NewWriter(store WriteStore, batchSize int, logger *slog.Logger) *Writer {
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{store: store, batchSize: batchSize, logger: logger}
}

// Apply writes in plan order. A missing update target is recorded and
// skipped; any other failure stops the run and returns the counts so far.
// Batches already sent are not rolled back.
func (w *Writer) Apply(ctx context.Context, writes []Write) (WriteResult, error) {
	var res WriteResult
	pending := make([]project.Project, 0, w.batchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		stored, err := w.store.BatchWrite(ctx, pending)
		res.Inserted += len(stored)
		pending = make([]project.Project, 0, w.batchSize)
		if err != nil {
			return fmt.Errorf("writing insert batch: %w", err)
		}
		return nil
	}

	for _, wr := range writes {
		switch wr.Op {
		case OpInsert:
			rec := wr.Record
			rec.ID = ""
			pending = append(pending, rec)
			if len(pending) >= w.batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		case OpUpdate:
			_, err := w.store.Update(ctx, wr.Record.ID, wr.Record)
			if errors.Is(err, repository.ErrNotFound) {
				w.logger.Warn("update target disappeared", "id", wr.Record.ID)
				res.Missing = append(res.Missing, wr.Record.ID)
				continue
			}
			if err != nil {
				return res, fmt.Errorf("updating record %s: %w", wr.Record.ID, err)
			}
			res.Updated++
		default:
			return res, fmt.Errorf("unknown write op %q", wr.Op)
		}
	}

	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}
