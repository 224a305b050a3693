package reconciliation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"eod-reconciliation-backend/internal/logger"
	"eod-reconciliation-backend/internal/models"

	"github.com/google/uuid"
)

const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchFailed     = "failed"
)

var (
	ErrBatchNotFound = errors.New("batch not found")
	ErrBatchNotReady = errors.New("batch not completed")
	ErrInvalidCursor = errors.New("invalid cursor")
)

type batchEntry struct {
	mu    sync.Mutex
	batch models.ReconciliationBatch
}

// CreateBatch registers a run in memory and returns a snapshot of it.
func (s *ReconciliationService) CreateBatch(root string) models.ReconciliationBatch {
	e := &batchEntry{batch: models.ReconciliationBatch{
		ID:        uuid.New(),
		RootPath:  root,
		Status:    BatchProcessing,
		StartedAt: time.Now(),
	}}
	s.batches.Store(e.batch.ID, e)
	return e.batch
}

// ProcessBatch runs the pipeline for a batch created by CreateBatch and
// records the outcome on it. Handlers call it from a goroutine.
func (s *ReconciliationService) ProcessBatch(ctx context.Context, batchID uuid.UUID) {
	e, ok := s.entry(batchID)
	if !ok {
		return
	}
	e.mu.Lock()
	root := e.batch.RootPath
	e.mu.Unlock()

	res, err := s.Run(ctx, root, func(done, total int) {
		e.mu.Lock()
		if done > e.batch.ProcessedCount {
			e.batch.ProcessedCount = done
		}
		e.batch.TotalFiles = total
		e.mu.Unlock()
	})

	now := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batch.CompletedAt = &now
	if err != nil {
		e.batch.Status = BatchFailed
		e.batch.Error = err.Error()
		logger.LogError(s.log.WithField("batch_id", batchID), "ProcessBatch", "run batch", root, err)
		return
	}
	e.batch.Status = BatchCompleted
	e.batch.TotalFiles = res.Summary.FilesScanned
	e.batch.ProcessedCount = res.Summary.FilesScanned
	e.batch.Result = res
}

func (s *ReconciliationService) entry(batchID uuid.UUID) (*batchEntry, bool) {
	val, ok := s.batches.Load(batchID)
	if !ok {
		return nil, false
	}
	return val.(*batchEntry), true
}

// GetBatch returns a copy of the batch's current state.
func (s *ReconciliationService) GetBatch(batchID uuid.UUID) (models.ReconciliationBatch, error) {
	e, ok := s.entry(batchID)
	if !ok {
		return models.ReconciliationBatch{}, ErrBatchNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batch, nil
}

// Result returns the finished result of a completed batch.
func (s *ReconciliationService) Result(batchID uuid.UUID) (*models.Result, error) {
	b, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}
	if b.Status != BatchCompleted || b.Result == nil {
		return nil, ErrBatchNotReady
	}
	return b.Result, nil
}

// ListRows pages through a completed batch's rows in date order. The cursor
// is the date of the last row of the previous page.
func (s *ReconciliationService) ListRows(
	batchID uuid.UUID,
	status string,
	cursor string,
	limit int,
) ([]models.ReconciliationRow, string, bool, error) {
	res, err := s.Result(batchID)
	if err != nil {
		return nil, "", false, err
	}

	if limit < 1 {
		limit = 1
	}
	var after models.Date
	if cursor != "" {
		after, err = models.ParseISODate(cursor)
		if err != nil {
			return nil, "", false, ErrInvalidCursor
		}
	}

	// filter by status
	want := models.Status(strings.ToUpper(status))
	filterStatus := status != "" && status != "all"

	start := 0
	if cursor != "" {
		start = sort.Search(len(res.Rows), func(i int) bool {
			return after.Before(res.Rows[i].Date)
		})
	}

	rows := make([]models.ReconciliationRow, 0, limit+1)
	for _, r := range res.Rows[start:] {
		if filterStatus && r.Status != want {
			continue
		}
		rows = append(rows, r)
		if len(rows) > limit {
			break
		}
	}

	hasMore := false
	var nextCursor string
	if len(rows) > limit {
		hasMore = true
		nextCursor = rows[limit-1].Date.String()
		rows = rows[:limit]
	}
	return rows, nextCursor, hasMore, nil
}

func (s *ReconciliationService) Skipped(batchID uuid.UUID) ([]models.SkippedFile, error) {
	res, err := s.Result(batchID)
	if err != nil {
		return nil, err
	}
	return res.Skipped, nil
}
