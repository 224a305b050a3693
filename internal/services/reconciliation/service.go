// Package reconciliation runs the locate, parse, aggregate and reconcile
// stages over one backup tree and tracks runs started over HTTP.
package reconciliation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"eod-reconciliation-backend/internal/models"
	"eod-reconciliation-backend/internal/parser"
	"eod-reconciliation-backend/internal/repository"
	"eod-reconciliation-backend/internal/services/aggregation"
	"eod-reconciliation-backend/internal/services/matching"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each file is parsed. It may be called from
// several goroutines at once.
type ProgressFunc func(done, total int)

type ReconciliationService struct {
	repo    *repository.BackupRepository
	parser  *parser.Parser
	engine  *matching.Engine
	workers int
	log     *logrus.Entry

	batches sync.Map // batchID -> *batchEntry
}

func NewReconciliationService(
	repo *repository.BackupRepository,
	p *parser.Parser,
	engine *matching.Engine,
	workers int,
	log *logrus.Entry,
) *ReconciliationService {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ReconciliationService{
		repo:    repo,
		parser:  p,
		engine:  engine,
		workers: workers,
		log:     log,
	}
}

type job struct {
	kind     models.RecordKind
	path     string
	terminal string
}

type parsed struct {
	record  parser.Record
	skipped *models.SkippedFile
}

// partial is what one worker folded from its share of the candidates.
type partial struct {
	receipts aggregation.Aggregates
	reports  aggregation.Aggregates
	skipped  []models.SkippedFile
}

// Run reconciles the tree under root. Only an invalid root or a cancelled
// context is an error; unusable files end up in Result.Skipped.
func (s *ReconciliationService) Run(ctx context.Context, root string, progress ProgressFunc) (*models.Result, error) {
	log := s.log.WithField("root", root)

	// 1. Locate candidates
	cands, err := s.repo.Locate(root)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"terminals": len(cands.Terminals),
		"receipts":  len(cands.Receipts),
		"reports":   len(cands.Reports),
	}).Info("Located record files")

	jobs := make([]job, 0, cands.Total())
	for _, c := range cands.Receipts {
		jobs = append(jobs, job{kind: models.KindReceipt, path: c.Path, terminal: c.Terminal})
	}
	for _, c := range cands.Reports {
		jobs = append(jobs, job{kind: models.KindEodSummary, path: c.Path, terminal: c.Terminal})
	}

	// 2. Parse and fold: each worker owns a contiguous chunk and its own
	// builders, so nothing is shared until the merge
	chunks := split(len(jobs), s.workers)
	partials := make([]partial, len(chunks))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w, c := range chunks {
		w, c := w, c
		g.Go(func() error {
			receipts := aggregation.NewBuilder(s.engine.Tolerance())
			reports := aggregation.NewBuilder(s.engine.Tolerance())
			var skipped []models.SkippedFile
			for _, j := range jobs[c[0]:c[1]] {
				if err := gctx.Err(); err != nil {
					return err
				}
				r := s.parseFile(j)
				switch {
				case r.skipped != nil:
					skipped = append(skipped, *r.skipped)
				case r.record.Receipt != nil:
					receipts.AddReceipt(*r.record.Receipt)
				case r.record.Eod != nil:
					reports.AddEodReport(*r.record.Eod)
				}
				n := int(done.Add(1))
				if progress != nil {
					progress(n, len(jobs))
				}
			}
			partials[w] = partial{receipts: receipts.Build(), reports: reports.Build(), skipped: skipped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Merge partials; skipped files stay in candidate order
	receiptParts := make([]aggregation.Aggregates, len(partials))
	reportParts := make([]aggregation.Aggregates, len(partials))
	skipped := []models.SkippedFile{}
	for i, p := range partials {
		receiptParts[i] = p.receipts
		reportParts[i] = p.reports
		skipped = append(skipped, p.skipped...)
	}

	// 4. Reconcile
	rows, summary := s.engine.Reconcile(aggregation.Merge(receiptParts...), aggregation.Merge(reportParts...))
	summary.FilesScanned = len(jobs)
	summary.FilesSkipped = len(skipped)

	log.WithFields(logrus.Fields{
		"dates":      summary.TotalDates,
		"matched":    summary.Matched,
		"discrepant": summary.Discrepant,
		"missing":    summary.MissingOneSide,
		"skipped":    summary.FilesSkipped,
	}).Info("Reconciliation finished")

	return &models.Result{
		RootPath:  root,
		Tolerance: s.engine.Tolerance(),
		Rows:      rows,
		Summary:   summary,
		Skipped:   skipped,
	}, nil
}

func (s *ReconciliationService) parseFile(j job) parsed {
	content, err := s.repo.ReadRecordFile(j.path)
	if err != nil {
		return s.skip(models.SkippedFile{Path: j.path, Kind: j.kind, Reason: "unreadable: " + err.Error()})
	}
	rec, err := s.parser.Parse(j.kind, j.path, content)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return s.skip(pe.Skipped())
		}
		return s.skip(models.SkippedFile{Path: j.path, Kind: j.kind, Reason: err.Error()})
	}
	switch {
	case rec.Receipt != nil:
		rec.Receipt.Terminal = j.terminal
	case rec.Eod != nil:
		rec.Eod.Terminal = j.terminal
	}
	return parsed{record: rec}
}

// split cuts n items into at most workers contiguous [start, end) ranges of
// nearly equal size.
func split(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	chunks := make([][2]int, 0, workers)
	size, extra := n/workers, n%workers
	start := 0
	for w := 0; w < workers; w++ {
		end := start + size
		if w < extra {
			end++
		}
		chunks = append(chunks, [2]int{start, end})
		start = end
	}
	return chunks
}

func (s *ReconciliationService) skip(f models.SkippedFile) parsed {
	s.log.WithFields(logrus.Fields{
		"path":   f.Path,
		"kind":   f.Kind,
		"reason": f.Reason,
	}).Warn("Skipping file")
	return parsed{skipped: &f}
}
