package reconciliation

import (
	"eod-reconciliation-backend/internal/config"
	"eod-reconciliation-backend/internal/logger"
	"eod-reconciliation-backend/internal/parser"
	"eod-reconciliation-backend/internal/repository"
	"eod-reconciliation-backend/internal/services/matching"

	"github.com/sirupsen/logrus"
)

// NewFromConfig wires the repository, parser and engine from cfg.
func NewFromConfig(cfg *config.Config, l *logrus.Logger) *ReconciliationService {
	repo := repository.NewBackupRepository(repository.Layout{
		MarkerToken:     cfg.MarkerToken,
		ReceiptsSegment: cfg.ReceiptsSegment,
		ReportsSegment:  cfg.ReportsSegment,
		FileExtension:   cfg.FileExtension,
	}, logger.Module(l, "locator"))

	return NewReconciliationService(
		repo,
		parser.New(logger.Module(l, "parser")),
		matching.NewEngine(cfg.Tolerance, logger.Module(l, "matching")),
		cfg.Workers,
		logger.Module(l, "reconciliation"),
	)
}
