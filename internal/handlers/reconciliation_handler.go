package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"eod-reconciliation-backend/internal/logger"
	"eod-reconciliation-backend/internal/models"
	"eod-reconciliation-backend/internal/report"
	service "eod-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type ReconciliationHandler struct {
	service     *service.ReconciliationService
	allowedRoot string
	log         *logrus.Entry
}

// NewReconciliationHandler restricts runs to paths inside allowedRoot when
// it is non-empty.
func NewReconciliationHandler(s *service.ReconciliationService, allowedRoot string, log *logrus.Entry) *ReconciliationHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ReconciliationHandler{service: s, allowedRoot: allowedRoot, log: log}
}

// Run creates a batch for a backup tree and reconciles it in the background.
func (h *ReconciliationHandler) Run(c *gin.Context) {
	var payload struct {
		RootPath string `json:"root_path"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	root := strings.TrimSpace(payload.RootPath)
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root_path required"})
		return
	}
	root, err := h.checkRoot(root)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch := h.service.CreateBatch(root)
	h.log.WithFields(logrus.Fields{"batch_id": batch.ID, "root": root}).Info("Batch created")

	// the run outlives the request
	go h.service.ProcessBatch(context.WithoutCancel(c.Request.Context()), batch.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   batch.Status,
	})
}

func (h *ReconciliationHandler) checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root_path: %w", err)
	}
	if h.allowedRoot == "" {
		return abs, nil
	}
	allowed, err := filepath.Abs(h.allowedRoot)
	if err != nil {
		return "", fmt.Errorf("invalid allowed root: %w", err)
	}
	rel, err := filepath.Rel(allowed, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("root_path outside allowed root")
	}
	return abs, nil
}

func (h *ReconciliationHandler) GetBatchProgress(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}
	batch, err := h.service.GetBatch(batchID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"batch_id":        batch.ID.String(),
		"root_path":       batch.RootPath,
		"processed_count": batch.ProcessedCount,
		"total":           batch.TotalFiles,
		"status":          batch.Status,
		"started_at":      batch.StartedAt,
	}
	if batch.CompletedAt != nil {
		resp["completed_at"] = batch.CompletedAt
	}
	if batch.Error != "" {
		resp["error"] = batch.Error
	}
	if batch.Result != nil {
		resp["summary"] = batch.Result.Summary
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReconciliationHandler) ListRows(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status != "" && status != "all" {
		if _, ok := models.ParseStatus(strings.ToUpper(status)); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	cursor := c.Query("cursor")
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxPageSize)
	}

	items, nextCursor, hasMore, err := h.service.ListRows(batchID, status, cursor, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	res, err := h.service.Result(batchID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
		"summary":     res.Summary,
	})
}

func (h *ReconciliationHandler) ListSkipped(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}
	skipped, err := h.service.Skipped(batchID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": skipped, "count": len(skipped)})
}

// DownloadReport serves the same text the CLI writes to disk.
func (h *ReconciliationHandler) DownloadReport(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}
	res, err := h.service.Result(batchID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=sales_reconciliation_report.txt")
	c.String(http.StatusOK, report.RenderText(res))
}

func (h *ReconciliationHandler) DownloadExcel(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}
	res, err := h.service.Result(batchID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=sales_reconciliation_report.xlsx")
	if err := report.WriteExcel(c.Writer, res); err != nil {
		logger.LogError(h.log, "DownloadExcel", "write workbook", batchID.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
	}
}

func parseBatchID(c *gin.Context) (uuid.UUID, bool) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return uuid.Nil, false
	}
	return batchID, true
}

func (h *ReconciliationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
	case errors.Is(err, service.ErrBatchNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "batch not completed"})
	case errors.Is(err, service.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
