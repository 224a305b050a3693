package routes

import (
	"github.com/gin-gonic/gin"

	handler "eod-reconciliation-backend/internal/handlers"
	service "eod-reconciliation-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, reconHandler *handler.ReconciliationHandler) {
	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Reconciliation batch routes
	recon := api.Group("/reconciliation")
	recon.POST("/run", reconHandler.Run)
	recon.GET("/:batchId", reconHandler.GetBatchProgress)
	recon.GET("/:batchId/rows", reconHandler.ListRows)
	recon.GET("/:batchId/skipped", reconHandler.ListSkipped)
	recon.GET("/:batchId/report", reconHandler.DownloadReport)
	recon.GET("/:batchId/report.xlsx", reconHandler.DownloadExcel)
}

// NewRouter builds a gin engine with the API registered, for callers that
// do not need extra middleware.
func NewRouter(reconService *service.ReconciliationService, allowedRoot string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, handler.NewReconciliationHandler(reconService, allowedRoot, nil))
	return r
}
