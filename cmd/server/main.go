package main

import (
	"time"

	"eod-reconciliation-backend/internal/config"
	handler "eod-reconciliation-backend/internal/handlers"
	"eod-reconciliation-backend/internal/logger"
	"eod-reconciliation-backend/internal/routes"
	service "eod-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, true, nil)

	reconService := service.NewFromConfig(cfg, log)
	reconHandler := handler.NewReconciliationHandler(reconService, cfg.AllowedRoot, logger.Module(log, "http"))

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, reconHandler)

	log.WithFields(logrus.Fields{
		"addr":         cfg.ServerAddr,
		"allowed_root": cfg.AllowedRoot,
	}).Info("Starting server")
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
