package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/Dan9191/payplan-service/internal/config"
	"github.com/Dan9191/payplan-service/internal/handler"
	"github.com/Dan9191/payplan-service/internal/integrations/closures"
	"github.com/Dan9191/payplan-service/internal/middleware"
	"github.com/Dan9191/payplan-service/internal/repository"
	"github.com/Dan9191/payplan-service/internal/scheduler"
	"github.com/Dan9191/payplan-service/internal/service"
	"github.com/Dan9191/payplan-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	var closureSource service.ClosureSource
	if cfg.ClosureFeedURL != "" {
		closureSource = closures.NewClient(cfg, logger)
	}
	svc := service.NewService(repo, closureSource, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Weekly digest job
	mailer := email.NewSender(cfg, logger)
	digest := scheduler.NewScheduler(repo, svc, mailer, logger)
	if err := digest.Start(cfg.DigestCron); err != nil {
		logger.Fatalf("Failed to start digest scheduler: %v", err)
	}
	defer digest.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/holidays/{year}", h.Holidays).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/plan", h.GeneratePlan).Methods("POST")
	authRouter.HandleFunc("/paydays", h.SavePaydays).Methods("PUT")
	authRouter.HandleFunc("/paydays", h.GetPaydays).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
