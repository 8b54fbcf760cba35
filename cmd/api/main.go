package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/masareef/brain/internal/aiparse"
	"github.com/masareef/brain/internal/api/handlers"
	"github.com/masareef/brain/internal/api/middleware"
	"github.com/masareef/brain/internal/brain"
	"github.com/masareef/brain/internal/config"
	"github.com/masareef/brain/internal/jobs"
	"github.com/masareef/brain/internal/jobs/inmemory"
	"github.com/masareef/brain/internal/logger"
	"github.com/masareef/brain/internal/storage/postgres"
)

func main() {
	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Initialize the rule-based classifier
	classifier := brain.NewDefault()

	// Initialize storage
	var store *postgres.Store
	if cfg.DatabaseURL != "" {
		store, err = postgres.NewStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create transaction store")
		}
		defer store.Close()
	} else {
		log.Warn().Msg("No database configured - transaction persistence is disabled")
	}

	// Initialize the model-backed parser
	parser := aiparse.NewGeminiParser(cfg.ModelName, classifier.Categories())

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.Workers, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		parseJob, ok := job.(*jobs.ParseTextJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", parseJob.JobID).
			Msg("Processing parse job")

		result, err := parser.ParseText(ctx, aiparse.Request{
			Text:             parseJob.Text,
			CurrentDateTime:  parseJob.CurrentDateTime,
			CustomCategories: parseJob.CustomCategories,
		})
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", parseJob.JobID).
				Msg("Parse job failed")
			return err
		}

		parseJob.Result = result

		if store != nil && result.Error == "" && len(result.Transactions) > 0 {
			if err := store.InsertTransactions(ctx, result.Transactions); err != nil {
				log.Error().
					Err(err).
					Str("job_id", parseJob.JobID).
					Msg("Failed to persist parsed transactions")
				return err
			}
		}

		log.Info().
			Str("job_id", parseJob.JobID).
			Int("transactions", len(result.Transactions)).
			Msg("Parse job completed")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	brainHandler := handlers.NewBrainHandler(classifier, log)
	aiParseHandler := handlers.NewAIParseHandler(jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	var transactionsHandler *handlers.TransactionsHandler
	if store != nil {
		transactionsHandler = handlers.NewTransactionsHandler(store, log)
	}

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/validate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			brainHandler.Validate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			brainHandler.Parse(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/ai/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			aiParseHandler.EnqueueParse(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			brainHandler.Categories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if transactionsHandler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Transaction storage is not configured")
			return
		}
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.ListTransactions(w, r)
		case http.MethodPost:
			transactionsHandler.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/totals", func(w http.ResponseWriter, r *http.Request) {
		if transactionsHandler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Transaction storage is not configured")
			return
		}
		if r.Method == http.MethodGet {
			transactionsHandler.CategoryTotals(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(cfg.APIKey)(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
