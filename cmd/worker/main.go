package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/masareef/brain/internal/aiparse"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	classifier := brain.NewDefault()
	parser := aiparse.NewGeminiParser(cfg.ModelName, classifier.Categories())

	var store *postgres.Store
	if cfg.DatabaseURL != "" {
		store, err = postgres.NewStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create transaction store")
		}
		defer store.Close()
	} else {
		log.Warn().Msg("No database configured - parsed transactions will not be persisted")
	}

	// Initialize job store and queue
	// In production, this would be replaced with a durable broker
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.Workers, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
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

	// Start consuming jobs
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
