package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/masareef/brain/internal/api/middleware"
	"github.com/masareef/brain/internal/brain"
	"github.com/masareef/brain/internal/domain"
	"github.com/masareef/brain/internal/jobs"
	"github.com/masareef/brain/internal/storage/postgres"
)

// TransactionStore is the storage surface the handlers need.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	ListTransactions(ctx context.Context, filter postgres.ListFilter) ([]*domain.Transaction, error)
	CategoryTotals(ctx context.Context, start, end time.Time, direction string) ([]*postgres.CategoryTotal, error)
}

// BrainHandler handles rule-based validation and parsing endpoints.
type BrainHandler struct {
	classifier *brain.Classifier
	log        zerolog.Logger
}

// NewBrainHandler creates a new brain handler.
func NewBrainHandler(classifier *brain.Classifier, log zerolog.Logger) *BrainHandler {
	return &BrainHandler{
		classifier: classifier,
		log:        log,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// Validate handles POST /api/validate
func (h *BrainHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.classifier.ValidateInput(req.Text)
	middleware.WriteJSON(w, http.StatusOK, result)
}

// Parse handles POST /api/parse
func (h *BrainHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx := h.classifier.ParseTransaction(req.Text)
	if tx == nil {
		validation := h.classifier.ValidateInput(req.Text)
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      "Text did not validate as a transaction",
			"validation": validation,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Categories handles GET /api/categories
func (h *BrainHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.classifier.Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// AIParseHandler handles model-backed parsing endpoints.
type AIParseHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewAIParseHandler creates a new AI parse handler.
func NewAIParseHandler(publisher jobs.Publisher, log zerolog.Logger) *AIParseHandler {
	return &AIParseHandler{
		publisher: publisher,
		log:       log,
	}
}

// EnqueueParse handles POST /api/ai/parse
func (h *AIParseHandler) EnqueueParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text             string    `json:"text"`
		CurrentDateTime  time.Time `json:"currentDateTime"`
		CustomCategories []string  `json:"customCategories"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx := r.Context()

	job := &jobs.ParseTextJob{
		Text:             req.Text,
		CurrentDateTime:  req.CurrentDateTime,
		CustomCategories: req.CustomCategories,
	}

	if err := h.publisher.PublishParseText(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue parsing job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parsing job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Parsing job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store: store,
		log:   log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := postgres.ListFilter{
		Category:  query.Get("category"),
		Direction: query.Get("direction"),
	}

	if startStr := query.Get("start_date"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
		filter.Start = &start
	}

	if endStr := query.Get("end_date"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
		filter.End = &end
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	transactions, err := h.store.ListTransactions(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if tx.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if tx.Direction != domain.DirectionIn && tx.Direction != domain.DirectionOut {
		middleware.WriteError(w, http.StatusBadRequest, "direction must be 'in' or 'out'")
		return
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = time.Now()
	}
	if tx.Source == "" {
		tx.Source = domain.SourceClassifier
	}

	if err := h.store.InsertTransaction(ctx, &tx); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to insert transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, &tx)
}

// CategoryTotals handles GET /api/transactions/totals
func (h *TransactionsHandler) CategoryTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	var start, end time.Time
	var err error

	if startStr := query.Get("start_date"); startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	}
	if endStr := query.Get("end_date"); endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	}

	totals, err := h.store.CategoryTotals(ctx, start, end, query.Get("direction"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query category totals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query category totals")
		return
	}

	if totals == nil {
		totals = []*postgres.CategoryTotal{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totals": totals,
		"count":  len(totals),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
