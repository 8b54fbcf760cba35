package jobs

import (
	"context"
	"time"

	"github.com/masareef/brain/internal/aiparse"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeParseText represents a model-backed text parsing job.
	JobTypeParseText JobType = "parse_text"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ParseTextJob represents a job to parse free-form transaction text with the model.
type ParseTextJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Text is the raw user text to parse.
	Text string `json:"text"`

	// CurrentDateTime anchors relative dates in the text ("yesterday", "last week").
	CurrentDateTime time.Time `json:"current_date_time"`

	// CustomCategories are user-defined categories accepted alongside the built-in set.
	CustomCategories []string `json:"custom_categories,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// Result holds the parse outcome once the job completes.
	Result *aiparse.Result `json:"result,omitempty"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ParseTextJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ParseTextJob) GetType() JobType {
	return JobTypeParseText
}

// GetStatus implements the Job interface.
func (j *ParseTextJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishParseText publishes a text parsing job.
	PublishParseText(ctx context.Context, job *ParseTextJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ParseTextJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ParseTextJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseTextJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
