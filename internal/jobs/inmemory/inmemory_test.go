package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masareef/brain/internal/jobs"
)

func TestStore_SaveAndGetJob(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ParseTextJob{
		JobID:     "job-1",
		Text:      "Coffee 25 SAR",
		Status:    jobs.JobStatusPending,
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.SaveJob(ctx, job))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Coffee 25 SAR", got.Text)
	assert.Equal(t, jobs.JobStatusPending, got.Status)

	// Stored copy must not alias the caller's struct
	job.Text = "mutated"
	got, err = store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Coffee 25 SAR", got.Text)
}

func TestStore_SaveJob_RequiresID(t *testing.T) {
	store := NewStore()

	err := store.SaveJob(context.Background(), &jobs.ParseTextJob{})
	assert.Error(t, err)
}

func TestStore_GetJob_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.GetJob(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestStore_ListJobs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		status := jobs.JobStatusCompleted
		if i%2 == 0 {
			status = jobs.JobStatusPending
		}
		require.NoError(t, store.SaveJob(ctx, &jobs.ParseTextJob{
			JobID:     fmt.Sprintf("job-%d", i),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "job-4", all[0].JobID, "expected newest first")

	pending, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	offset, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 4})
	require.NoError(t, err)
	assert.Len(t, offset, 1)

	empty, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_UpdateJobStatus(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveJob(ctx, &jobs.ParseTextJob{
		JobID:  "job-1",
		Status: jobs.JobStatusPending,
	}))

	require.NoError(t, store.UpdateJobStatus(ctx, "job-1", jobs.JobStatusFailed, "boom"))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	assert.Error(t, store.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, ""))
}

func TestQueue_PublishAndProcess(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 2, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var processed []string

	err := queue.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		processed = append(processed, job.GetID())
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	job := &jobs.ParseTextJob{Text: "Paid 40 SAR for lunch"}
	require.NoError(t, queue.PublishParseText(ctx, job))
	assert.NotEmpty(t, job.JobID, "publish should assign an ID")
	assert.Equal(t, 3, job.MaxRetries)

	require.Eventually(t, func() bool {
		stored, err := store.GetJob(ctx, job.JobID)
		return err == nil && stored.Status == jobs.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{job.JobID}, processed)
}

func TestQueue_RetriesFailedJobs(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0

	err := queue.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			return fmt.Errorf("transient failure")
		}
		return nil
	})
	require.NoError(t, err)

	job := &jobs.ParseTextJob{Text: "Transfer 200 SAR", MaxRetries: 2}
	require.NoError(t, queue.PublishParseText(ctx, job))

	require.Eventually(t, func() bool {
		stored, err := store.GetJob(ctx, job.JobID)
		return err == nil && stored.Status == jobs.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestQueue_FailsAfterMaxRetries(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := queue.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		return fmt.Errorf("permanent failure")
	})
	require.NoError(t, err)

	job := &jobs.ParseTextJob{Text: "bad input", MaxRetries: 1}
	require.NoError(t, queue.PublishParseText(ctx, job))

	require.Eventually(t, func() bool {
		stored, err := store.GetJob(ctx, job.JobID)
		return err == nil && stored.Status == jobs.JobStatusFailed
	}, 5*time.Second, 20*time.Millisecond)

	stored, err := store.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Contains(t, stored.Error, "permanent failure")
}

func TestQueue_PublishAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, nil)
	require.NoError(t, queue.Close())

	err := queue.PublishParseText(context.Background(), &jobs.ParseTextJob{Text: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "queue is closed")
}

func TestQueue_StopWaitsForWorkers(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)

	ctx := context.Background()
	release := make(chan struct{})

	err := queue.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, queue.PublishParseText(ctx, &jobs.ParseTextJob{Text: "slow job"}))

	// Give the worker a moment to pick up the job, then release it and stop.
	time.Sleep(50 * time.Millisecond)
	close(release)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, queue.Stop(stopCtx))
}
