package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a background job
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job type constants
const (
	// JobTypeNotification represents the job type for sending task email notifications
	JobTypeNotification = "task_notification"
)

// Job represents a unit of background work to be processed
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() JobStatus

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// JobRecord is the persisted form of a job as stored in the database.
// Recovered records carry no behavior; the runner rebuilds executable
// jobs from them through a registered reconstructor for the job type.
type JobRecord struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       JobStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobStore defines the interface for persisting jobs
type JobStore interface {
	// SaveJob persists a job to the database
	SaveJob(ctx context.Context, job Job) error

	// UpdateJobStatus updates the status of a job
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error

	// GetPendingJobs retrieves all job records with "pending" status
	GetPendingJobs(ctx context.Context) ([]*JobRecord, error)

	// GetProcessingJobs retrieves job records with "processing" status.
	// If olderThan is non-zero, only returns jobs that have been in this
	// state longer than the specified duration.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*JobRecord, error)

	// WithTx returns a new JobStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) JobStore
}

// Reconstructor rebuilds an executable job from a persisted record.
// Each job type registers one with the runner so that recovery can
// requeue work that survived a restart.
type Reconstructor func(record *JobRecord) (Job, error)
