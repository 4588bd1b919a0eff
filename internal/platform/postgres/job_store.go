package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/jobs"
	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// PostgresJobStore implements the jobs.JobStore interface using PostgreSQL.
// Job rows give the in-memory queue its at-least-once guarantee: anything
// unfinished at shutdown is found and requeued by the runner's recovery pass.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgresJobStore.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements jobs.JobStore interface
var _ jobs.JobStore = (*PostgresJobStore)(nil)

// WithTx implements jobs.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) jobs.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// SaveJob persists a job to the database
func (s *PostgresJobStore) SaveJob(ctx context.Context, job jobs.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		job.ID(),
		job.Type(),
		job.Payload(),
		job.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save job to database: %w", MapError(err))
	}

	return nil
}

// UpdateJobStatus updates the status of a job in the database
func (s *PostgresJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status jobs.JobStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		jobID,
	)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("job_id", jobID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update job status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no job found with ID to update status",
			slog.String("job_id", jobID.String()))
		return nil // Job not found, treat as no-op
	}

	return nil
}

// GetPendingJobs retrieves all job records with "pending" status
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]*jobs.JobRecord, error) {
	return s.getJobsByStatus(ctx, jobs.JobStatusPending, 0)
}

// GetProcessingJobs retrieves job records with "processing" status
func (s *PostgresJobStore) GetProcessingJobs(
	ctx context.Context,
	olderThan time.Duration,
) ([]*jobs.JobRecord, error) {
	return s.getJobsByStatus(ctx, jobs.JobStatusProcessing, olderThan)
}

// getJobsByStatus is a helper method to get job records by status with an
// optional age filter
func (s *PostgresJobStore) getJobsByStatus(
	ctx context.Context,
	status jobs.JobStatus,
	olderThan time.Duration,
) ([]*jobs.JobRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var query string
	var args []interface{}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = []interface{}{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1
			ORDER BY created_at ASC
		`
		args = []interface{}{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query jobs by status: %w", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var records []*jobs.JobRecord

	for rows.Next() {
		var record jobs.JobRecord
		var jobStatus string
		var errorMessage sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.Type,
			&record.Payload,
			&jobStatus,
			&errorMessage,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			log.Error("failed to scan job row",
				slog.String("status", string(status)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		record.Status = jobs.JobStatus(jobStatus)
		record.ErrorMessage = errorMessage.String
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating job rows",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return records, nil
}
