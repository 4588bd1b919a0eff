package jobs

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockJobStore implements the JobStore interface for testing
type MockJobStore struct {
	mutex          sync.RWMutex
	records        map[uuid.UUID]*JobRecord
	statusTimes    map[uuid.UUID]time.Time
	SaveFn         func(ctx context.Context, job Job) error
	UpdateStatusFn func(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error
}

// NewMockJobStore creates a new MockJobStore with default implementations
func NewMockJobStore() *MockJobStore {
	store := &MockJobStore{
		records:     make(map[uuid.UUID]*JobRecord),
		statusTimes: make(map[uuid.UUID]time.Time),
	}

	// Default behavior for SaveJob
	store.SaveFn = func(ctx context.Context, job Job) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()

		now := time.Now().UTC()
		store.records[job.ID()] = &JobRecord{
			ID:        job.ID(),
			Type:      job.Type(),
			Payload:   job.Payload(),
			Status:    job.Status(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		store.statusTimes[job.ID()] = now
		return nil
	}

	// Default behavior for UpdateJobStatus
	store.UpdateStatusFn = func(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()

		record, exists := store.records[jobID]
		if !exists {
			return nil // Simulate "not found" as a no-op for testing simplicity
		}

		record.Status = status
		record.ErrorMessage = errorMsg
		record.UpdatedAt = time.Now().UTC()
		store.statusTimes[jobID] = record.UpdatedAt
		return nil
	}

	return store
}

// SaveJob persists a job to the mock store
func (s *MockJobStore) SaveJob(ctx context.Context, job Job) error {
	return s.SaveFn(ctx, job)
}

// UpdateJobStatus updates the status of a job in the mock store
func (s *MockJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status JobStatus,
	errorMsg string,
) error {
	return s.UpdateStatusFn(ctx, jobID, status, errorMsg)
}

// GetPendingJobs retrieves all job records with "pending" status
func (s *MockJobStore) GetPendingJobs(ctx context.Context) ([]*JobRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var pending []*JobRecord
	for _, record := range s.records {
		if record.Status == JobStatusPending {
			pending = append(pending, record)
		}
	}

	return pending, nil
}

// GetProcessingJobs retrieves job records with "processing" status
func (s *MockJobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*JobRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var processing []*JobRecord
	now := time.Now()

	for _, record := range s.records {
		if record.Status == JobStatusProcessing {
			statusTime, exists := s.statusTimes[record.ID]
			// If olderThan is zero, include all processing jobs
			if olderThan == 0 || (exists && now.Sub(statusTime) > olderThan) {
				processing = append(processing, record)
			}
		}
	}

	return processing, nil
}

// GetRecord returns the stored record for a job, for test assertions
func (s *MockJobStore) GetRecord(jobID uuid.UUID) (*JobRecord, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.records[jobID]
	return record, ok
}

// WithTx implements JobStore.WithTx for the mock store
// In the mock implementation, we just return the same store instance
func (s *MockJobStore) WithTx(tx *sql.Tx) JobStore {
	return s
}
