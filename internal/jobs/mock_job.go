package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MockJob is a simple implementation of the Job interface for testing
type MockJob struct {
	JobID      uuid.UUID
	JobType    string
	JobPayload []byte
	JobStatus  JobStatus
	ExecuteFn  func(ctx context.Context) error
}

// NewMockJob creates a new MockJob with the given ID and type
func NewMockJob(id uuid.UUID, jobType string, payload []byte) *MockJob {
	return &MockJob{
		JobID:      id,
		JobType:    jobType,
		JobPayload: payload,
		JobStatus:  JobStatusPending,
		ExecuteFn:  func(ctx context.Context) error { return nil },
	}
}

// ID returns the job's unique identifier
func (j *MockJob) ID() uuid.UUID {
	return j.JobID
}

// Type returns the job type identifier
func (j *MockJob) Type() string {
	return j.JobType
}

// Payload returns the job data as a byte slice
func (j *MockJob) Payload() []byte {
	return j.JobPayload
}

// Status returns the current job status
func (j *MockJob) Status() JobStatus {
	return j.JobStatus
}

// Execute runs the job logic
func (j *MockJob) Execute(ctx context.Context) error {
	return j.ExecuteFn(ctx)
}

// MockPayload is a sample payload structure used for testing
type MockPayload struct {
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// CreateMockJobWithPayload is a helper function to create a MockJob with a structured payload
func CreateMockJobWithPayload(message string) *MockJob {
	payload := MockPayload{
		Message: message,
		Created: time.Now().UTC(),
	}

	data, _ := json.Marshal(payload)
	return NewMockJob(uuid.New(), "mock_job", data)
}
