package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

// ChangeRecordStore is the append-only ledger of task change records.
// No update or delete operation is exposed; records disappear only through
// the cascade when their task is deleted.
// Version: 1.0
type ChangeRecordStore interface {
	// Append persists the given records with server-assigned timestamps.
	// Callers that need all-or-nothing semantics for a batch should run the
	// append inside a transaction via WithTx; a bare append may persist a
	// prefix of the batch if the storage layer fails mid-way.
	Append(ctx context.Context, records []*domain.ChangeRecord) error

	// ListByTask returns all records for a task in insertion order.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ChangeRecord, error)

	// WithTx returns a new ChangeRecordStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ChangeRecordStore
}
