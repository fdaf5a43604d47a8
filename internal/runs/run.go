// Package runs implements the run history domain.
// Every terminal pipeline run is recorded with its outcome, summary,
// and dispatch status so past runs can be listed and inspected.
package runs

import (
	"time"

	"github.com/google/uuid"
)

// Run is a recorded pipeline run.
type Run struct {
	ID             uuid.UUID  `json:"id"`
	SessionID      uuid.UUID  `json:"session_id"`
	Filename       string     `json:"filename"`
	ContentType    string     `json:"content_type"`
	SizeBytes      int64      `json:"size_bytes"`
	PageCount      *int       `json:"page_count"`
	StorageKey     string     `json:"storage_key"`
	Phase          string     `json:"phase"`
	Outcome        string     `json:"outcome"`
	Language       *string    `json:"language"`
	Model          *string    `json:"model"`
	Summary        *string    `json:"summary"`
	Error          *string    `json:"error"`
	DispatchStatus string     `json:"dispatch_status"`
	Recipient      *string    `json:"recipient"`
	DispatchError  *string    `json:"dispatch_error"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RecordCommand carries a terminal run to be stored.
// Nil pointer fields are stored as NULL.
type RecordCommand struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	Filename       string
	ContentType    string
	SizeBytes      int64
	PageCount      *int
	StorageKey     string
	Phase          string
	Outcome        string
	Language       *string
	Model          *string
	Summary        *string
	Error          *string
	DispatchStatus string
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// DispatchCommand carries a settled dispatch for an existing run.
type DispatchCommand struct {
	Phase          string
	DispatchStatus string
	Recipient      string
	DispatchError  *string
}
