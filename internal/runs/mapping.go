package runs

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/brief/pkg/query"
	"github.com/JaimeStill/brief/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "runs", "r").
	Project("id", "ID").
	Project("session_id", "SessionID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("phase", "Phase").
	Project("outcome", "Outcome").
	Project("language", "Language").
	Project("model", "Model").
	Project("summary", "Summary").
	Project("error", "Error").
	Project("dispatch_status", "DispatchStatus").
	Project("recipient", "Recipient").
	Project("dispatch_error", "DispatchError").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "StartedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for run queries.
// Nil fields are ignored. Filename uses case-insensitive contains matching.
// StartedAfter is inclusive and StartedBefore exclusive. Every other field
// matches exactly.
type Filters struct {
	SessionID      *uuid.UUID `json:"session_id,omitempty"`
	Filename       *string    `json:"filename,omitempty"`
	Outcome        *string    `json:"outcome,omitempty"`
	Language       *string    `json:"language,omitempty"`
	DispatchStatus *string    `json:"dispatch_status,omitempty"`
	StartedAfter   *time.Time `json:"started_after,omitempty"`
	StartedBefore  *time.Time `json:"started_before,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SessionID", f.SessionID).
		WhereContains("Filename", f.Filename).
		WhereEquals("Outcome", f.Outcome).
		WhereEquals("Language", f.Language).
		WhereEquals("DispatchStatus", f.DispatchStatus).
		WhereRange("StartedAt", f.StartedAfter, f.StartedBefore)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed session_id and RFC 3339 timestamps are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("session_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.SessionID = &id
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if o := values.Get("outcome"); o != "" {
		f.Outcome = &o
	}

	if l := values.Get("language"); l != "" {
		f.Language = &l
	}

	if ds := values.Get("dispatch_status"); ds != "" {
		f.DispatchStatus = &ds
	}

	f.StartedAfter = parseTime(values.Get("started_after"))
	f.StartedBefore = parseTime(values.Get("started_before"))

	return f
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

const returning = `id, session_id, filename, content_type, size_bytes, page_count, storage_key,
	phase, outcome, language, model, summary, error, dispatch_status, recipient, dispatch_error,
	started_at, completed_at, updated_at`

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	err := s.Scan(
		&r.ID,
		&r.SessionID,
		&r.Filename,
		&r.ContentType,
		&r.SizeBytes,
		&r.PageCount,
		&r.StorageKey,
		&r.Phase,
		&r.Outcome,
		&r.Language,
		&r.Model,
		&r.Summary,
		&r.Error,
		&r.DispatchStatus,
		&r.Recipient,
		&r.DispatchError,
		&r.StartedAt,
		&r.CompletedAt,
		&r.UpdatedAt,
	)
	return r, err
}
