package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/brief/internal/dispatch"
	"github.com/JaimeStill/brief/internal/extract"
	"github.com/JaimeStill/brief/internal/language"
)

// Phase is the position of a run in the pipeline.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseValidating       Phase = "validating"
	PhaseExtracting       Phase = "extracting"
	PhaseClassifying      Phase = "classifying"
	PhaseSummarizing      Phase = "summarizing"
	PhaseAwaitingDispatch Phase = "awaiting-dispatch"
	PhaseDone             Phase = "done"
	PhaseFailed           Phase = "failed"
)

// Terminal reports whether no further stage will run in this phase.
// AwaitingDispatch is terminal for the run; only an explicit dispatch moves it.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed || p == PhaseAwaitingDispatch
}

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeSummarized       Outcome = "summarized"
	OutcomeSummaryDegraded  Outcome = "summary-degraded"
	OutcomeNoTextFound      Outcome = "no-text-found"
	OutcomeValidationFailed Outcome = "validation-failed"
	OutcomeDecodeFailed     Outcome = "decode-failed"
	OutcomeCancelled        Outcome = "cancelled"
)

// Informational summaries substituted when no model summary is available.
const (
	NoTextFoundSummary         = "No text found in document."
	SummarizationFailedSummary = "Summarization failed."
)

// DocumentInfo describes the selected document without its contents.
type DocumentInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// State is the run-scoped pipeline record handed to observers after each transition.
type State struct {
	RunID           uuid.UUID          `json:"run_id"`
	Phase           Phase              `json:"phase"`
	Outcome         Outcome            `json:"outcome,omitempty"`
	Document        *DocumentInfo      `json:"document,omitempty"`
	Order           []string           `json:"order,omitempty"`
	Stages          StageSet           `json:"stages,omitempty"`
	ExtractedText   *string            `json:"extracted_text"`
	Language        *language.Language `json:"language"`
	Summary         *string            `json:"summary"`
	Model           string             `json:"model,omitempty"`
	DispatchEnabled bool               `json:"dispatch_enabled"`
	DispatchStatus  dispatch.Status    `json:"dispatch_status"`
	DispatchError   string             `json:"dispatch_error,omitempty"`
	Recipient       string             `json:"recipient,omitempty"`
	SentCount       *int               `json:"sent_count,omitempty"`
	Error           string             `json:"error,omitempty"`
	StartedAt       time.Time          `json:"started_at"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`

	err error
}

// Err returns the error that ended the run, if any.
func (s State) Err() error {
	return s.err
}

// IdleState returns the state of a session that has not run.
func IdleState() State {
	return State{
		Phase:          PhaseIdle,
		DispatchStatus: dispatch.StatusIdle,
	}
}

// Session retains what survives between runs: the selected document,
// the recipient typed so far, the count of sent dispatches, and the latest state.
// A Session is not safe for concurrent runs; callers serialize access.
type Session struct {
	Document  *extract.Document
	Recipient string
	SentCount int
	State     State
}

// NewSession creates a session in the idle state.
func NewSession() *Session {
	return &Session{State: IdleState()}
}

// Select retains doc for subsequent runs.
func (s *Session) Select(doc *extract.Document) {
	s.Document = doc
}

// SetRecipient records the recipient typed so far.
func (s *Session) SetRecipient(recipient string) {
	s.Recipient = recipient
	s.State.Recipient = recipient
}

func info(doc *extract.Document) *DocumentInfo {
	return &DocumentInfo{
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Size:        doc.Size(),
	}
}

func ptr[T any](v T) *T {
	return &v
}
