// Package pipeline executes a workflow graph as a document summarization run.
// The engine validates the graph, then walks a fixed stage sequence, invoking
// the handler registered for each stage kind present in the graph. Every
// failure resolves to a terminal State; nothing propagates as an unhandled error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/brief/internal/dispatch"
	"github.com/JaimeStill/brief/internal/extract"
	"github.com/JaimeStill/brief/internal/language"
	"github.com/JaimeStill/brief/internal/metrics"
	"github.com/JaimeStill/brief/internal/summarize"
	"github.com/JaimeStill/brief/pkg/graph"
	"github.com/JaimeStill/brief/pkg/telemetry"
)

const tracerName = "github.com/JaimeStill/brief/internal/pipeline"

// Summarizer produces a summary of text in the given language.
type Summarizer interface {
	Summarize(ctx context.Context, text string, lang language.Language) (*summarize.Result, error)
}

// Dispatcher delivers a message to a recipient.
type Dispatcher interface {
	Send(ctx context.Context, recipient, message string) error
}

// Observer receives a snapshot of the state after each transition.
type Observer func(State)

// handler executes one stage kind. Returning false ends the run;
// the handler has already set a terminal phase.
type handler func(ctx context.Context, r *run) bool

// Engine sequences pipeline stages. It holds no per-run state and is
// safe for concurrent runs over distinct sessions.
type Engine struct {
	extractor  extract.Extractor
	summarizer Summarizer
	dispatcher Dispatcher
	logger     *slog.Logger
	tracer     trace.Tracer
	handlers   map[graph.Kind]handler
}

// New creates an Engine from its stage collaborators.
func New(
	extractor extract.Extractor,
	summarizer Summarizer,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		extractor:  extractor,
		summarizer: summarizer,
		dispatcher: dispatcher,
		logger:     logger.With("system", "pipeline"),
		tracer:     otel.Tracer(tracerName),
	}

	e.handlers = map[graph.Kind]handler{
		graph.KindOpenDocument:   e.openDocument,
		graph.KindExtractText:    e.extractText,
		graph.KindSummarize:      e.summarize,
		graph.KindSendEmail:      e.enableDispatch,
		graph.KindShowEmailCount: e.showSentCount,
	}

	return e
}

type run struct {
	session *Session
	observe Observer
	state   State
	span    trace.Span
}

func (r *run) emit() {
	r.session.State = r.state
	if r.observe != nil {
		r.observe(r.state)
	}
}

func (r *run) transition(phase Phase) {
	r.state.Phase = phase
	r.span.AddEvent("phase", trace.WithAttributes(attribute.String("phase", string(phase))))
	r.emit()
}

func (r *run) finish(phase Phase, outcome Outcome, err error) {
	now := time.Now().UTC()
	r.state.Outcome = outcome
	r.state.CompletedAt = &now
	if err != nil {
		r.state.err = err
		r.state.Error = err.Error()
		telemetry.SetError(r.span, err)
	}
	r.transition(phase)
}

// Run executes g against the session's selected document and returns the terminal state.
// The session's latest state is replaced after every transition, and observe,
// when non-nil, receives each transition in order.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, sess *Session, observe Observer) State {
	ctx, span := e.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	metrics.RunsActive.Inc()
	defer metrics.RunsActive.Dec()

	r := &run{
		session: sess,
		observe: observe,
		span:    span,
		state: State{
			RunID:          uuid.New(),
			Phase:          PhaseIdle,
			DispatchStatus: dispatch.StatusIdle,
			Recipient:      sess.Recipient,
			StartedAt:      time.Now().UTC(),
		},
	}

	span.SetAttributes(attribute.String("brief.run.id", r.state.RunID.String()))
	r.transition(PhaseValidating)

	if !e.validate(ctx, g, r) {
		return e.complete(ctx, r)
	}

	for _, kind := range sequence {
		if !r.state.Stages.Has(kind) {
			continue
		}
		if !e.handlers[kind](ctx, r) {
			return e.complete(ctx, r)
		}
	}

	if r.state.DispatchEnabled {
		r.finish(PhaseAwaitingDispatch, r.state.Outcome, nil)
	} else {
		r.finish(PhaseDone, r.state.Outcome, nil)
	}

	return e.complete(ctx, r)
}

func (e *Engine) complete(ctx context.Context, r *run) State {
	metrics.RunsTotal.WithLabelValues(string(r.state.Outcome)).Inc()
	r.span.SetAttributes(attribute.String("brief.run.outcome", string(r.state.Outcome)))

	e.logger.InfoContext(
		ctx, "run complete",
		"run_id", r.state.RunID,
		"phase", r.state.Phase,
		"outcome", r.state.Outcome,
		"duration", r.state.CompletedAt.Sub(r.state.StartedAt),
	)

	return r.state
}

// stage times fn under a child span and records its duration.
func (e *Engine) stage(ctx context.Context, kind graph.Kind, fn func(context.Context) error) error {
	ctx, span := e.tracer.Start(ctx, "pipeline."+string(kind))
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	metrics.StageDuration.
		WithLabelValues(string(kind), metrics.Status(err)).
		Observe(time.Since(start).Seconds())

	if err != nil {
		telemetry.SetError(span, err)
	}
	return err
}

func (e *Engine) validate(ctx context.Context, g *graph.Graph, r *run) bool {
	report, err := Validate(g)
	r.state.Order = report.Order
	r.state.Stages = report.Stages

	if err == nil && r.session.Document == nil {
		err = fmt.Errorf("%w: %w", ErrValidation, ErrNoDocument)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "validation failed", "run_id", r.state.RunID, "error", err)
		r.finish(PhaseFailed, OutcomeValidationFailed, err)
		return false
	}

	e.logger.InfoContext(ctx, "validation complete", "run_id", r.state.RunID, "order", report.Order)
	return true
}

func (e *Engine) cancelled(ctx context.Context, r *run) bool {
	if err := ctx.Err(); err != nil {
		r.finish(PhaseFailed, OutcomeCancelled, err)
		return true
	}
	return false
}

func (e *Engine) openDocument(ctx context.Context, r *run) bool {
	r.state.Document = info(r.session.Document)
	r.emit()
	return true
}

func (e *Engine) extractText(ctx context.Context, r *run) bool {
	r.transition(PhaseExtracting)

	var text string
	err := e.stage(ctx, graph.KindExtractText, func(ctx context.Context) error {
		var err error
		text, err = e.extractor.Extract(ctx, r.session.Document)
		return err
	})

	if err != nil {
		if e.cancelled(ctx, r) {
			return false
		}
		if !errors.Is(err, extract.ErrDecode) {
			err = fmt.Errorf("%w: %w", extract.ErrDecode, err)
		}
		e.logger.WarnContext(ctx, "extraction failed", "run_id", r.state.RunID, "error", err)
		r.finish(PhaseFailed, OutcomeDecodeFailed, err)
		return false
	}

	r.state.ExtractedText = &text

	// A fresh extraction starts a new dispatch cycle.
	r.session.Recipient = ""
	r.state.Recipient = ""
	r.state.DispatchStatus = dispatch.StatusIdle
	r.state.DispatchError = ""

	if !language.HasLetters(text) {
		e.logger.InfoContext(ctx, "no text found", "run_id", r.state.RunID)
		r.state.Summary = ptr(NoTextFoundSummary)
		r.finish(PhaseDone, OutcomeNoTextFound, nil)
		return false
	}

	r.transition(PhaseClassifying)
	lang := language.Classify(text)
	r.state.Language = &lang
	r.emit()

	e.logger.InfoContext(
		ctx, "extraction complete",
		"run_id", r.state.RunID,
		"chars", len([]rune(text)),
		"language", lang,
	)
	return true
}

func (e *Engine) summarize(ctx context.Context, r *run) bool {
	// Summarization without extracted text has nothing to work from.
	if r.state.ExtractedText == nil || r.state.Language == nil {
		return true
	}

	r.transition(PhaseSummarizing)
	lang := *r.state.Language

	var result *summarize.Result
	err := e.stage(ctx, graph.KindSummarize, func(ctx context.Context) error {
		var err error
		result, err = e.summarizer.Summarize(ctx, *r.state.ExtractedText, lang)
		return err
	})

	metrics.SummarizeRequests.WithLabelValues(string(lang), metrics.Status(err)).Inc()

	if err != nil {
		if e.cancelled(ctx, r) {
			return false
		}
		e.logger.WarnContext(ctx, "summarization failed", "run_id", r.state.RunID, "error", err)
		r.state.Summary = ptr(SummarizationFailedSummary)
		r.state.Outcome = OutcomeSummaryDegraded
		r.state.err = err
		r.state.Error = err.Error()
		telemetry.SetError(r.span, err)
		r.emit()
		return true
	}

	r.state.Summary = &result.Summary
	r.state.Model = result.Model
	r.state.Outcome = OutcomeSummarized
	r.emit()

	e.logger.InfoContext(
		ctx, "summarization complete",
		"run_id", r.state.RunID,
		"language", lang,
		"model", result.Model,
	)
	return true
}

func (e *Engine) enableDispatch(ctx context.Context, r *run) bool {
	if r.state.Summary == nil || e.dispatcher == nil {
		return true
	}
	r.state.DispatchEnabled = true
	r.emit()
	return true
}

func (e *Engine) showSentCount(ctx context.Context, r *run) bool {
	r.state.SentCount = ptr(r.session.SentCount)
	r.emit()
	return true
}

// Dispatch sends the latest run's summary to recipient. It is available only
// after a run that enabled dispatch and produced a summary, and not while a send
// is in flight. Delivery failures settle the dispatch status to error and are
// reported in the returned state rather than as an error.
func (e *Engine) Dispatch(ctx context.Context, sess *Session, recipient string, observe Observer) (State, error) {
	state := sess.State

	if !state.DispatchEnabled || state.Summary == nil || state.DispatchStatus == dispatch.StatusSending {
		return state, ErrDispatchUnavailable
	}
	if recipient == "" {
		return state, ErrNoRecipient
	}

	ctx, span := e.tracer.Start(ctx, "pipeline.dispatch")
	defer span.End()

	publish := func() {
		sess.State = state
		if observe != nil {
			observe(state)
		}
	}

	sess.Recipient = recipient
	state.Recipient = recipient
	state.DispatchStatus = dispatch.StatusSending
	state.DispatchError = ""
	state.Phase = PhaseAwaitingDispatch
	publish()

	err := e.stage(ctx, graph.KindSendEmail, func(ctx context.Context) error {
		return e.dispatcher.Send(ctx, recipient, *state.Summary)
	})

	if err != nil {
		e.logger.WarnContext(ctx, "dispatch failed", "run_id", state.RunID, "error", err)
		telemetry.SetError(span, err)
		state.DispatchStatus = dispatch.StatusError
		state.DispatchError = err.Error()
	} else {
		sess.SentCount++
		state.DispatchStatus = dispatch.StatusSent
		if state.SentCount != nil {
			state.SentCount = ptr(sess.SentCount)
		}
		e.logger.InfoContext(ctx, "dispatch complete", "run_id", state.RunID, "sent_count", sess.SentCount)
	}

	metrics.DispatchTotal.WithLabelValues(string(state.DispatchStatus)).Inc()
	state.Phase = PhaseDone
	publish()

	return state, nil
}
