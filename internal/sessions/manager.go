package sessions

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/brief/internal/extract"
	"github.com/JaimeStill/brief/internal/metrics"
	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/internal/runs"
	"github.com/JaimeStill/brief/pkg/graph"
	"github.com/JaimeStill/brief/pkg/lifecycle"
	"github.com/JaimeStill/brief/pkg/storage"
)

type manager struct {
	engine   Engine
	store    storage.System
	recorder Recorder
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
}

func newManager(engine Engine, store storage.System, recorder Recorder, logger *slog.Logger) *manager {
	return &manager{
		engine:   engine,
		store:    store,
		recorder: recorder,
		logger:   logger.With("system", "sessions"),
		entries:  make(map[uuid.UUID]*entry),
	}
}

func (m *manager) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, m.logger, maxUploadSize)
}

// Start registers a shutdown hook that ends every open state stream.
func (m *manager) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()

		m.mu.RLock()
		defer m.mu.RUnlock()
		for _, e := range m.entries {
			e.close()
		}
		m.logger.Info("session streams closed", "sessions", len(m.entries))
	})
	return nil
}

func (m *manager) Create(ctx context.Context) Info {
	id := uuid.New()
	e := newEntry(id)

	m.mu.Lock()
	m.entries[id] = e
	m.mu.Unlock()

	metrics.SessionsActive.Inc()
	m.logger.InfoContext(ctx, "session created", "id", id)
	return e.snapshot()
}

func (m *manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.entries))
	for _, e := range m.entries {
		infos = append(infos, e.snapshot())
	}
	m.mu.RUnlock()

	slices.SortFunc(infos, func(a, b Info) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return infos
}

func (m *manager) Find(id uuid.UUID) (*Info, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	info := e.snapshot()
	return &info, nil
}

func (m *manager) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	if !e.run.TryLock() {
		return ErrRunInProgress
	}
	defer e.run.Unlock()

	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()

	if key := e.snapshot().StorageKey; key != "" {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.WarnContext(ctx, "session blob delete failed", "key", key, "error", err)
		}
	}

	e.close()
	metrics.SessionsActive.Dec()
	m.logger.InfoContext(ctx, "session deleted", "id", id)
	return nil
}

func (m *manager) Upload(ctx context.Context, id uuid.UUID, cmd UploadCommand) (*Info, error) {
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFile)
	}

	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	if !e.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.run.Unlock()

	contentType := resolveContentType(cmd.ContentType, cmd.Data)
	key := storageKey(id, cmd.Filename)

	if err := m.store.Upload(ctx, key, bytes.NewReader(cmd.Data), contentType); err != nil {
		return nil, fmt.Errorf("upload session document: %w", err)
	}

	previous := e.snapshot().StorageKey
	if previous != "" && previous != key {
		if err := m.store.Delete(ctx, previous); err != nil {
			m.logger.WarnContext(ctx, "previous document delete failed", "key", previous, "error", err)
		}
	}

	doc := &extract.Document{
		Name:        cmd.Filename,
		ContentType: contentType,
		Data:        cmd.Data,
	}
	e.session.Select(doc)

	pageCount := m.pageCount(ctx, doc)

	e.mu.Lock()
	e.info.Document = &pipeline.DocumentInfo{
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Size:        doc.Size(),
	}
	e.info.PageCount = pageCount
	e.info.StorageKey = key
	info := e.info
	e.mu.Unlock()

	m.logger.InfoContext(
		ctx, "document selected",
		"id", id,
		"filename", doc.Name,
		"content_type", contentType,
		"size", doc.Size(),
	)
	return &info, nil
}

func (m *manager) SetRecipient(id uuid.UUID, recipient string) (*Info, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	if !e.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.run.Unlock()

	e.session.SetRecipient(strings.TrimSpace(recipient))
	e.sync()

	info := e.snapshot()
	return &info, nil
}

func (m *manager) Run(ctx context.Context, id uuid.UUID, g *graph.Graph) (*pipeline.State, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	if !e.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.run.Unlock()

	state := m.engine.Run(ctx, g, e.session, e.publish)
	e.sync()

	m.record(context.WithoutCancel(ctx), e, state)
	return &state, nil
}

func (m *manager) Dispatch(ctx context.Context, id uuid.UUID, recipient string) (*pipeline.State, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	if !e.run.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.run.Unlock()

	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = e.session.Recipient
	}

	state, err := m.engine.Dispatch(ctx, e.session, recipient, e.publish)
	if err != nil {
		return nil, err
	}
	e.sync()

	m.recordDispatch(context.WithoutCancel(ctx), state)
	return &state, nil
}

func (m *manager) Subscribe(id uuid.UUID) (<-chan pipeline.State, func(), error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cleanup := e.subscribe()
	return ch, cleanup, nil
}

func (m *manager) entry(id uuid.UUID) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *manager) record(ctx context.Context, e *entry, state pipeline.State) {
	if m.recorder == nil {
		return
	}

	info := e.snapshot()
	cmd := runs.RecordCommand{
		ID:             state.RunID,
		SessionID:      info.ID,
		PageCount:      info.PageCount,
		StorageKey:     info.StorageKey,
		Phase:          string(state.Phase),
		Outcome:        string(state.Outcome),
		Model:          optional(state.Model),
		Summary:        state.Summary,
		Error:          optional(state.Error),
		DispatchStatus: string(state.DispatchStatus),
		StartedAt:      state.StartedAt,
		CompletedAt:    state.CompletedAt,
	}
	if doc := info.Document; doc != nil {
		cmd.Filename = doc.Name
		cmd.ContentType = doc.ContentType
		cmd.SizeBytes = doc.Size
	}
	if state.Language != nil {
		cmd.Language = optional(string(*state.Language))
	}

	if _, err := m.recorder.Record(ctx, cmd); err != nil {
		m.logger.ErrorContext(ctx, "run record failed", "run_id", state.RunID, "error", err)
	}
}

func (m *manager) recordDispatch(ctx context.Context, state pipeline.State) {
	if m.recorder == nil {
		return
	}

	cmd := runs.DispatchCommand{
		Phase:          string(state.Phase),
		DispatchStatus: string(state.DispatchStatus),
		Recipient:      state.Recipient,
		DispatchError:  optional(state.DispatchError),
	}

	if _, err := m.recorder.UpdateDispatch(ctx, state.RunID, cmd); err != nil {
		m.logger.ErrorContext(ctx, "dispatch record failed", "run_id", state.RunID, "error", err)
	}
}

func (m *manager) pageCount(ctx context.Context, doc *extract.Document) *int {
	if extract.Detect(doc.Data) != extract.ContentTypePDF {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(doc.Data), nil)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to read PDF page count", "name", doc.Name, "error", err)
		return nil
	}
	return &count
}

func resolveContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return extract.Detect(data)
}

func storageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("sessions/%s/%s", id, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
