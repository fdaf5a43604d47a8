package sessions

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/internal/runs"
	"github.com/JaimeStill/brief/pkg/graph"
	"github.com/JaimeStill/brief/pkg/lifecycle"
	"github.com/JaimeStill/brief/pkg/storage"
)

// Engine executes runs and dispatches against a pipeline session.
type Engine interface {
	Run(ctx context.Context, g *graph.Graph, sess *pipeline.Session, observe pipeline.Observer) pipeline.State
	Dispatch(ctx context.Context, sess *pipeline.Session, recipient string, observe pipeline.Observer) (pipeline.State, error)
}

// Recorder persists terminal runs and their dispatch results.
type Recorder interface {
	Record(ctx context.Context, cmd runs.RecordCommand) (*runs.Run, error)
	UpdateDispatch(ctx context.Context, id uuid.UUID, cmd runs.DispatchCommand) (*runs.Run, error)
}

// System defines the public contract for session operations.
type System interface {
	Handler(maxUploadSize int64) *Handler
	Start(lc *lifecycle.Coordinator) error

	Create(ctx context.Context) Info
	List() []Info
	Find(id uuid.UUID) (*Info, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Upload(ctx context.Context, id uuid.UUID, cmd UploadCommand) (*Info, error)
	SetRecipient(id uuid.UUID, recipient string) (*Info, error)

	Run(ctx context.Context, id uuid.UUID, g *graph.Graph) (*pipeline.State, error)
	Dispatch(ctx context.Context, id uuid.UUID, recipient string) (*pipeline.State, error)
	Subscribe(id uuid.UUID) (<-chan pipeline.State, func(), error)
}

// New creates an in-memory session system. A nil recorder disables run history.
func New(
	engine Engine,
	store storage.System,
	recorder Recorder,
	logger *slog.Logger,
) System {
	return newManager(engine, store, recorder, logger)
}
