package runs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/brief/pkg/pagination"
	"github.com/JaimeStill/brief/pkg/query"
	"github.com/JaimeStill/brief/pkg/repository"
)

var dbErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalidInput,
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a run repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "runs"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Run], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Summary")

	filters.Apply(qb).OrderBy(page.Sort)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &run, nil
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Run, error) {
	q := `
		INSERT INTO runs(id, session_id, filename, content_type, size_bytes, page_count, storage_key,
			phase, outcome, language, model, summary, error, dispatch_status, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + returning

	args := []any{
		cmd.ID,
		cmd.SessionID,
		cmd.Filename,
		cmd.ContentType,
		cmd.SizeBytes,
		cmd.PageCount,
		cmd.StorageKey,
		cmd.Phase,
		cmd.Outcome,
		cmd.Language,
		cmd.Model,
		cmd.Summary,
		cmd.Error,
		cmd.DispatchStatus,
		cmd.StartedAt,
		cmd.CompletedAt,
	}

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRun)
	})
	if err != nil {
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("run recorded", "id", run.ID, "outcome", run.Outcome)
	return &run, nil
}

func (r *repo) UpdateDispatch(ctx context.Context, id uuid.UUID, cmd DispatchCommand) (*Run, error) {
	q := `
		UPDATE runs
		SET phase = $2, dispatch_status = $3, recipient = $4, dispatch_error = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + returning

	args := []any{id, cmd.Phase, cmd.DispatchStatus, cmd.Recipient, cmd.DispatchError}

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRun)
	})
	if err != nil {
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("run dispatch updated", "id", id, "dispatch_status", run.DispatchStatus)
	return &run, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM runs WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return dbErrors.Map(err)
	}

	r.logger.Info("run deleted", "id", id)
	return nil
}
