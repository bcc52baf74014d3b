package reconciler

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/internal/assignments"
	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

const (
	defaultBatchSize   = 50
	defaultMaxAttempts = 10
)

// txRunner abstracts the transactional database entrypoint.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AssignmentSyncJobParams configure the deferred assignment sync job.
type AssignmentSyncJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repo        Repository
	Assignments assignments.Repository
	BatchSize   int
	MaxAttempts int
}

// NewAssignmentSyncJob builds the job that replays queued assignment
// quantity deltas. Each delta committed with a ledger entry whose follow-up
// assignment update failed; the ledger row is authoritative, so the job only
// ever replays the secondary write.
func NewAssignmentSyncJob(params AssignmentSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("reconciler repository required")
	}
	if params.Assignments == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &assignmentSyncJob{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repo,
		assignments: params.Assignments,
		batchSize:   batch,
		maxAttempts: maxAttempts,
	}, nil
}

type assignmentSyncJob struct {
	logg        *logger.Logger
	db          txRunner
	repo        Repository
	assignments assignments.Repository
	batchSize   int
	maxAttempts int
}

func (j *assignmentSyncJob) Name() string { return "assignment-sync" }

func (j *assignmentSyncJob) Run(ctx context.Context) error {
	pending, err := j.repo.ListPending(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("list pending syncs: %w", err)
	}

	var errs error
	replayed := 0
	parked := 0
	for i := range pending {
		outcome, err := j.replay(ctx, &pending[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		switch outcome {
		case outcomeApplied:
			replayed++
		case outcomeParked:
			parked++
		}
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(pending),
		"replayed":   replayed,
		"parked":     parked,
	})
	j.logg.Info(reportCtx, "assignment sync loop complete")
	return errs
}

type replayOutcome int

const (
	outcomeApplied replayOutcome = iota
	outcomeRetried
	outcomeParked
)

// replay applies the queued delta and closes the row in one transaction so a
// crash between the two writes cannot double-apply the delta.
func (j *assignmentSyncJob) replay(ctx context.Context, row *models.PendingAssignmentSync) (replayOutcome, error) {
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sync_id":       row.ID,
		"assignment_id": row.AssignmentID,
		"delta":         row.Delta,
	})
	attempts := row.Attempts + 1

	txErr := j.db.WithTx(logCtx, func(tx *gorm.DB) error {
		adjusted, err := j.assignments.WithTx(tx).AdjustQuantity(logCtx, row.AssignmentID, row.Delta)
		if err != nil {
			return fmt.Errorf("adjust assignment quantity: %w", err)
		}
		if !adjusted {
			j.logg.Info(logCtx, "assignment gone or untracked; closing sync")
		}
		updated, err := j.repo.WithTx(tx).MarkApplied(logCtx, row.ID, attempts)
		if err != nil {
			return fmt.Errorf("mark sync applied: %w", err)
		}
		if !updated {
			return fmt.Errorf("sync %s already claimed", row.ID)
		}
		return nil
	})
	if txErr == nil {
		return outcomeApplied, nil
	}

	if attempts >= j.maxAttempts {
		if _, markErr := j.repo.MarkFailed(logCtx, row.ID, attempts, txErr.Error()); markErr != nil {
			return outcomeParked, fmt.Errorf("mark sync failed: %w", markErr)
		}
		j.logg.Error(logCtx, "sync exhausted its attempt budget", txErr)
		return outcomeParked, nil
	}
	if _, markErr := j.repo.MarkRetry(logCtx, row.ID, attempts, txErr.Error()); markErr != nil {
		return outcomeRetried, fmt.Errorf("record sync attempt: %w", markErr)
	}
	return outcomeRetried, fmt.Errorf("replay sync %s: %w", row.ID, txErr)
}
