package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/store"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Journal records the tasks in the repository as they start and finish.
type Journal struct {
	repository *Repository
	logger     *slog.Logger
}

func NewJournal(repository *Repository, logger *slog.Logger) *Journal {
	return &Journal{
		repository: repository,
		logger:     logger.With("component", "task-journal"),
	}
}

func (j *Journal) TaskStarted(ctx context.Context, t *task.Task) {
	j.save(ctx, t)
}

func (j *Journal) TaskFinished(ctx context.Context, t *task.Task) {
	j.save(ctx, t)
}

func (j *Journal) save(ctx context.Context, t *task.Task) {
	record, err := NewRecord(t.Snapshot())
	if err != nil {
		j.logger.ErrorContext(ctx, "could not convert task to record", slog.String("task_id", t.ID()), slogx.Error(err))
		return
	}

	if err := j.repository.Save(ctx, record); err != nil {
		j.logger.ErrorContext(ctx, "could not save task record", slog.String("task_id", t.ID()), slogx.Error(err))
	}
}

// NewRecord converts a task snapshot to a journal record.
func NewRecord(snapshot task.Snapshot) (*store.TaskRecord, error) {
	parameters, err := sonic.MarshalString(snapshot.Action.Parameters)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result, err := sonic.MarshalString(snapshot.Result)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counter := snapshot.Result.Counter

	return &store.TaskRecord{
		TaskID:        snapshot.ID,
		Type:          string(snapshot.Type),
		Function:      snapshot.Function,
		Action:        snapshot.Action.Name,
		Parameters:    parameters,
		State:         snapshot.State,
		ResultStatus:  string(snapshot.Result.Status),
		ResultMessage: snapshot.Result.Message,
		Result:        result,
		PathResults:   len(snapshot.Result.PathResults),
		FileOK:        counter.FileOK,
		FileError:     counter.FileError,
		FileIgnored:   counter.FileIgnored,
		PathNotExist:  counter.PathNotExist,
		StartedAt:     timePtr(snapshot.StartedAt),
		FinishedAt:    timePtr(snapshot.FinishedAt),
	}, nil
}

// DecodeResult returns the task result stored in the record.
func DecodeResult(record *store.TaskRecord) (*task.Result, error) {
	var result task.Result
	if err := sonic.UnmarshalString(record.Result, &result); err != nil {
		return nil, errors.WithStack(err)
	}

	return &result, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
