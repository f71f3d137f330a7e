package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/store"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepository(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return NewRepository(store.New(db, slogx.NewTestLogger(t)))
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	repository := newRepository(t)
	journal := NewJournal(repository, slogx.NewTestLogger(t))

	def := &task.Definition{Name: "file.hash", Type: task.TypeFile}
	tsk := task.New(task.NewID(), task.TypeFile, def, task.Action{
		Name:       "hash",
		Parameters: task.Parameters{"input_paths": []string{"/a", "/b"}},
	})

	tsk.SetRunning(true)
	journal.TaskStarted(ctx, tsk)

	record, err := repository.GetByTaskID(ctx, tsk.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Equal(t, task.StateRunning.String(), record.State)
	require.Nil(t, record.FinishedAt)

	tsk.RecordPathResult(task.PathResult{Status: task.StatusOK, SrcPath: "/a"})
	tsk.RecordPathResult(task.PathResult{Status: task.StatusError, SrcPath: "/b", Message: "boom"})
	tsk.SetRunning(false)
	journal.TaskFinished(ctx, tsk)

	count, err := repository.Count(ctx)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Equal(t, int64(1), count)

	record, err = repository.GetByTaskID(ctx, tsk.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Equal(t, "file.hash", record.Function)
	require.Equal(t, "hash", record.Action)
	require.Equal(t, task.StateSucceeded.String(), record.State)
	require.Equal(t, 2, record.PathResults)
	require.Equal(t, 1, record.FileOK)
	require.Equal(t, 1, record.FileError)
	require.NotNil(t, record.FinishedAt)
	require.JSONEq(t, `{"input_paths":["/a","/b"]}`, record.Parameters)

	result, err := DecodeResult(record)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Len(t, result.PathResults, 2)
	require.Equal(t, "boom", result.PathResults[1].Message)
}

func TestRepositoryList(t *testing.T) {
	ctx := context.Background()
	repository := newRepository(t)

	for _, fn := range []string{"rename", "file.hash", "rename"} {
		record := &store.TaskRecord{TaskID: task.NewID(), Type: string(task.TypeFile), Function: fn}
		if err := repository.Save(ctx, record); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	records, err := repository.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Len(t, records, 3)
	require.Equal(t, "rename", records[0].Function)
	require.Equal(t, "file.hash", records[1].Function)

	records, err = repository.List(ctx, ListOptions{Function: "rename", Limit: 1})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Len(t, records, 1)

	_, err = repository.GetByTaskID(ctx, "unknown")
	require.ErrorIs(t, err, ErrNotFound)
}
