package walker

import (
	"context"
	"log/slog"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

const (
	// DepthAll walks every descendant and processes files only.
	DepthAll = -1
	// DepthNone processes every input path at once.
	DepthNone = 0
	// DepthInputs processes each input path as is.
	DepthInputs = 1
)

var ErrInvalidArgument = task.ErrInvalidArgument

type TaskLookup interface {
	Get(id string) (*task.Task, error)
}

// Walker expands input paths and feeds them to a process function,
// maintaining the walk counter and the path results of the task.
type Walker struct {
	gateway command.Gateway
	tasks   TaskLookup
	logger  *slog.Logger
}

func New(gateway command.Gateway, tasks TaskLookup, logger *slog.Logger) *Walker {
	return &Walker{
		gateway: gateway,
		tasks:   tasks,
		logger:  logger.With("component", "path-walker"),
	}
}

// Walk resolves the input paths according to the depth policy:
//   - 0: process is called once with every existing input path;
//   - 1: process is called once per existing input path, directories included;
//   - < 0: directories are walked recursively and process is called once per file;
//   - > 1: same as < 0, limited to the given number of levels.
//
// Non existent paths are recorded as ignored. A failure below a top level
// input path is recorded as an error for that path and the walk continues
// with the next one.
func (w *Walker) Walk(ctx context.Context, taskID string, inputPaths []string, depth int, process task.ProcessFunc) error {
	if taskID == "" {
		return errors.Wrap(ErrInvalidArgument, "missing task id for walk")
	}

	if len(inputPaths) == 0 {
		return errors.Wrap(ErrInvalidArgument, "missing input paths for walk")
	}

	if process == nil {
		return errors.Wrap(ErrInvalidArgument, "missing process function for walk")
	}

	t, err := w.tasks.Get(taskID)
	if err != nil {
		return errors.Wrapf(ErrInvalidArgument, "unknown task id '%s'", taskID)
	}

	if depth < 0 {
		depth = DepthAll
	}

	ctx = slogx.WithAttrs(ctx, slog.String("task_id", taskID))

	w.logger.DebugContext(ctx, "walking paths", slog.Int("depth", depth), slog.Int("paths", len(inputPaths)))

	t.SetPathTotal(len(inputPaths))

	switch depth {
	case DepthNone:
		return w.walkNone(ctx, t, inputPaths, process)
	case DepthInputs:
		return w.walkInputs(ctx, t, inputPaths, process)
	default:
		return w.walkTree(ctx, t, inputPaths, depth, process)
	}
}

func (w *Walker) walkNone(ctx context.Context, t *task.Task, inputPaths []string, process task.ProcessFunc) error {
	existing := make([]string, 0, len(inputPaths))

	for _, p := range inputPaths {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		t.IncPathIndex()

		info, err := w.readPath(ctx, p, false)
		if err != nil {
			return errors.WithStack(err)
		}

		if !info.IsExists {
			t.RecordPathNotExist(p)
			continue
		}

		existing = append(existing, p)
	}

	if len(existing) == 0 {
		return nil
	}

	if err := process(ctx, existing...); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (w *Walker) walkInputs(ctx context.Context, t *task.Task, inputPaths []string, process task.ProcessFunc) error {
	for _, p := range inputPaths {
		err := w.visitInput(ctx, t, p, process)
		if err == nil {
			continue
		}

		if isCanceled(err) {
			return errors.WithStack(err)
		}

		w.recordFailure(ctx, t, p, err)
	}

	return nil
}

func (w *Walker) visitInput(ctx context.Context, t *task.Task, path string, process task.ProcessFunc) error {
	t.IncPathIndex()

	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	info, err := w.readPath(ctx, path, false)
	if err != nil {
		return errors.WithStack(err)
	}

	if !info.IsExists {
		t.RecordPathNotExist(path)
		return nil
	}

	if err := process(ctx, path); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (w *Walker) walkTree(ctx context.Context, t *task.Task, inputPaths []string, limit int, process task.ProcessFunc) error {
	for _, p := range inputPaths {
		err := w.traverse(ctx, t, p, 1, limit, process)
		if err == nil {
			continue
		}

		if isCanceled(err) {
			return errors.WithStack(err)
		}

		w.recordFailure(ctx, t, p, err)
	}

	return nil
}

func (w *Walker) traverse(ctx context.Context, t *task.Task, path string, level int, limit int, process task.ProcessFunc) error {
	t.IncPathIndex()

	if limit != DepthAll && level > limit {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	info, err := w.readPath(ctx, path, true)
	if err != nil {
		return errors.WithStack(err)
	}

	if !info.IsExists {
		t.RecordPathNotExist(path)
		return nil
	}

	switch {
	case info.IsDir:
		t.AddPathTotal(len(info.SubPaths))

		for _, sub := range info.SubPaths {
			if err := w.traverse(ctx, t, sub, level+1, limit, process); err != nil {
				return errors.WithStack(err)
			}
		}

	case info.IsFile:
		if err := process(ctx, path); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (w *Walker) readPath(ctx context.Context, path string, listSubPaths bool) (*command.PathInfo, error) {
	res, err := w.gateway.Invoke(ctx, command.PathRead, command.Params{
		"path":           path,
		"list_sub_paths": listSubPaths,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	info, err := command.DecodeContent[command.PathInfo](res)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &info, nil
}

func (w *Walker) recordFailure(ctx context.Context, t *task.Task, path string, err error) {
	w.logger.WarnContext(ctx, "path processing failed", slog.String("path", path), slogx.Error(err))

	t.RecordPathResult(task.PathResult{
		Status:  task.StatusError,
		SrcPath: path,
		Message: err.Error(),
	})
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
