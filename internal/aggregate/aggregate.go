package aggregate

import (
	"context"
	"log/slog"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

type Translator interface {
	Translate(ctx context.Context, key string, vars map[string]any) string
}

// Aggregator post-processes finished tasks: it computes the display verdict
// of a task and resolves the home relative form of its paths.
type Aggregator struct {
	gateway    command.Gateway
	translator Translator
	logger     *slog.Logger
}

func New(gateway command.Gateway, translator Translator, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		gateway:    gateway,
		translator: translator,
		logger:     logger.With("component", "result-aggregator"),
	}
}

// Aggregate classifies the task and resolves its display paths.
func (a *Aggregator) Aggregate(ctx context.Context, t *task.Task) task.DisplayStatus {
	display := a.Classify(ctx, t)
	a.ResolveDisplayPaths(ctx, t)
	return display
}

// Classify computes the display status of the task, stores it in the task
// result and returns it. The error message is translated.
func (a *Aggregator) Classify(ctx context.Context, t *task.Task) task.DisplayStatus {
	display := Classify(t.Snapshot().Result)

	if display.ErrorMessage != "" && a.translator != nil {
		display.ErrorMessage = a.translator.Translate(ctx, display.ErrorMessage, nil)
	}

	t.SetDisplay(display)

	return display
}

// Classify derives the ok/error verdict of a result.
//
// A task level error always wins. A single path result decides alone.
// With several path results the verdict is an error unless at least one of
// them is ok, and the reported message is the one of the last error seen
// before the first ok entry.
func Classify(result task.Result) task.DisplayStatus {
	if result.Status == task.StatusError {
		return task.DisplayStatus{
			IsError:      true,
			ErrorMessage: result.Message,
		}
	}

	isError := false
	message := ""

	switch len(result.PathResults) {
	case 0:
	case 1:
		if pr := result.PathResults[0]; pr.Status == task.StatusError {
			isError = true
			message = pr.Message
		}
	default:
		isError = true
		for _, pr := range result.PathResults {
			if pr.Status == task.StatusError {
				message = pr.Message
			}

			if pr.Status == task.StatusOK {
				isError = false
				break
			}
		}
	}

	if !isError {
		message = ""
	}

	return task.DisplayStatus{
		IsError:      isError,
		IsOK:         !isError,
		ErrorMessage: message,
	}
}

// ResolveDisplayPaths fills the home relative source and destination paths
// of every path result. Resolution failures are logged and leave the
// corresponding fields unset.
func (a *Aggregator) ResolveDisplayPaths(ctx context.Context, t *task.Task) {
	ctx = slogx.WithAttrs(ctx, slog.String("task_id", t.ID()))

	results := t.Snapshot().Result.PathResults

	for i, pr := range results {
		var relSrcPath string
		var relDestPaths []string

		if pr.SrcPath != "" {
			paths, err := a.relative(ctx, []string{pr.SrcPath})
			if err != nil {
				a.logger.WarnContext(ctx, "could not resolve relative source path", slog.String("path", pr.SrcPath), slogx.Error(err))
			} else if len(paths) > 0 {
				relSrcPath = paths[0]
			}
		}

		if len(pr.DestPaths) > 0 {
			paths, err := a.relative(ctx, pr.DestPaths)
			if err != nil {
				a.logger.WarnContext(ctx, "could not resolve relative destination paths", slog.Any("paths", pr.DestPaths), slogx.Error(err))
			} else {
				relDestPaths = paths
			}
		}

		if relSrcPath == "" && relDestPaths == nil {
			continue
		}

		t.SetRelativePaths(i, relSrcPath, relDestPaths)
	}
}

func (a *Aggregator) relative(ctx context.Context, paths []string) ([]string, error) {
	res, err := a.gateway.Invoke(ctx, command.PathRelativeWithHomeDir, command.Params{
		"input_paths": paths,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	relative, err := command.DecodeContent[[]string](res)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return relative, nil
}
