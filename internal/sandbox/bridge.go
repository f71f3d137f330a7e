package sandbox

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

// bridge is the host surface handed to a running function.
type bridge struct {
	task       *task.Task
	gateway    command.Gateway
	walker     *walker.Walker
	translator Translator
	onProgress func(t *task.Task, value int, message string)
	logger     *slog.Logger

	// closed is set once the terminal callback of the task is about to fire.
	// Calls made by the function afterwards are rejected.
	closed atomic.Bool
	// closing is canceled on close, aborting the walks in progress.
	closing       context.Context
	cancelClosing context.CancelFunc
}

func newBridge(t *task.Task, gateway command.Gateway, walker *walker.Walker, translator Translator, onProgress func(t *task.Task, value int, message string), logger *slog.Logger) *bridge {
	closing, cancelClosing := context.WithCancel(context.Background())

	return &bridge{
		task:          t,
		gateway:       gateway,
		walker:        walker,
		translator:    translator,
		onProgress:    onProgress,
		logger:        logger,
		closing:       closing,
		cancelClosing: cancelClosing,
	}
}

func (b *bridge) close() {
	b.closed.Store(true)
	b.cancelClosing()
}

func (b *bridge) assertOpen() error {
	if b.closed.Load() {
		return errors.Wrapf(ErrSandboxClosed, "task '%s' is finished", b.task.ID())
	}

	return nil
}

// Invoke implements task.Bridge.
func (b *bridge) Invoke(ctx context.Context, name string, params command.Params) (*command.Result, error) {
	if err := b.assertOpen(); err != nil {
		return nil, err
	}

	res, err := b.gateway.Invoke(ctx, name, params)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return res, nil
}

// WalkPath implements task.Bridge. Only the task of the bridge can be walked.
func (b *bridge) WalkPath(ctx context.Context, taskID string, inputPaths []string, depth int, process task.ProcessFunc) error {
	if err := b.assertOpen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(b.closing, cancel)
	defer stop()

	if err := b.walker.Walk(ctx, taskID, inputPaths, depth, process); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Progress implements task.Bridge.
func (b *bridge) Progress(ctx context.Context, value int, message string) error {
	if value < 0 || value > 100 {
		return errors.Wrapf(task.ErrInvalidArgument, "progress value must be between 0 and 100, got %d", value)
	}

	if err := b.assertOpen(); err != nil {
		return err
	}

	b.task.SetProgress(value, message)

	b.logger.DebugContext(ctx, "task progress", slog.Int("value", value), slog.String("message", message))

	if b.onProgress != nil {
		b.onProgress(b.task, value, message)
	}

	return nil
}

// Language implements task.Bridge.
func (b *bridge) Language(ctx context.Context) string {
	return b.translator.Language(ctx)
}

// Translate implements task.Bridge.
func (b *bridge) Translate(ctx context.Context, key string, vars map[string]any) string {
	return b.translator.Translate(ctx, key, vars)
}

var _ task.Bridge = &bridge{}

type run struct {
	task   *task.Task
	bridge *bridge
}

// TaskID implements task.Run.
func (r *run) TaskID() string {
	return r.task.ID()
}

// Bridge implements task.Run.
func (r *run) Bridge() task.Bridge {
	return r.bridge
}

// Result implements task.Run.
func (r *run) Result() task.ResultWriter {
	return &resultWriter{task: r.task, bridge: r.bridge}
}

// WalkCounter implements task.Run.
func (r *run) WalkCounter() task.WalkCounter {
	return r.task.WalkCounter()
}

// Matches implements task.Run.
func (r *run) Matches() task.Matches {
	if def := r.task.Definition(); def != nil {
		return def.Matches
	}

	return task.Matches{}
}

var _ task.Run = &run{}

// ownTaskLookup resolves the task of a sandbox and nothing else.
type ownTaskLookup struct {
	task  *task.Task
	tasks walker.TaskLookup
}

// Get implements walker.TaskLookup.
func (l *ownTaskLookup) Get(id string) (*task.Task, error) {
	if id != l.task.ID() {
		return nil, errors.Wrapf(task.ErrTaskNotFound, "task '%s' is not the task of the sandbox", id)
	}

	return l.tasks.Get(id)
}

var _ walker.TaskLookup = &ownTaskLookup{}

// resultWriter drops the writes made once the bridge is closed.
type resultWriter struct {
	task   *task.Task
	bridge *bridge
}

func (w *resultWriter) writable() bool {
	if err := w.bridge.assertOpen(); err != nil {
		w.bridge.logger.Warn("ignoring result write", slogx.Error(err))
		return false
	}

	return true
}

// SetOutput implements task.ResultWriter.
func (w *resultWriter) SetOutput(output any) {
	if w.writable() {
		w.task.SetOutput(output)
	}
}

// AppendPathResult implements task.ResultWriter.
func (w *resultWriter) AppendPathResult(result task.PathResult) {
	if w.writable() {
		w.task.AppendPathResult(result)
	}
}

// RecordPathResult implements task.ResultWriter.
func (w *resultWriter) RecordPathResult(result task.PathResult) {
	if w.writable() {
		w.task.RecordPathResult(result)
	}
}

// UpdateCounter implements task.ResultWriter.
func (w *resultWriter) UpdateCounter(fn func(c *task.Counter)) {
	if w.writable() {
		w.task.UpdateCounter(fn)
	}
}

var _ task.ResultWriter = &resultWriter{}
