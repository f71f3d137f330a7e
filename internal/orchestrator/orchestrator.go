package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/fileworks/internal/aggregate"
	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/sandbox"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

const MessageLoadFailed = "task.load_failed"

type Request struct {
	Type         task.Type
	Function     string
	ActionName   string
	ActionParams task.Parameters
	// Language of the messages produced by the task, the translator default
	// is used if empty.
	Language string

	OnStarted  func(t *task.Task)
	OnProgress func(t *task.Task, value int, message string)
	OnError    func(t *task.Task, message string)
	OnDone     func(t *task.Task)
}

// Orchestrator manages the lifecycle of tasks, from their creation to the
// teardown of their sandbox.
type Orchestrator struct {
	gateway    command.Gateway
	provider   task.Provider
	registry   *task.Registry
	container  *sandbox.Container
	aggregator *aggregate.Aggregator
	translator Translator
	observers  []Observer
	timeout    time.Duration
	logger     *slog.Logger
}

func New(gateway command.Gateway, provider task.Provider, registry *task.Registry, funcs ...OptionFunc) (*Orchestrator, error) {
	opts, err := NewOptions(funcs...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Orchestrator{
		gateway:    gateway,
		provider:   provider,
		registry:   registry,
		container:  opts.Container,
		aggregator: aggregate.New(gateway, opts.Translator, opts.Logger),
		translator: opts.Translator,
		observers:  opts.Observers,
		timeout:    opts.Timeout,
		logger:     opts.Logger.With("component", "orchestrator"),
	}, nil
}

func (o *Orchestrator) Registry() *task.Registry {
	return o.registry
}

func (o *Orchestrator) Container() *sandbox.Container {
	return o.container
}

// CreateTask allocates and registers a new task then starts its function in
// a dedicated sandbox. The returned task is running unless an error is
// returned. A load failure still returns the failed task record.
func (o *Orchestrator) CreateTask(ctx context.Context, req Request) (*task.Task, error) {
	if !req.Type.Valid() {
		return nil, errors.Wrapf(task.ErrInvalidArgument, "invalid task type '%s'", req.Type)
	}

	if req.Function == "" {
		return nil, errors.Wrap(task.ErrInvalidArgument, "missing function name")
	}

	if req.ActionName == "" {
		return nil, errors.Wrap(task.ErrInvalidArgument, "missing action name")
	}

	ctx = o.translator.WithLanguage(ctx, req.Language)

	action := task.Action{
		Name:       req.ActionName,
		Parameters: task.Parameters{},
	}
	for key, value := range req.ActionParams {
		action.Parameters[key] = value
	}

	fn, loadErr := o.provider.FetchFunction(ctx, req.Function)
	if loadErr == nil {
		def := fn.Definition()

		if def.Type != req.Type {
			return nil, errors.Wrapf(task.ErrInvalidArgument, "function '%s' is a %s function, not a %s one", def.Name, def.Type, req.Type)
		}

		if err := def.Validate(ctx, action); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	def := &task.Definition{Name: req.Function, Type: req.Type}
	if fn != nil {
		def = fn.Definition()
	}

	t := task.New(task.NewID(), req.Type, def, action)

	if err := o.registry.Add(t); err != nil {
		return nil, errors.WithStack(err)
	}

	ctx = slogx.WithAttrs(ctx,
		slog.String("task_id", t.ID()),
		slog.String("function", req.Function),
		slog.String("action", req.ActionName),
	)

	if loadErr != nil {
		return t, o.abort(ctx, t, loadErr)
	}

	if err := o.checkUtilities(ctx); err != nil {
		return t, o.abort(ctx, t, err)
	}

	sb, err := sandbox.New(t, fn,
		sandbox.WithGateway(o.gateway),
		sandbox.WithTasks(o.registry),
		sandbox.WithTranslator(o.translator),
		sandbox.WithContainer(o.container),
		sandbox.WithLogger(o.logger),
		sandbox.WithTimeout(o.timeout),
		sandbox.WithCallbacks(o.callbacks(ctx, req)),
	)
	if err != nil {
		return t, o.abort(ctx, t, err)
	}

	if err := sb.Mount(); err != nil {
		return t, o.abort(ctx, t, err)
	}

	t.SetRunning(true)

	o.logger.InfoContext(ctx, "task started")

	for _, obs := range o.observers {
		obs.TaskStarted(ctx, t)
	}

	if req.OnStarted != nil {
		req.OnStarted(t)
	}

	if err := sb.Start(ctx); err != nil {
		sb.Unmount()
		return t, o.abort(ctx, t, err)
	}

	return t, nil
}

// checkUtilities ensures the host surface needed by the shared function
// utilities is reachable.
func (o *Orchestrator) checkUtilities(ctx context.Context) error {
	res, err := o.gateway.Invoke(ctx, command.EnvAppDataDir, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	dir, err := command.DecodeContent[string](res)
	if err != nil {
		return errors.WithStack(err)
	}

	if dir == "" {
		return errors.New("app data directory is not available")
	}

	return nil
}

func (o *Orchestrator) callbacks(ctx context.Context, req Request) sandbox.Callbacks {
	// The task outlives the context of its creation
	ctx = context.WithoutCancel(ctx)

	return sandbox.Callbacks{
		OnProgress: req.OnProgress,
		OnError: func(t *task.Task, message string) {
			t.Fail(message)

			o.logger.WarnContext(ctx, "task failed", slog.String("message", message))

			o.finalize(ctx, t)

			if req.OnError != nil {
				req.OnError(t, message)
			}
		},
		OnDone: func(t *task.Task) {
			o.logger.InfoContext(ctx, "task done")

			o.finalize(ctx, t)

			if req.OnDone != nil {
				req.OnDone(t)
			}
		},
	}
}

func (o *Orchestrator) finalize(ctx context.Context, t *task.Task) {
	t.SetRunning(false)

	o.aggregator.Aggregate(ctx, t)

	for _, obs := range o.observers {
		obs.TaskFinished(ctx, t)
	}
}

// abort fails a task which could not be started.
func (o *Orchestrator) abort(ctx context.Context, t *task.Task, err error) error {
	o.logger.ErrorContext(ctx, "could not load function", slogx.Error(err))

	t.Fail(o.translator.Translate(ctx, MessageLoadFailed, map[string]any{
		"error": err.Error(),
	}))

	o.finalize(context.WithoutCancel(ctx), t)

	t.Finish()

	return errors.Wrapf(task.ErrSandboxLoadFailure, "could not load function for task '%s': %s", t.ID(), err.Error())
}
