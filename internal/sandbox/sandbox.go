package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

var (
	ErrHandlerNotFound = task.ErrHandlerNotFound
	ErrSandboxClosed   = errors.New("sandbox closed")
	ErrAlreadyMounted  = errors.New("sandbox already mounted")
	ErrNotMounted      = errors.New("sandbox not mounted")
)

// MessageHandlerNotFound is reported when a function exposes no entrypoint.
const MessageHandlerNotFound = "task.handler_not_found"

// Sandbox executes the entrypoint of one function for one task, in its own
// goroutine, and reports exactly one terminal callback.
type Sandbox struct {
	mu sync.Mutex

	task       *task.Task
	function   task.Function
	entrypoint task.Entrypoint

	run        *run
	container  *Container
	translator Translator
	callbacks  Callbacks
	timeout    time.Duration
	logger     *slog.Logger

	mounted bool
	started bool
	closed  bool

	resolveOnce sync.Once
}

func New(t *task.Task, fn task.Function, funcs ...OptionFunc) (*Sandbox, error) {
	if t == nil {
		return nil, errors.Wrap(task.ErrInvalidArgument, "sandbox task is required")
	}

	if fn == nil {
		return nil, errors.Wrap(task.ErrInvalidArgument, "sandbox function is required")
	}

	opts, err := NewOptions(funcs...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger := opts.Logger.With("component", "sandbox", slog.String("task_id", t.ID()))

	gateway := opts.Gateway
	if t.Type() == task.TypeFile {
		gateway = command.Restrict(gateway, command.FileFunctionScope)
	}

	lookup := &ownTaskLookup{task: t, tasks: opts.Tasks}
	b := newBridge(t, gateway, walker.New(gateway, lookup, opts.Logger), opts.Translator, opts.Callbacks.OnProgress, logger)

	return &Sandbox{
		task:       t,
		function:   fn,
		run:        &run{task: t, bridge: b},
		container:  opts.Container,
		translator: opts.Translator,
		callbacks:  opts.Callbacks,
		timeout:    opts.Timeout,
		logger:     logger,
	}, nil
}

func (s *Sandbox) Task() *task.Task {
	return s.task
}

// Mount registers the sandbox in its container and resolves the function
// entrypoint. The entrypoint is resolved once per sandbox.
func (s *Sandbox) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.WithStack(ErrSandboxClosed)
	}

	if s.mounted {
		return errors.Wrapf(ErrAlreadyMounted, "sandbox for task '%s' is already mounted", s.task.ID())
	}

	if err := s.container.Mount(s.task.ID(), s); err != nil {
		return errors.WithStack(err)
	}

	s.entrypoint = s.function.Entrypoint()
	s.mounted = true

	return nil
}

// Start runs the function entrypoint in a new goroutine. A sandbox can only
// be started once.
func (s *Sandbox) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.started {
		return errors.WithStack(ErrSandboxClosed)
	}

	if !s.mounted {
		return errors.WithStack(ErrNotMounted)
	}

	s.started = true

	ctx = slogx.WithAttrs(ctx, slog.String("task_id", s.task.ID()))

	go func() {
		var cancel context.CancelFunc
		if s.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
		} else {
			ctx, cancel = context.WithCancel(ctx)
		}
		defer cancel()

		if s.entrypoint == nil {
			s.logger.ErrorContext(ctx, "function has no entrypoint", slogx.Error(ErrHandlerNotFound))
			s.fail(s.translator.Translate(ctx, MessageHandlerNotFound, nil))
			return
		}

		action := s.task.Action()

		s.logger.DebugContext(ctx, "executing function", slog.String("action", action.Name))

		if err := s.execute(ctx, action); err != nil {
			s.logger.ErrorContext(ctx, "function execution failed", slog.String("action", action.Name), slogx.Error(err))
			s.fail(fmt.Sprintf("%s failed: %s", action.Name, err.Error()))
			return
		}

		s.logger.DebugContext(ctx, "function execution done", slog.String("action", action.Name))

		s.done()
	}()

	return nil
}

func (s *Sandbox) execute(ctx context.Context, action task.Action) error {
	result := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- errors.Errorf("panic: %v", r)
			}
		}()

		result <- s.entrypoint(ctx, action, s.run)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func (s *Sandbox) fail(message string) {
	s.resolve(func() {
		if s.callbacks.OnError != nil {
			s.callbacks.OnError(s.task, message)
		}
	})
}

func (s *Sandbox) done() {
	s.resolve(func() {
		if s.callbacks.OnDone != nil {
			s.callbacks.OnDone(s.task)
		}
	})
}

func (s *Sandbox) resolve(callback func()) {
	s.resolveOnce.Do(func() {
		s.run.bridge.close()
		callback()
		s.Unmount()
		s.task.Finish()
	})
}

// Unmount removes the sandbox from its container. The sandbox cannot be
// used anymore afterwards.
func (s *Sandbox) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mounted {
		s.container.Unmount(s.task.ID())
	}

	s.mounted = false
	s.closed = true
}
