package sandbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/bornholm/fileworks/internal/walker"
	"github.com/pkg/errors"
)

type Translator interface {
	Language(ctx context.Context) string
	Translate(ctx context.Context, key string, vars map[string]any) string
}

type Callbacks struct {
	OnProgress func(t *task.Task, value int, message string)
	OnError    func(t *task.Task, message string)
	OnDone     func(t *task.Task)
}

type Options struct {
	Gateway    command.Gateway
	Tasks      walker.TaskLookup
	Translator Translator
	Container  *Container
	Logger     *slog.Logger
	Timeout    time.Duration
	Callbacks  Callbacks
}

type OptionFunc func(opts *Options) error

func NewOptions(funcs ...OptionFunc) (*Options, error) {
	opts := &Options{
		Logger:     slog.Default(),
		Translator: noopTranslator{},
		Container:  NewContainer(),
	}

	for _, fn := range funcs {
		if err := fn(opts); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if opts.Gateway == nil {
		return nil, errors.New("sandbox gateway is required")
	}

	if opts.Tasks == nil {
		return nil, errors.New("sandbox task lookup is required")
	}

	return opts, nil
}

func WithGateway(gateway command.Gateway) OptionFunc {
	return func(opts *Options) error {
		opts.Gateway = gateway
		return nil
	}
}

func WithTasks(tasks walker.TaskLookup) OptionFunc {
	return func(opts *Options) error {
		opts.Tasks = tasks
		return nil
	}
}

func WithTranslator(translator Translator) OptionFunc {
	return func(opts *Options) error {
		opts.Translator = translator
		return nil
	}
}

func WithContainer(container *Container) OptionFunc {
	return func(opts *Options) error {
		opts.Container = container
		return nil
	}
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) error {
		opts.Logger = logger
		return nil
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) error {
		opts.Timeout = timeout
		return nil
	}
}

func WithCallbacks(callbacks Callbacks) OptionFunc {
	return func(opts *Options) error {
		opts.Callbacks = callbacks
		return nil
	}
}

type noopTranslator struct{}

func (noopTranslator) Language(ctx context.Context) string {
	return "en"
}

func (noopTranslator) Translate(ctx context.Context, key string, vars map[string]any) string {
	return key
}
