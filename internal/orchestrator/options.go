package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/fileworks/internal/sandbox"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

type Translator interface {
	WithLanguage(ctx context.Context, lang string) context.Context
	Language(ctx context.Context) string
	Translate(ctx context.Context, key string, vars map[string]any) string
}

// Observer is notified of the lifecycle of every task.
type Observer interface {
	TaskStarted(ctx context.Context, t *task.Task)
	TaskFinished(ctx context.Context, t *task.Task)
}

type Options struct {
	Logger     *slog.Logger
	Translator Translator
	Container  *sandbox.Container
	Timeout    time.Duration
	Observers  []Observer
}

type OptionFunc func(opts *Options) error

func NewOptions(funcs ...OptionFunc) (*Options, error) {
	opts := &Options{
		Logger:    slog.Default(),
		Container: sandbox.NewContainer(),
		Observers: make([]Observer, 0),
	}

	for _, fn := range funcs {
		if err := fn(opts); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if opts.Translator == nil {
		return nil, errors.New("orchestrator translator is required")
	}

	return opts, nil
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) error {
		opts.Logger = logger
		return nil
	}
}

func WithTranslator(translator Translator) OptionFunc {
	return func(opts *Options) error {
		opts.Translator = translator
		return nil
	}
}

func WithContainer(container *sandbox.Container) OptionFunc {
	return func(opts *Options) error {
		opts.Container = container
		return nil
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) error {
		opts.Timeout = timeout
		return nil
	}
}

func WithObservers(observers ...Observer) OptionFunc {
	return func(opts *Options) error {
		opts.Observers = append(opts.Observers, observers...)
		return nil
	}
}
