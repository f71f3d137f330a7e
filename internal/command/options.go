package command

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bornholm/fileworks/internal/file"
	"github.com/pkg/errors"
)

type Options struct {
	Logger  *slog.Logger
	Storage *file.Storage
	HomeDir string
	Debug   bool
	// Tools maps a tool name (ie "magick") to its executable path.
	// Tools missing from the map are searched in the PATH.
	Tools map[string]string
}

type OptionFunc func(opts *Options) error

func NewOptions(funcs ...OptionFunc) (*Options, error) {
	opts := &Options{
		Logger: slog.Default(),
		Tools:  map[string]string{},
	}

	for _, fn := range funcs {
		if err := fn(opts); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if opts.HomeDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "could not find user home directory")
		}

		opts.HomeDir = homeDir
	}

	if opts.Storage == nil {
		configDir, err := os.UserConfigDir()
		if err != nil {
			configDir = os.TempDir()
		}

		opts.Storage = file.NewStorage(filepath.Join(configDir, "fileworks"), opts.Logger)
	}

	return opts, nil
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) error {
		opts.Logger = logger
		return nil
	}
}

func WithStorage(storage *file.Storage) OptionFunc {
	return func(opts *Options) error {
		opts.Storage = storage
		return nil
	}
}

func WithHomeDir(homeDir string) OptionFunc {
	return func(opts *Options) error {
		opts.HomeDir = homeDir
		return nil
	}
}

func WithDebug(debug bool) OptionFunc {
	return func(opts *Options) error {
		opts.Debug = debug
		return nil
	}
}

func WithTools(tools map[string]string) OptionFunc {
	return func(opts *Options) error {
		for name, path := range tools {
			opts.Tools[name] = path
		}
		return nil
	}
}
