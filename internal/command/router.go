package command

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

type HandlerFunc func(ctx context.Context, params Params) (*Result, error)

// PrefixHandlerFunc handles every command sharing a prefix (ie "shell.").
// It receives the command name without the prefix.
type PrefixHandlerFunc func(ctx context.Context, name string, params Params) (*Result, error)

type prefixHandler struct {
	prefix  string
	handler PrefixHandlerFunc
}

// Router dispatches named commands to their handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	prefixes []prefixHandler
	logger   *slog.Logger
}

func (r *Router) Handle(name string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = handler
}

func (r *Router) HandlePrefix(prefix string, handler PrefixHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefixes = append(r.prefixes, prefixHandler{prefix: prefix, handler: handler})

	// Longest prefixes first
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})
}

// Names returns the sorted list of exact command names known by the router.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Invoke implements Gateway.
func (r *Router) Invoke(ctx context.Context, name string, params Params) (*Result, error) {
	if params == nil {
		params = Params{}
	}

	if r.logger.Enabled(ctx, slog.LevelDebug) {
		r.logger.DebugContext(ctx, "invoking command", slog.String("command", name), slog.String("params", spew.Sdump(params)))
	}

	if name == "" {
		return nil, NewError(name, errors.Wrap(ErrUnknownCommand, "command name is empty"))
	}

	r.mu.RLock()
	handler, exists := r.handlers[name]
	var (
		prefixed PrefixHandlerFunc
		suffix   string
	)
	if !exists {
		for _, p := range r.prefixes {
			if strings.HasPrefix(name, p.prefix) {
				prefixed = p.handler
				suffix = strings.TrimPrefix(name, p.prefix)
				break
			}
		}
	}
	r.mu.RUnlock()

	var (
		res *Result
		err error
	)

	switch {
	case exists:
		res, err = handler(ctx, params)
	case prefixed != nil:
		res, err = prefixed(ctx, suffix, params)
	default:
		return nil, NewError(name, errors.Wrapf(ErrUnknownCommand, "unknown command '%s'", name))
	}

	if err != nil {
		r.logger.ErrorContext(ctx, "command failed", slog.String("command", name), slog.Any("error", err))
		return nil, NewError(name, err)
	}

	if res == nil {
		res = NewResult(nil)
	}

	return res, nil
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		prefixes: make([]prefixHandler, 0),
		logger:   logger.With("component", "command-router"),
	}
}

var _ Gateway = &Router{}
