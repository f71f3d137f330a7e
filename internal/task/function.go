package task

import (
	"context"

	"github.com/bornholm/fileworks/internal/command"
)

// ProcessFunc handles the paths resolved by a walk. At depth 0 it receives
// every input path at once, otherwise exactly one path per call.
type ProcessFunc func(ctx context.Context, paths ...string) error

// Bridge is the only host surface reachable from a function.
type Bridge interface {
	Invoke(ctx context.Context, name string, params command.Params) (*command.Result, error)
	WalkPath(ctx context.Context, taskID string, inputPaths []string, depth int, process ProcessFunc) error
	Progress(ctx context.Context, value int, message string) error
	Language(ctx context.Context) string
	Translate(ctx context.Context, key string, vars map[string]any) string
}

// Run exposes the running task to its function.
type Run interface {
	TaskID() string
	Bridge() Bridge
	Result() ResultWriter
	WalkCounter() WalkCounter
	Matches() Matches
}

type Entrypoint func(ctx context.Context, action Action, run Run) error

// Function is a statically registered function module.
type Function interface {
	Definition() *Definition
	// Entrypoint returns the callable executed by the sandbox, or nil if the
	// module is not ready to be executed.
	Entrypoint() Entrypoint
}

type function struct {
	definition *Definition
	entrypoint Entrypoint
}

func (f *function) Definition() *Definition {
	return f.definition
}

func (f *function) Entrypoint() Entrypoint {
	return f.entrypoint
}

func NewFunction(definition *Definition, entrypoint Entrypoint) Function {
	return &function{
		definition: definition,
		entrypoint: entrypoint,
	}
}
