package command

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

var ErrToolNotAvailable = errors.New("tool not available")

func (h *host) shell(ctx context.Context, name string, params Params) (*Result, error) {
	return h.execute(ctx, name, params)
}

func (h *host) toolExecutable(ctx context.Context, name string, params Params) (*Result, error) {
	bin, err := h.lookupTool(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return h.execute(ctx, bin, params)
}

func (h *host) lookupTool(name string) (string, error) {
	if path, exists := h.opts.Tools[name]; exists && path != "" {
		return path, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(ErrToolNotAvailable, "tool '%s' not found", name)
	}

	return path, nil
}

// execute runs the command and returns its trimmed standard output. On failure
// the standard error becomes the error message, unless "ignore_error" is set.
func (h *host) execute(ctx context.Context, bin string, params Params) (*Result, error) {
	args, err := params.Args()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	h.logger.DebugContext(ctx, "executing command", "bin", bin, "args", args)

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = err.Error()
		}

		if params.Has("ignore_error") {
			h.logger.WarnContext(ctx, "ignoring command error", "bin", bin, "error", message)
			return NewResult(message), nil
		}

		return nil, errors.New(message)
	}

	return NewResult(strings.TrimSpace(stdout.String())), nil
}
