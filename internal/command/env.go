package command

import (
	"context"

	"github.com/pkg/errors"
	sysinfo "github.com/shirou/gopsutil/v4/host"
)

func (h *host) envPlatform(ctx context.Context, params Params) (*Result, error) {
	info, err := sysinfo.InfoWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not retrieve host informations")
	}

	platform := info.OS
	if platform == "darwin" {
		platform = "macos"
	}

	return NewResult(platform), nil
}

func (h *host) envArch(ctx context.Context, params Params) (*Result, error) {
	info, err := sysinfo.InfoWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not retrieve host informations")
	}

	return NewResult(info.KernelArch), nil
}

func (h *host) envAppDataDir(ctx context.Context, params Params) (*Result, error) {
	return NewResult(h.opts.Storage.GetBasePath()), nil
}

func (h *host) envHomeDir(ctx context.Context, params Params) (*Result, error) {
	return NewResult(h.opts.HomeDir), nil
}

func (h *host) envIsDebug(ctx context.Context, params Params) (*Result, error) {
	return NewResult(h.opts.Debug), nil
}
