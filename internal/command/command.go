package command

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

const (
	PathExists               = "path.exists"
	PathJoin                 = "path.join"
	PathSplit                = "path.split"
	PathRead                 = "path.read"
	PathDelete               = "path.delete"
	PathRelativeWithHomeDir  = "path.relative.with_home_dir"
	PathAbsoluteWithHomeDir  = "path.absolute.with_home_dir"
	PathMakeUnusedPath       = "path.make_unused_path"
	PathNewTempFilePath      = "path.new_temp_file_path"
	DirList                  = "dir.list"
	FileRead                 = "file.read"
	FileWrite                = "file.write"
	FileRename               = "file.rename"
	FileCopy                 = "file.copy"
	FileHash                 = "file.hash"
	FileInfoBasic            = "file.info.basic"
	FileCountFiles           = "file.count_files"
	FileExifGet              = "file.exif.get"
	EnvPlatform              = "env.platform"
	EnvArch                  = "env.arch"
	EnvAppDataDir            = "env.app_data_dir"
	EnvHomeDir               = "env.home_dir"
	EnvIsDebug               = "env.is_debug"
	ShellPrefix              = "shell."
	ToolExecutablePrefix     = "tool.exe."
	UpdaterPrefix            = "updater."
	ExiftoolCommand          = ToolExecutablePrefix + "exiftool"
	DefaultShellXattrCommand = ShellPrefix + "xattr"
)

var (
	ErrHostCommandFailure = errors.New("host command failure")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrCommandNotAllowed  = errors.New("command not allowed")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrInvalidParameter   = errors.New("invalid parameter")
)

// Gateway is the single entry point used by the task engine to reach
// host primitives (file system, processes, environment).
type Gateway interface {
	Invoke(ctx context.Context, name string, params Params) (*Result, error)
}

type GatewayFunc func(ctx context.Context, name string, params Params) (*Result, error)

func (fn GatewayFunc) Invoke(ctx context.Context, name string, params Params) (*Result, error) {
	return fn(ctx, name, params)
}

type Result struct {
	Content     any
	OutputPaths []string
}

func NewResult(content any, outputPaths ...string) *Result {
	return &Result{
		Content:     content,
		OutputPaths: outputPaths,
	}
}

// Error is returned by a Gateway when the invoked host command fails.
type Error struct {
	Command string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Command == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	return target == ErrHostCommandFailure
}

func NewError(command string, cause error) *Error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}

	return &Error{
		Command: command,
		Message: message,
		Cause:   cause,
	}
}
