package task

import (
	"github.com/bornholm/fileworks/internal/command"
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrSandboxLoadFailure = errors.New("sandbox load failure")
	ErrHandlerNotFound    = errors.New("handler not found")
	ErrHostCommandFailure = command.ErrHostCommandFailure
	ErrTaskNotFound       = errors.New("task not found")
	ErrDuplicateTask      = errors.New("duplicate task")
	ErrFunctionNotFound   = errors.New("function not found")
	ErrDuplicateFunction  = errors.New("duplicate function")
)
