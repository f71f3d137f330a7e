package command

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Scope decides which commands a caller is allowed to invoke.
type Scope interface {
	Allowed(name string) bool
}

type ScopeFunc func(name string) bool

func (fn ScopeFunc) Allowed(name string) bool {
	return fn(name)
}

var (
	// Unrestricted allows every command.
	Unrestricted Scope = ScopeFunc(func(name string) bool {
		return true
	})

	// FileFunctionScope denies process execution and self update commands,
	// except the extended attributes helper.
	FileFunctionScope Scope = ScopeFunc(func(name string) bool {
		switch {
		case name == DefaultShellXattrCommand:
			return true
		case strings.HasPrefix(name, ShellPrefix):
			return false
		case strings.HasPrefix(name, UpdaterPrefix):
			return false
		default:
			return true
		}
	})
)

type scopedGateway struct {
	gateway Gateway
	scope   Scope
}

func (g *scopedGateway) Invoke(ctx context.Context, name string, params Params) (*Result, error) {
	if !g.scope.Allowed(name) {
		return nil, NewError(name, errors.Wrapf(ErrCommandNotAllowed, "command '%s' is not allowed in this context", name))
	}

	return g.gateway.Invoke(ctx, name, params)
}

// Restrict returns a gateway rejecting the commands the scope does not allow.
func Restrict(gateway Gateway, scope Scope) Gateway {
	if scope == nil {
		return gateway
	}

	return &scopedGateway{
		gateway: gateway,
		scope:   scope,
	}
}
