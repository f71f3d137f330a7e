package task

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

type Definition struct {
	Name      string
	Type      Type
	Title     string
	Summary   string
	Version   string
	Authors   []string
	URL       string
	Matches   Matches
	Variables []*Variable
}

// Matches describes the paths and platforms a function applies to.
// Extensions are lower cased and may contain "*", "/all" or the special
// "/file", "/files", "/dir", "/dirs", "/paths" tags, optionally negated
// with a leading "!".
type Matches struct {
	Extensions []string
	Platforms  []string
}

type ValueType string

const (
	ValueTypeText    ValueType = "text"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypePath    ValueType = "path"
	ValueTypeSelect  ValueType = "select"
)

type Variable struct {
	Name        string
	Description string
	ValueType   ValueType
	Required    bool
	Default     any
	// Actions restricts the variable to the given actions. Empty means all.
	Actions     []string
	Constraints []Constraint
}

func (v *Variable) AppliesTo(action string) bool {
	return len(v.Actions) == 0 || slices.Contains(v.Actions, action)
}

var (
	ErrSkipConstraint = errors.New("skip constraint")
)

type Constraint interface {
	AssertValue(ctx context.Context, variable *Variable, value any) (bool, error)
}

type ConstraintFunc func(ctx context.Context, variable *Variable, value any) (bool, error)

func (fn ConstraintFunc) AssertValue(ctx context.Context, variable *Variable, value any) (bool, error) {
	return fn(ctx, variable, value)
}

// OneOf accepts only the given values.
func OneOf(values ...any) Constraint {
	return ConstraintFunc(func(ctx context.Context, variable *Variable, value any) (bool, error) {
		for _, v := range values {
			if fmt.Sprintf("%v", v) == fmt.Sprintf("%v", value) {
				return true, nil
			}
		}

		return false, nil
	})
}

// Validate checks the action parameters against the declared variables and
// fills in default values.
func (d *Definition) Validate(ctx context.Context, action Action) error {
	if d == nil {
		return nil
	}

	for _, variable := range d.Variables {
		if !variable.AppliesTo(action.Name) {
			continue
		}

		value, exists := action.Parameters[variable.Name]
		if !exists || value == nil || value == "" {
			if variable.Default != nil {
				action.Parameters[variable.Name] = variable.Default
				continue
			}

			if variable.Required {
				return errors.Wrapf(ErrInvalidArgument, "missing required parameter '%s'", variable.Name)
			}

			continue
		}

		for _, constraint := range variable.Constraints {
			ok, err := constraint.AssertValue(ctx, variable, value)
			if err != nil {
				if errors.Is(err, ErrSkipConstraint) {
					continue
				}

				return errors.WithStack(err)
			}

			if !ok {
				return errors.Wrapf(ErrInvalidArgument, "invalid value '%v' for parameter '%s'", value, variable.Name)
			}
		}
	}

	return nil
}
