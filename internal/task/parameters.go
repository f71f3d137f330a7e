package task

import (
	"strconv"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/pkg/errors"
)

// Parameters are the user supplied arguments of an action.
type Parameters map[string]any

func (p Parameters) String(key string) (string, error) {
	str, err := command.Params(p).String(key)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidArgument, "%s", err.Error())
	}

	return str, nil
}

func (p Parameters) StringOr(defaultValue string, key string) string {
	return command.Params(p).StringOr(defaultValue, key)
}

func (p Parameters) Strings(key string) ([]string, error) {
	values, err := command.Params(p).Strings(key)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s", err.Error())
	}

	return values, nil
}

// Int accepts integers, floats (as decoded from JSON) and numeric strings.
func (p Parameters) Int(key string) (int, error) {
	raw, exists := p[key]
	if !exists || raw == nil {
		return 0, errors.Wrapf(ErrInvalidArgument, "parameter '%s' is required", key)
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidArgument, "parameter '%s' must be a number", key)
		}
		return i, nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "parameter '%s' must be a number", key)
	}
}

func (p Parameters) IntOr(defaultValue int, key string) int {
	i, err := p.Int(key)
	if err != nil {
		return defaultValue
	}

	return i
}

func (p Parameters) Bool(key string) bool {
	raw, exists := p[key]
	if !exists {
		return false
	}

	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (p Parameters) Has(key string) bool {
	_, exists := p[key]
	return exists
}

// Decode maps the parameters onto the given struct using its json tags.
func (p Parameters) Decode(v any) error {
	if err := command.Params(p).Decode(v); err != nil {
		return errors.Wrapf(ErrInvalidArgument, "%s", err.Error())
	}

	return nil
}
