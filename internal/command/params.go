package command

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Params holds the loosely typed arguments of a command invocation.
type Params map[string]any

// String returns the first non empty string value found under one of the
// given keys.
func (p Params) String(keys ...string) (string, error) {
	for _, k := range keys {
		raw, exists := p[k]
		if !exists || raw == nil {
			continue
		}

		str, ok := raw.(string)
		if !ok {
			return "", errors.Wrapf(ErrInvalidParameter, "parameter '%s' must be a string", k)
		}

		if str == "" {
			continue
		}

		return str, nil
	}

	return "", errors.Wrapf(ErrMissingParameter, "parameter '%s' is required", keys[0])
}

func (p Params) StringOr(defaultValue string, keys ...string) string {
	str, err := p.String(keys...)
	if err != nil {
		return defaultValue
	}

	return str
}

// Strings returns the string slice found under one of the given keys.
func (p Params) Strings(keys ...string) ([]string, error) {
	for _, k := range keys {
		raw, exists := p[k]
		if !exists || raw == nil {
			continue
		}

		switch v := raw.(type) {
		case []string:
			return v, nil
		case []any:
			values := make([]string, 0, len(v))
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, errors.Wrapf(ErrInvalidParameter, "parameter '%s' must be an array of strings", k)
				}
				values = append(values, str)
			}
			return values, nil
		default:
			return nil, errors.Wrapf(ErrInvalidParameter, "parameter '%s' must be an array", k)
		}
	}

	return nil, errors.Wrapf(ErrMissingParameter, "parameter '%s' is required", keys[0])
}

func (p Params) Bool(key string) bool {
	raw, exists := p[key]
	if !exists {
		return false
	}

	b, _ := raw.(bool)

	return b
}

func (p Params) Has(key string) bool {
	_, exists := p[key]
	return exists
}

// Args flattens the "arguments" parameter into a list of process arguments.
// Numbers are formatted without quotes and nested arrays are expanded.
func (p Params) Args() ([]string, error) {
	raw, exists := p["arguments"]
	if !exists || raw == nil {
		return []string{}, nil
	}

	args := make([]string, 0)
	if err := flattenArg(raw, &args); err != nil {
		return nil, errors.WithStack(err)
	}

	return args, nil
}

func flattenArg(raw any, args *[]string) error {
	switch v := raw.(type) {
	case string:
		*args = append(*args, v)
	case int:
		*args = append(*args, fmt.Sprintf("%d", v))
	case int64:
		*args = append(*args, fmt.Sprintf("%d", v))
	case float64:
		*args = append(*args, fmt.Sprintf("%v", v))
	case []string:
		*args = append(*args, v...)
	case []any:
		for _, item := range v {
			if err := flattenArg(item, args); err != nil {
				return errors.WithStack(err)
			}
		}
	default:
		return errors.Wrapf(ErrInvalidParameter, "invalid type of command argument: %T", raw)
	}

	return nil
}

// Decode maps the params onto the given struct using its json tags.
func (p Params) Decode(v any) error {
	data, err := sonic.Marshal(p)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return errors.Wrap(ErrInvalidParameter, err.Error())
	}

	return nil
}

// DecodeContent maps the content of a command result onto the given value.
func DecodeContent[T any](res *Result) (T, error) {
	var zero T

	if res == nil {
		return zero, errors.New("empty command result")
	}

	if v, ok := res.Content.(T); ok {
		return v, nil
	}

	if v, ok := res.Content.(*T); ok && v != nil {
		return *v, nil
	}

	data, err := sonic.Marshal(res.Content)
	if err != nil {
		return zero, errors.WithStack(err)
	}

	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return zero, errors.WithStack(err)
	}

	return v, nil
}
