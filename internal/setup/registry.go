package setup

import (
	"net/url"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotRegistered = errors.New("not registered")

type Factory[T any] func(u *url.URL) (T, error)

// Registry maps the scheme of an URL (ie a database DSN) to the factory of
// the matching service.
type Registry[T any] struct {
	mappings map[string]Factory[T]
}

func (r *Registry[T]) Register(scheme string, factory Factory[T]) {
	r.mappings[scheme] = factory
}

func (r *Registry[T]) From(rawURL string) (T, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return *new(T), errors.WithStack(err)
	}

	factory, exists := r.mappings[u.Scheme]
	if !exists {
		return *new(T), errors.Wrapf(ErrNotRegistered, "scheme '%s' not found, expected one of [%s]", u.Scheme, strings.Join(r.schemes(), ", "))
	}

	value, err := factory(u)
	if err != nil {
		return *new(T), errors.WithStack(err)
	}

	return value, nil
}

func (r *Registry[T]) schemes() []string {
	schemes := make([]string, 0, len(r.mappings))
	for s := range r.mappings {
		if s == "" {
			continue
		}
		schemes = append(schemes, s)
	}

	slices.Sort(schemes)

	return schemes
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		mappings: make(map[string]Factory[T]),
	}
}
