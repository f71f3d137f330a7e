package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	first := New(NewID(), TypeFile, nil, Action{Name: "a"})
	second := New(NewID(), TypeTool, nil, Action{Name: "b"})

	require.NoError(t, registry.Add(first))
	require.NoError(t, registry.Add(second))

	err := registry.Add(New(first.ID(), TypeFile, nil, Action{Name: "c"}))
	require.ErrorIs(t, err, ErrDuplicateTask)

	found, err := registry.Get(second.ID())
	require.NoError(t, err)
	require.Same(t, second, found)

	_, err = registry.Get("unknown")
	require.ErrorIs(t, err, ErrTaskNotFound)

	require.Equal(t, []*Task{first, second}, registry.List())
	require.Equal(t, []*Task{first}, registry.List(WithType(TypeFile)))

	second.SetRunning(true)
	require.Equal(t, []*Task{second}, registry.List(WithRunning(true)))

	require.Equal(t, 2, registry.Len())
}
