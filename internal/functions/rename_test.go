package functions

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLessSequenceName(t *testing.T) {
	names := []string{"b.png", "10.png", "a.png", "2.png", "02.png", "x.jpg", "1.png"}

	stem := func(name string) string {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}

	sort.SliceStable(names, func(i, j int) bool {
		return lessSequenceName(stem(names[i]), names[i], stem(names[j]), names[j])
	})

	require.Equal(t, []string{"1.png", "02.png", "2.png", "10.png", "a.png", "b.png", "x.jpg"}, names)

	// The order must not depend on the initial order
	reversed := []string{"x.jpg", "b.png", "a.png", "10.png", "2.png", "02.png", "1.png"}
	sort.SliceStable(reversed, func(i, j int) bool {
		return lessSequenceName(stem(reversed[i]), reversed[i], stem(reversed[j]), reversed[j])
	})

	require.Equal(t, names, reversed)
}
