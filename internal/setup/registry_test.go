package setup

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/bornholm/fileworks/internal/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry[string]()
	registry.Register("sqlite", func(u *url.URL) (string, error) {
		return u.Host + u.Path, nil
	})

	value, err := registry.From("sqlite://data/store.sqlite")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.Equal(t, "data/store.sqlite", value)

	_, err = registry.From("postgres://localhost/fileworks")
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestNewOrchestratorFromConfig(t *testing.T) {
	conf := &config.Config{}
	conf.App.DataDir = t.TempDir()
	conf.App.Language = "en"
	conf.Storage.Database.DSN = filepath.Join(t.TempDir(), "store.sqlite")

	ctx := context.Background()

	orchestrator, err := NewOrchestratorFromConfig(ctx, conf)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.NotNil(t, orchestrator)

	server, err := NewHTTPServerFromConfig(ctx, conf)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	require.NotNil(t, server)
}
