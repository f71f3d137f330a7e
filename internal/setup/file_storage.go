package setup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bornholm/fileworks/internal/config"
	"github.com/bornholm/fileworks/internal/file"
	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/pkg/errors"
)

const tempFilesMaxAge = 24 * time.Hour

var getFileStorageFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*file.Storage, error) {
	dataDir := conf.App.DataDir
	if dataDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "could not find user config directory")
		}

		dataDir = filepath.Join(configDir, "fileworks")
	}

	storage := file.NewStorage(dataDir, slog.Default())

	if err := storage.EnsureDirectoryExists(); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := storage.CleanupTempFiles(tempFilesMaxAge); err != nil {
		slog.WarnContext(ctx, "could not cleanup temporary files", slogx.Error(err))
	}

	return storage, nil
})

func ensureDirectory(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0750); err != nil {
		return errors.Wrapf(err, "could not ensure directory '%s'", dirPath)
	}

	return nil
}
