package setup

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/bornholm/fileworks/internal/config"
	"github.com/bornholm/fileworks/internal/store"
	"github.com/bornholm/fileworks/internal/store/repository/history"
	"github.com/pkg/errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dialectors = NewRegistry[gorm.Dialector]()

func init() {
	// A DSN without scheme is a sqlite file path
	dialectors.Register("", openSQLite)
	dialectors.Register("sqlite", openSQLite)

	dialectors.Register("memory", func(u *url.URL) (gorm.Dialector, error) {
		return sqlite.Open("file::memory:?cache=shared"), nil
	})
}

func openSQLite(u *url.URL) (gorm.Dialector, error) {
	dsn := u.Host + u.Path
	if dsn == "" {
		return nil, errors.New("missing sqlite database path")
	}

	if err := ensureBaseDirectory(dsn); err != nil {
		return nil, errors.WithStack(err)
	}

	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}

	return sqlite.Open(dsn), nil
}

var getStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*store.Store, error) {
	dialector, err := dialectors.From(conf.Storage.Database.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database '%s'", conf.Storage.Database.DSN)
	}

	var logLevel logger.LogLevel
	switch slog.Level(conf.Logger.Level) {
	case slog.LevelError:
		logLevel = logger.Error
	case slog.LevelWarn:
		logLevel = logger.Warn
	case slog.LevelInfo:
		logLevel = logger.Info
	default:
		logLevel = logger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if slog.Level(conf.Logger.Level) == slog.LevelDebug {
		db = db.Debug()
	}

	internalDB, err := db.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	internalDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA journal_mode=wal; PRAGMA busy_timeout=30000").Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return store.New(db, slog.Default()), nil
})

// getHistoryFromConfig returns the task history repository, or nil if no
// database is configured.
var getHistoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*history.Repository, error) {
	if conf.Storage.Database.DSN == "" {
		return nil, nil
	}

	store, err := getStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return history.NewRepository(store), nil
})

func ensureBaseDirectory(filePath string) error {
	baseDir := filepath.Dir(filePath)
	if err := ensureDirectory(baseDir); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
