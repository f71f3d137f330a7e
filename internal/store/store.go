package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SQLite result codes worth retrying a transaction for.
const (
	CodeBusy   = 5
	CodeLocked = 6
)

var RetryableCodes = []int{CodeBusy, CodeLocked}

var models = []any{
	&TaskRecord{},
}

// Store gives access to the journal database. The schema is migrated on
// first use.
type Store struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
	logger      *slog.Logger
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := fn(ctx, tx); err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (s *Store) WithDatabase(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := fn(ctx, db); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// WithRetry runs fn in a transaction, retrying with an exponential backoff
// while it fails with one of the given SQLite codes.
func (s *Store) WithRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...int) error {
	if len(codes) == 0 {
		codes = RetryableCodes
	}

	backoff := 100 * time.Millisecond
	maxRetries := 8
	retries := 0

	for {
		err := s.WithTx(ctx, fn)
		if err == nil {
			return nil
		}

		if retries >= maxRetries {
			return errors.WithStack(err)
		}

		var sqliteErr *sqlite.Error
		if !errors.As(err, &sqliteErr) || !slices.Contains(codes, sqliteErr.Code()) {
			return errors.WithStack(err)
		}

		s.logger.DebugContext(ctx, "transaction failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

		retries++

		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return errors.WithStack(err)
		}
		return sqlDB.Ping()
	})
}

func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{
		getDatabase: createGetDatabase(db),
		logger:      logger.With("component", "store"),
	}
}

func createGetDatabase(db *gorm.DB) func(ctx context.Context) (*gorm.DB, error) {
	var (
		migrateOnce sync.Once
		migrateErr  error
	)

	return func(ctx context.Context) (*gorm.DB, error) {
		migrateOnce.Do(func() {
			if err := db.AutoMigrate(models...); err != nil {
				migrateErr = errors.WithStack(err)
				return
			}
		})
		if migrateErr != nil {
			return nil, errors.WithStack(migrateErr)
		}

		return db.WithContext(ctx), nil
	}
}
