package history

import (
	"context"

	"github.com/bornholm/fileworks/internal/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	store *store.Store
}

func NewRepository(store *store.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// Save creates the record or updates the one sharing its task id
func (r *Repository) Save(ctx context.Context, record *store.TaskRecord) error {
	return r.store.WithRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		var existing store.TaskRecord

		err := db.Where("task_id = ?", record.TaskID).First(&existing).Error
		switch {
		case err == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return errors.WithStack(err)
		}

		if err := db.Save(record).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
}

// GetByTaskID retrieves a record by the id of its task
func (r *Repository) GetByTaskID(ctx context.Context, taskID string) (*store.TaskRecord, error) {
	var record store.TaskRecord
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Where("task_id = ?", taskID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(ErrNotFound, "no record for task '%s'", taskID)
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

type ListOptions struct {
	Limit    int
	Offset   int
	Function string
	Type     string
}

// List retrieves the records, most recent first
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*store.TaskRecord, error) {
	var records []*store.TaskRecord
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		query := db.Order("created_at DESC").Order("id DESC")
		if opts.Function != "" {
			query = query.Where("function_name = ?", opts.Function)
		}
		if opts.Type != "" {
			query = query.Where("task_type = ?", opts.Type)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Offset(opts.Offset)
		}
		if err := query.Find(&records).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the total number of records
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.store.WithDatabase(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Model(&store.TaskRecord{}).Count(&count).Error; err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
