package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/observability/metrics"
)

// Repository provides CRUD access to one table.
type Repository[T entities.Record] interface {
	// FindByID returns the record with its relationships preloaded.
	// The error wraps the table's not-found sentinel when no row matches.
	FindByID(ctx context.Context, id uint) (*T, error)

	// FindAll returns every record ordered by id ascending.
	FindAll(ctx context.Context) ([]T, error)

	// Insert stores record, assigns its id and reloads its relationships.
	// Foreign keys are resolved first; an unresolved key fails with a
	// validation error and nothing is written.
	Insert(ctx context.Context, record *T) error

	// Update overwrites every column of the record identified by record's id.
	Update(ctx context.Context, record *T) error

	// Delete removes the record. Deleting a record still referenced by other
	// rows fails with a validation error wrapping ErrReferenced.
	Delete(ctx context.Context, id uint) error
}

// resolverFunc checks the foreign keys of record inside tx.
type resolverFunc[T entities.Record] func(tx *gorm.DB, record *T) error

// gormRepository implements Repository for any model.
type gormRepository[T entities.Record] struct {
	db       *gorm.DB
	table    string
	notFound error
	preloads []string
	resolve  resolverFunc[T]
	metrics  *metrics.DatastoreMetrics
}

func newRepository[T entities.Record](db *gorm.DB, m *metrics.DatastoreMetrics, notFound error, resolve resolverFunc[T], preloads ...string) *gormRepository[T] {
	var zero T
	return &gormRepository[T]{
		db:       db,
		table:    zero.TableName(),
		notFound: notFound,
		preloads: preloads,
		resolve:  resolve,
		metrics:  m,
	}
}

// withPreloads applies the repository's relationship preloads.
func (r *gormRepository[T]) withPreloads(tx *gorm.DB) *gorm.DB {
	for _, p := range r.preloads {
		tx = tx.Preload(p)
	}
	return tx
}

// done translates err and records the operation.
func (r *gormRepository[T]) done(operation string, start time.Time, id uint, err error) error {
	err = translateError(err, operation, r.table, r.notFound, id)
	r.metrics.RecordDbOperation(operation, r.table, time.Since(start), metricErrorType(err))
	return err
}

// FindByID returns the record with its relationships preloaded.
func (r *gormRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	start := time.Now()
	var record T
	err := r.withPreloads(r.db.WithContext(ctx)).First(&record, id).Error
	if err = r.done(metrics.OpFindByID, start, id, err); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAll returns every record ordered by id.
func (r *gormRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	records := make([]T, 0)
	err := r.withPreloads(r.db.WithContext(ctx)).Order("id ASC").Find(&records).Error
	if err = r.done(metrics.OpFindAll, start, 0, err); err != nil {
		return nil, err
	}
	return records, nil
}

// Insert resolves references, creates the row and reloads it in one transaction.
func (r *gormRepository[T]) Insert(ctx context.Context, record *T) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.resolve != nil {
			if err := r.resolve(tx, record); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
			return err
		}
		return r.withPreloads(tx).First(record, (*record).GetID()).Error
	})
	return r.done(metrics.OpInsert, start, (*record).GetID(), err)
}

// Update requires the row to exist, resolves references and rewrites every column.
func (r *gormRepository[T]) Update(ctx context.Context, record *T) error {
	start := time.Now()
	id := (*record).GetID()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if r.resolve != nil {
			if err := r.resolve(tx, record); err != nil {
				return err
			}
		}
		if err := tx.Model(record).Select("*").Omit(clause.Associations).Updates(record).Error; err != nil {
			return err
		}
		return r.withPreloads(tx).First(record, id).Error
	})
	return r.done(metrics.OpUpdate, start, id, err)
}

// Delete removes the record by id.
func (r *gormRepository[T]) Delete(ctx context.Context, id uint) error {
	start := time.Now()
	result := r.db.WithContext(ctx).Delete(new(T), id)
	err := result.Error
	if err == nil && result.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
	}
	return r.done(metrics.OpDelete, start, id, err)
}
