package datastore

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/observability/metrics"
)

const componentDatastore = "datastore"

// Sentinel errors for repository operations. Returned errors wrap these, so
// callers can match with errors.Is.
var (
	ErrDatasetNotFound       = errors.NewStd("dataset not found")
	ErrSampleNotFound        = errors.NewStd("sample not found")
	ErrTargetNotFound        = errors.NewStd("target not found")
	ErrSampleSignalNotFound  = errors.NewStd("sample signal not found")
	ErrUmapPlotPointNotFound = errors.NewStd("umap plot point not found")

	// ErrReferenced is returned when a delete is blocked by rows referencing the record.
	ErrReferenced = errors.NewStd("record is referenced by other records")

	// ErrNotInitialized is returned when a store is used before Open.
	ErrNotInitialized = errors.NewStd("database connection is not initialized")
)

// MySQL server error numbers for foreign key violations.
const (
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
)

// pgForeignKeyViolation is the SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

// ReferenceError reports a write whose foreign key names a record that does not exist.
type ReferenceError struct {
	Field string
	ID    uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason())
}

// Reason is the per-field message shown to API clients.
func (e *ReferenceError) Reason() string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(e.ID))
}

// isForeignKeyViolation recognises constraint failures from every supported driver.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		// RESTRICT actions on delete surface as trigger constraints.
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintTrigger)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrRowIsReferenced || mysqlErr.Number == mysqlErrNoReferencedRow
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

// translateError maps raw GORM and driver errors to categorized errors.
func translateError(err error, operation, table string, notFound error, id uint) error {
	if err == nil {
		return nil
	}

	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return err
	}

	if refs := referenceErrors(err); len(refs) > 0 {
		builder := errors.New(err).
			Component(componentDatastore).
			Context("operation", operation).
			Context("table", table)
		for _, ref := range refs {
			builder = builder.Field(ref.Field, ref.Reason())
		}
		return builder.Build()
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.New(notFound).
			Component(componentDatastore).
			Category(errors.CategoryNotFound).
			Context("table", table).
			Context("id", id).
			Build()

	case isForeignKeyViolation(err) && operation == metrics.OpDelete:
		return errors.New(fmt.Errorf("%w: %s %d", ErrReferenced, table, id)).
			Component(componentDatastore).
			Field("id", fmt.Sprintf("cannot delete %d: %s", id, ErrReferenced)).
			Context("operation", operation).
			Context("table", table).
			Build()

	case isForeignKeyViolation(err):
		return errors.New(err).
			Component(componentDatastore).
			Field("reference", "related object does not exist").
			Context("operation", operation).
			Context("table", table).
			Build()

	case errors.Is(err, context.Canceled):
		return errors.New(err).
			Component(componentDatastore).
			Category(errors.CategoryCancellation).
			Context("operation", operation).
			Build()

	case errors.Is(err, context.DeadlineExceeded):
		return errors.New(err).
			Component(componentDatastore).
			Category(errors.CategoryTimeout).
			Context("operation", operation).
			Build()
	}

	return dbError(err, operation, table)
}

// dbError creates a properly categorized database error with context
func dbError(err error, operation, table string) error {
	return errors.New(err).
		Component(componentDatastore).
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Context("table", table).
		Build()
}

// metricErrorType returns the error_type label for err, or "" on success.
func metricErrorType(err error) string {
	if err == nil {
		return ""
	}
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return string(enhanced.Category)
	}
	return string(errors.CategoryGeneric)
}
