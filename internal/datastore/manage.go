package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/logger"
	"github.com/tphakala/graphing-app/internal/observability/metrics"
)

// DefaultSlowQueryThreshold is used when the settings leave the threshold unset.
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// performAutoMigration creates or updates every table in dependency order.
func performAutoMigration(ctx context.Context, db *gorm.DB, m *metrics.DatastoreMetrics, log logger.Logger) error {
	start := time.Now()
	models := entities.All()
	log.Debug("starting database migration", logger.Int("tables", len(models)))

	err := db.WithContext(ctx).AutoMigrate(models...)
	if err != nil {
		err = dbError(err, metrics.OpMigrate, "")
	}
	m.RecordDbOperation(metrics.OpMigrate, "", time.Since(start), metricErrorType(err))
	if err != nil {
		log.Error("database migration failed", logger.Error(err))
		return err
	}

	log.Info("database migration completed",
		logger.Int("tables", len(models)),
		logger.Duration("duration", time.Since(start)))
	return nil
}
