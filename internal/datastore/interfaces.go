// Package datastore persists the graphing entities through GORM on SQLite,
// MySQL or PostgreSQL.
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
	"github.com/tphakala/graphing-app/internal/observability/metrics"
)

// Interface is the storage collaborator used by the API handlers.
type Interface interface {
	Open() error
	Close() error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Backend() string

	Datasets() Repository[entities.Dataset]
	Samples() Repository[entities.Sample]
	Targets() Repository[entities.Target]
	SampleSignals() Repository[entities.SampleSignal]
	UmapPlotPoints() Repository[entities.UmapPlotPoint]
}

// DataStore holds the GORM handle and repositories shared by every backend.
type DataStore struct {
	DB       *gorm.DB
	Settings *conf.Settings

	log     logger.Logger
	metrics *metrics.DatastoreMetrics

	datasets       *gormRepository[entities.Dataset]
	samples        *gormRepository[entities.Sample]
	targets        *gormRepository[entities.Target]
	sampleSignals  *gormRepository[entities.SampleSignal]
	umapPlotPoints *gormRepository[entities.UmapPlotPoint]
}

// Option configures a DataStore.
type Option func(*DataStore)

// WithMetrics instruments every repository operation.
func WithMetrics(m *metrics.DatastoreMetrics) Option {
	return func(ds *DataStore) {
		ds.metrics = m
	}
}

// WithLogger overrides the module logger.
func WithLogger(l logger.Logger) Option {
	return func(ds *DataStore) {
		if l != nil {
			ds.log = l
		}
	}
}

// New returns the store for the enabled backend. The store must be opened before use.
func New(settings *conf.Settings, opts ...Option) (Interface, error) {
	ds := DataStore{Settings: settings, log: GetLogger()}
	for _, opt := range opts {
		opt(&ds)
	}

	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{DataStore: ds}, nil
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{DataStore: ds}, nil
	case settings.Output.Postgres.Enabled:
		return &PostgresStore{DataStore: ds}, nil
	default:
		return nil, errors.Newf("no database backend enabled").
			Component(componentDatastore).
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// GetLogger returns the datastore module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}

// gormConfig routes GORM's logging through the central logger.
func (ds *DataStore) gormConfig() *gorm.Config {
	threshold := DefaultSlowQueryThreshold
	if ds.Settings != nil && ds.Settings.Output.SlowQueryThreshold > 0 {
		threshold = ds.Settings.Output.SlowQueryThreshold
	}
	return &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(ds.log.Module("sql"), threshold),
	}
}

// attach stores db, migrates the schema and builds the repositories.
func (ds *DataStore) attach(db *gorm.DB, dbType, connectionInfo string) error {
	ds.DB = db
	ds.initRepositories()
	if err := performAutoMigration(context.Background(), db, ds.metrics, ds.log); err != nil {
		return err
	}
	ds.log.Info("database opened",
		logger.String("db_type", dbType),
		logger.String("connection", connectionInfo))
	return nil
}

func (ds *DataStore) initRepositories() {
	ds.datasets = newRepository[entities.Dataset](ds.DB, ds.metrics, ErrDatasetNotFound, nil)
	ds.targets = newRepository[entities.Target](ds.DB, ds.metrics, ErrTargetNotFound, nil)
	ds.samples = newRepository[entities.Sample](ds.DB, ds.metrics, ErrSampleNotFound, resolveSampleRefs,
		"Dataset")
	ds.sampleSignals = newRepository[entities.SampleSignal](ds.DB, ds.metrics, ErrSampleSignalNotFound, resolveSampleSignalRefs,
		"Sample.Dataset", "Target")
	ds.umapPlotPoints = newRepository[entities.UmapPlotPoint](ds.DB, ds.metrics, ErrUmapPlotPointNotFound, resolveUmapPlotPointRefs,
		"Sample.Dataset")
}

// Datasets returns the dataset repository.
func (ds *DataStore) Datasets() Repository[entities.Dataset] { return ds.datasets }

// Samples returns the sample repository.
func (ds *DataStore) Samples() Repository[entities.Sample] { return ds.samples }

// Targets returns the target repository.
func (ds *DataStore) Targets() Repository[entities.Target] { return ds.targets }

// SampleSignals returns the sample signal repository.
func (ds *DataStore) SampleSignals() Repository[entities.SampleSignal] { return ds.sampleSignals }

// UmapPlotPoints returns the UMAP plot point repository.
func (ds *DataStore) UmapPlotPoints() Repository[entities.UmapPlotPoint] { return ds.umapPlotPoints }

// Migrate runs the schema migration again.
func (ds *DataStore) Migrate(ctx context.Context) error {
	if ds.DB == nil {
		return ErrNotInitialized
	}
	return performAutoMigration(ctx, ds.DB, ds.metrics, ds.log)
}

// Ping checks the connection and publishes pool statistics.
func (ds *DataStore) Ping(ctx context.Context) error {
	if ds.DB == nil {
		return ErrNotInitialized
	}
	start := time.Now()
	sqlDB, err := ds.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
		stats := sqlDB.Stats()
		ds.metrics.SetConnectionStats(stats.OpenConnections, stats.InUse)
	}
	if err != nil {
		err = dbError(err, metrics.OpPing, "")
	}
	ds.metrics.RecordDbOperation(metrics.OpPing, "", time.Since(start), metricErrorType(err))
	return err
}

// Close releases the connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return ErrNotInitialized
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", "")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", "")
	}
	ds.log.Info("database closed")
	return nil
}
