package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
)

// Migrator copies the graphing tables from SQLite to the target database.
type Migrator struct {
	cfg      Config
	out      io.Writer
	sourceDB *gorm.DB
	targetDB *gorm.DB
}

// MigrationStats tracks migration statistics.
type MigrationStats struct {
	StartTime time.Time
	EndTime   time.Time
	Tables    []TableStats
}

// TableStats tracks per-table migration statistics.
type TableStats struct {
	Name      string
	Migrated  int64
	Skipped   int64
	Errors    int64
	Duration  time.Duration
	BatchSize int
}

// Print writes the migration summary to w.
func (s *MigrationStats) Print(w io.Writer) {
	rule := strings.Repeat("-", 70)
	fmt.Fprintln(w, "\n=== Migration Summary ===")
	fmt.Fprintf(w, "Duration: %s\n\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))

	fmt.Fprintf(w, "%-25s %10s %10s %10s %12s\n", "Table", "Migrated", "Skipped", "Errors", "Duration")
	fmt.Fprintln(w, rule)

	var totalMigrated, totalSkipped, totalErrors int64
	for _, t := range s.Tables {
		fmt.Fprintf(w, "%-25s %10d %10d %10d %12s\n",
			t.Name, t.Migrated, t.Skipped, t.Errors, t.Duration.Round(time.Millisecond))
		totalMigrated += t.Migrated
		totalSkipped += t.Skipped
		totalErrors += t.Errors
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-25s %10d %10d %10d\n", "TOTAL", totalMigrated, totalSkipped, totalErrors)
}

// Total returns the number of rows migrated across all tables.
func (s *MigrationStats) Total() int64 {
	var total int64
	for _, t := range s.Tables {
		total += t.Migrated
	}
	return total
}

// NewMigrator opens and pings both databases.
func NewMigrator(cfg *Config, out io.Writer) (*Migrator, error) {
	m := &Migrator{cfg: *cfg, out: out}

	logLevel := gormlogger.Silent
	if cfg.Verbose {
		logLevel = gormlogger.Info
	}
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	}

	sourceDB, err := gorm.Open(sqlite.Open("file:"+cfg.SQLitePath+"?_foreign_keys=on&mode=ro"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	m.sourceDB = sourceDB

	targetDB, err := gorm.Open(targetDialector(cfg), gormConfig)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.TargetType, err)
	}
	m.targetDB = targetDB

	for name, db := range map[string]*gorm.DB{"source": sourceDB, "target": targetDB} {
		sqlDB, err := db.DB()
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to get %s connection: %w", name, err)
		}
		if err := sqlDB.Ping(); err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to ping %s database: %w", name, err)
		}
	}

	fmt.Fprintln(out, "Database connections established successfully")
	return m, nil
}

func targetDialector(cfg *Config) gorm.Dialector {
	switch cfg.TargetType {
	case TargetPostgres:
		return postgres.Open(cfg.TargetDSN)
	case TargetSQLite:
		return sqlite.Open("file:" + cfg.TargetDSN + "?_foreign_keys=on")
	default:
		return mysql.Open(cfg.TargetDSN)
	}
}

// Close closes both database connections.
func (m *Migrator) Close() {
	for _, db := range []*gorm.DB{m.sourceDB, m.targetDB} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// tableCopy copies one table; tables run parent first.
type tableCopy struct {
	name string
	copy func(ctx context.Context, batchSize int) (*TableStats, error)
}

func (m *Migrator) tables() []tableCopy {
	return []tableCopy{
		{entities.Dataset{}.TableName(), func(ctx context.Context, n int) (*TableStats, error) {
			return migrateTable[entities.Dataset](ctx, m, n)
		}},
		{entities.Target{}.TableName(), func(ctx context.Context, n int) (*TableStats, error) {
			return migrateTable[entities.Target](ctx, m, n)
		}},
		{entities.Sample{}.TableName(), func(ctx context.Context, n int) (*TableStats, error) {
			return migrateTable[entities.Sample](ctx, m, n)
		}},
		{entities.SampleSignal{}.TableName(), func(ctx context.Context, n int) (*TableStats, error) {
			return migrateTable[entities.SampleSignal](ctx, m, n)
		}},
		{entities.UmapPlotPoint{}.TableName(), func(ctx context.Context, n int) (*TableStats, error) {
			return migrateTable[entities.UmapPlotPoint](ctx, m, n)
		}},
	}
}

// Run executes the full migration.
func (m *Migrator) Run(ctx context.Context) (*MigrationStats, error) {
	stats := &MigrationStats{StartTime: time.Now()}

	if m.cfg.AutoMigrate {
		fmt.Fprintln(m.out, "Creating tables in target database...")
		if err := m.targetDB.WithContext(ctx).AutoMigrate(entities.All()...); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate tables: %w", err)
		}
	}

	for _, t := range m.tables() {
		tableStats, err := t.copy(ctx, m.cfg.BatchSize)
		if err != nil {
			return stats, fmt.Errorf("failed to migrate %s: %w", t.name, err)
		}
		stats.Tables = append(stats.Tables, *tableStats)
	}

	if m.cfg.TargetType == TargetPostgres {
		if err := m.resetSequences(ctx); err != nil {
			return stats, err
		}
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// resetSequences moves PostgreSQL id sequences past the copied ids so new
// rows do not collide with them.
func (m *Migrator) resetSequences(ctx context.Context) error {
	for _, t := range m.tables() {
		if err := resetSequence(m.targetDB.WithContext(ctx), t.name).Error; err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", t.name, err)
		}
	}
	return nil
}

// resetSequence binds the table name as a parameter and quotes it as an
// identifier through clause.Table.
func resetSequence(tx *gorm.DB, table string) *gorm.DB {
	return tx.Exec(
		"SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM ?",
		table, clause.Table{Name: table})
}

// migrateTable copies all rows of T in batches, keeping their ids.
func migrateTable[T entities.Record](ctx context.Context, m *Migrator, batchSize int) (*TableStats, error) {
	start := time.Now()
	tableName := (*new(T)).TableName()
	stats := &TableStats{Name: tableName, BatchSize: batchSize}

	fmt.Fprintf(m.out, "Migrating %s...\n", tableName)

	var sourceCount int64
	if err := m.sourceDB.WithContext(ctx).Model(new(T)).Count(&sourceCount).Error; err != nil {
		return stats, fmt.Errorf("failed to count source records: %w", err)
	}
	if sourceCount == 0 {
		fmt.Fprintf(m.out, "  %s: no records to migrate\n", tableName)
		stats.Duration = time.Since(start)
		return stats, nil
	}

	var processed int64
	batchNum := 0
	err := m.sourceDB.WithContext(ctx).Model(new(T)).FindInBatches(new([]T), batchSize, func(tx *gorm.DB, batch int) error {
		batchNum++
		records := tx.Statement.Dest.(*[]T)

		// Existing ids are skipped so reruns are idempotent
		result := m.targetDB.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(records)
		if result.Error != nil {
			stats.Errors += int64(len(*records))
			fmt.Fprintf(m.out, "  Batch %d error: %v\n", batchNum, result.Error)
			return nil //nolint:nilerr // continue with the next batch
		}

		stats.Migrated += result.RowsAffected
		stats.Skipped += int64(len(*records)) - result.RowsAffected
		processed += int64(len(*records))

		if m.cfg.Verbose || batchNum%10 == 0 {
			fmt.Fprintf(m.out, "  %s: %d/%d (%.1f%%)\n", tableName, processed, sourceCount,
				float64(processed)/float64(sourceCount)*100)
		}
		return nil
	}).Error
	if err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	fmt.Fprintf(m.out, "  %s: completed (%d migrated, %d skipped, %d errors) in %s\n",
		tableName, stats.Migrated, stats.Skipped, stats.Errors, stats.Duration.Round(time.Millisecond))
	return stats, nil
}
