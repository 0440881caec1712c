package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for datastore operations
type DatastoreMetrics struct {
	dbOperationsTotal      *prometheus.CounterVec
	dbOperationDuration    *prometheus.HistogramVec
	dbOperationErrorsTotal *prometheus.CounterVec
	dbConnectionsOpen      prometheus.Gauge
	dbConnectionsInUse     prometheus.Gauge

	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates datastore metrics and registers them with registry.
func NewDatastoreMetrics(registry prometheus.Registerer) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"},
	)

	m.dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_db_operation_duration_seconds",
			Help:    "Time taken for database operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation", "table"},
	)

	m.dbOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_operation_errors_total",
			Help: "Total number of database operation errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	m.dbConnectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_db_connections_open",
		Help: "Open connections in the database pool",
	})

	m.dbConnectionsInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_db_connections_in_use",
		Help: "Connections currently in use",
	})

	m.collectors = []prometheus.Collector{
		m.dbOperationsTotal,
		m.dbOperationDuration,
		m.dbOperationErrorsTotal,
		m.dbConnectionsOpen,
		m.dbConnectionsInUse,
	}
}

// Describe implements the Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDbOperation records one finished operation with its outcome and duration.
// errorType is ignored for successful operations.
func (m *DatastoreMetrics) RecordDbOperation(operation, table string, duration time.Duration, errorType string) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if errorType != "" {
		status = StatusError
		m.dbOperationErrorsTotal.WithLabelValues(operation, table, errorType).Inc()
	}
	m.dbOperationsTotal.WithLabelValues(operation, table, status).Inc()
	m.dbOperationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// SetConnectionStats publishes the pool gauges.
func (m *DatastoreMetrics) SetConnectionStats(open, inUse int) {
	if m == nil {
		return
	}
	m.dbConnectionsOpen.Set(float64(open))
	m.dbConnectionsInUse.Set(float64(inUse))
}
