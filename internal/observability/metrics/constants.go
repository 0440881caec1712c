// Package metrics provides the Prometheus collectors used by the server.
package metrics

// Datastore operation labels.
const (
	OpFindByID = "find_by_id"
	OpFindAll  = "find_all"
	OpInsert   = "insert"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpMigrate  = "migrate"
	OpPing     = "ping"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Histogram bucket layout: 1ms doubling 15 times reaches roughly 16s.
const (
	BucketStart1ms = 0.001
	BucketFactor2  = 2
	BucketCount15  = 15
)
