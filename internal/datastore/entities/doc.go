// Package entities contains the GORM models for the graphing schema.
//
// Relationship fields (Sample.Dataset, SampleSignal.Sample, SampleSignal.Target,
// UmapPlotPoint.Sample) are only populated by preloading reads; writes go
// through the foreign key columns.
package entities
