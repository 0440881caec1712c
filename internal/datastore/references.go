package datastore

import (
	"gorm.io/gorm"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/errors"
)

// Field names reported when a reference does not resolve.
const (
	FieldDataset = "dataset"
	FieldSample  = "sample"
	FieldTarget  = "target"
)

// ResolveDataset returns a *ReferenceError unless a dataset with id exists.
func ResolveDataset(tx *gorm.DB, id uint) error {
	return resolveReference[entities.Dataset](tx, FieldDataset, id)
}

// ResolveSample returns a *ReferenceError unless a sample with id exists.
func ResolveSample(tx *gorm.DB, id uint) error {
	return resolveReference[entities.Sample](tx, FieldSample, id)
}

// ResolveTarget returns a *ReferenceError unless a target with id exists.
func ResolveTarget(tx *gorm.DB, id uint) error {
	return resolveReference[entities.Target](tx, FieldTarget, id)
}

func isReferenceError(err error) bool {
	var refErr *ReferenceError
	return errors.As(err, &refErr)
}

// referenceErrors collects every *ReferenceError in err's tree.
func referenceErrors(err error) []*ReferenceError {
	var out []*ReferenceError
	var walk func(error)
	walk = func(e error) {
		switch x := e.(type) {
		case *ReferenceError:
			out = append(out, x)
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

func resolveReference[T entities.Record](tx *gorm.DB, field string, id uint) error {
	if id == 0 {
		return &ReferenceError{Field: field, ID: id}
	}
	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &ReferenceError{Field: field, ID: id}
	}
	return nil
}

func resolveSampleRefs(tx *gorm.DB, s *entities.Sample) error {
	return ResolveDataset(tx, s.DatasetID)
}

// resolveSampleSignalRefs reports both references when both are missing.
func resolveSampleSignalRefs(tx *gorm.DB, s *entities.SampleSignal) error {
	sampleErr := ResolveSample(tx, s.SampleID)
	if sampleErr != nil && !isReferenceError(sampleErr) {
		return sampleErr
	}
	targetErr := ResolveTarget(tx, s.TargetID)
	if targetErr != nil && !isReferenceError(targetErr) {
		return targetErr
	}
	return errors.Join(sampleErr, targetErr)
}

func resolveUmapPlotPointRefs(tx *gorm.DB, p *entities.UmapPlotPoint) error {
	return ResolveSample(tx, p.SampleID)
}
