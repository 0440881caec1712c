// Package serializers converts between stored entities and the JSON bodies of
// the REST API. Every kind has an explicit response struct, whose field order
// is the key order on the wire, and an input struct decoded field by field.
package serializers

import "github.com/tphakala/graphing-app/internal/datastore/entities"

// Dataset is the wire form of a dataset.
type Dataset struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Target is the wire form of a target.
type Target struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Sample is the wire form of a sample with its dataset embedded.
type Sample struct {
	ID           uint           `json:"id"`
	Metadata     map[string]any `json:"metadata"`
	Dataset      Dataset        `json:"dataset"`
	PlateBarcode string         `json:"plate_barcode"`
	WellID       string         `json:"well_id"`
}

// SampleSignal is the wire form of a signal with its sample and target embedded.
type SampleSignal struct {
	ID     uint    `json:"id"`
	Signal float64 `json:"signal"`
	Sample Sample  `json:"sample"`
	Target Target  `json:"target"`
}

// UmapPlotPoint is the wire form of a plot point with its sample embedded.
type UmapPlotPoint struct {
	ID     uint    `json:"id"`
	XCoor  float64 `json:"x_coor"`
	YCoor  float64 `json:"y_coor"`
	Sample Sample  `json:"sample"`
}

func NewDataset(e entities.Dataset) Dataset {
	return Dataset{ID: e.ID, Name: e.Name}
}

func NewTarget(e entities.Target) Target {
	return Target{ID: e.ID, Name: e.Name}
}

// NewSample renders a sample; missing metadata is rendered as an empty object.
func NewSample(e entities.Sample) Sample {
	metadata := map[string]any(e.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Sample{
		ID:           e.ID,
		Metadata:     metadata,
		Dataset:      NewDataset(e.Dataset),
		PlateBarcode: e.PlateBarcode,
		WellID:       e.WellID,
	}
}

func NewSampleSignal(e entities.SampleSignal) SampleSignal {
	return SampleSignal{
		ID:     e.ID,
		Signal: e.Signal,
		Sample: NewSample(e.Sample),
		Target: NewTarget(e.Target),
	}
}

func NewUmapPlotPoint(e entities.UmapPlotPoint) UmapPlotPoint {
	return UmapPlotPoint{
		ID:     e.ID,
		XCoor:  e.XCoor,
		YCoor:  e.YCoor,
		Sample: NewSample(e.Sample),
	}
}

// List renders items with convert. The result is never nil so an empty
// collection encodes as [].
func List[E, R any](items []E, convert func(E) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}
