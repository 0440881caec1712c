package serializers

import "github.com/tphakala/graphing-app/internal/datastore/entities"

// Body field names.
const (
	fieldName         = "name"
	fieldMetadata     = "metadata"
	fieldDataset      = "dataset"
	fieldPlateBarcode = "plate_barcode"
	fieldWellID       = "well_id"
	fieldSignal       = "signal"
	fieldSample       = "sample"
	fieldTarget       = "target"
	fieldXCoor        = "x_coor"
	fieldYCoor        = "y_coor"
)

// DatasetInput is a decoded dataset write body. Nil fields were absent.
type DatasetInput struct {
	Name *string
}

// DecodeDataset validates a dataset write body.
func DecodeDataset(body []byte, mode Mode) (DatasetInput, error) {
	o, err := parseObject(body, mode, fieldName)
	if err != nil {
		return DatasetInput{}, err
	}
	in := DatasetInput{Name: o.text(fieldName)}
	return in, o.err()
}

// Apply copies the present fields onto e.
func (in DatasetInput) Apply(e *entities.Dataset) {
	if in.Name != nil {
		e.Name = *in.Name
	}
}

// TargetInput is a decoded target write body.
type TargetInput struct {
	Name *string
}

// DecodeTarget validates a target write body.
func DecodeTarget(body []byte, mode Mode) (TargetInput, error) {
	o, err := parseObject(body, mode, fieldName)
	if err != nil {
		return TargetInput{}, err
	}
	in := TargetInput{Name: o.text(fieldName)}
	return in, o.err()
}

// Apply copies the present fields onto e.
func (in TargetInput) Apply(e *entities.Target) {
	if in.Name != nil {
		e.Name = *in.Name
	}
}

// SampleInput is a decoded sample write body.
type SampleInput struct {
	Metadata     map[string]any
	Dataset      *Ref
	PlateBarcode *string
	WellID       *string

	mode Mode
}

// DecodeSample validates a sample write body. metadata is optional.
func DecodeSample(body []byte, mode Mode) (SampleInput, error) {
	o, err := parseObject(body, mode, fieldMetadata, fieldDataset, fieldPlateBarcode, fieldWellID)
	if err != nil {
		return SampleInput{}, err
	}
	in := SampleInput{
		Metadata:     o.dict(fieldMetadata),
		Dataset:      o.ref(fieldDataset),
		PlateBarcode: o.text(fieldPlateBarcode),
		WellID:       o.text(fieldWellID),
		mode:         mode,
	}
	return in, o.err()
}

// Apply copies the present fields onto e. Metadata left out of a create or
// a full replace becomes an empty object.
func (in SampleInput) Apply(e *entities.Sample) {
	switch {
	case in.Metadata != nil:
		e.Metadata = entities.Metadata(in.Metadata)
	case e.Metadata == nil, in.mode == ModeReplace:
		e.Metadata = entities.Metadata{}
	}
	if in.Dataset != nil {
		e.DatasetID = in.Dataset.ID
	}
	if in.PlateBarcode != nil {
		e.PlateBarcode = *in.PlateBarcode
	}
	if in.WellID != nil {
		e.WellID = *in.WellID
	}
}

// SampleSignalInput is a decoded sample signal write body.
type SampleSignalInput struct {
	Signal *float64
	Sample *Ref
	Target *Ref
}

// DecodeSampleSignal validates a sample signal write body.
func DecodeSampleSignal(body []byte, mode Mode) (SampleSignalInput, error) {
	o, err := parseObject(body, mode, fieldSignal, fieldSample, fieldTarget)
	if err != nil {
		return SampleSignalInput{}, err
	}
	in := SampleSignalInput{
		Signal: o.number(fieldSignal),
		Sample: o.ref(fieldSample),
		Target: o.ref(fieldTarget),
	}
	return in, o.err()
}

// Apply copies the present fields onto e.
func (in SampleSignalInput) Apply(e *entities.SampleSignal) {
	if in.Signal != nil {
		e.Signal = *in.Signal
	}
	if in.Sample != nil {
		e.SampleID = in.Sample.ID
	}
	if in.Target != nil {
		e.TargetID = in.Target.ID
	}
}

// UmapPlotPointInput is a decoded UMAP plot point write body.
type UmapPlotPointInput struct {
	XCoor  *float64
	YCoor  *float64
	Sample *Ref
}

// DecodeUmapPlotPoint validates a UMAP plot point write body.
func DecodeUmapPlotPoint(body []byte, mode Mode) (UmapPlotPointInput, error) {
	o, err := parseObject(body, mode, fieldXCoor, fieldYCoor, fieldSample)
	if err != nil {
		return UmapPlotPointInput{}, err
	}
	in := UmapPlotPointInput{
		XCoor:  o.number(fieldXCoor),
		YCoor:  o.number(fieldYCoor),
		Sample: o.ref(fieldSample),
	}
	return in, o.err()
}

// Apply copies the present fields onto e.
func (in UmapPlotPointInput) Apply(e *entities.UmapPlotPoint) {
	if in.XCoor != nil {
		e.XCoor = *in.XCoor
	}
	if in.YCoor != nil {
		e.YCoor = *in.YCoor
	}
	if in.Sample != nil {
		e.SampleID = in.Sample.ID
	}
}
