package serializers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/errors"
)

func TestSampleResponseShape(t *testing.T) {
	t.Parallel()

	sample := entities.Sample{
		ID:           1,
		DatasetID:    1,
		Dataset:      entities.Dataset{ID: 1, Name: "D1"},
		PlateBarcode: "P1",
		WellID:       "A1",
	}

	body, err := json.Marshal(NewSample(sample))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":1,"metadata":{},"dataset":{"id":1,"name":"D1"},"plate_barcode":"P1","well_id":"A1"}`,
		string(body))
	assert.Equal(t,
		`{"id":1,"metadata":{},"dataset":{"id":1,"name":"D1"},"plate_barcode":"P1","well_id":"A1"}`,
		string(body), "keys keep declaration order")
}

func TestNestedEmbedding(t *testing.T) {
	t.Parallel()

	sample := entities.Sample{
		ID:       3,
		Metadata: entities.Metadata{"x": "y"},
		Dataset:  entities.Dataset{ID: 2, Name: "D2"},
	}
	signal := NewSampleSignal(entities.SampleSignal{
		ID:     9,
		Signal: 0.25,
		Sample: sample,
		Target: entities.Target{ID: 4, Name: "T4"},
	})
	assert.Equal(t, NewSample(sample), signal.Sample)
	assert.Equal(t, Dataset{ID: 2, Name: "D2"}, signal.Sample.Dataset)
	assert.Equal(t, Target{ID: 4, Name: "T4"}, signal.Target)

	point := NewUmapPlotPoint(entities.UmapPlotPoint{ID: 1, XCoor: 1, YCoor: 2, Sample: sample})
	body, err := json.Marshal(point)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":1,"x_coor":1,"y_coor":2,"sample":{"id":3,"metadata":{"x":"y"},"dataset":{"id":2,"name":"D2"},"plate_barcode":"","well_id":""}}`,
		string(body))
}

func TestListNeverNil(t *testing.T) {
	t.Parallel()

	out := List([]entities.Target(nil), NewTarget)
	require.NotNil(t, out)
	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestRefForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   uint
		reason string
	}{
		{"number", `1`, 1, ""},
		{"numeric string", `"12"`, 12, ""},
		{"object", `{"id":3,"name":"D1"}`, 3, ""},
		{"object with string id", `{"id":"4"}`, 4, ""},
		{"object without id", `{"name":"D1"}`, 0, "Related object must include an id."},
		{"negative", `-1`, 0, `Invalid pk "-1" - object does not exist.`},
		{"float", `1.5`, 0, "Incorrect type. Expected pk value, received float."},
		{"word", `"abc"`, 0, "Incorrect type. Expected pk value, received str."},
		{"bool", `true`, 0, "Incorrect type. Expected pk value, received bool."},
		{"list", `[1]`, 0, "Incorrect type. Expected pk value, received list."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var r Ref
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.reason != "" {
				var refErr *RefError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, tt.reason, refErr.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.ID)
		})
	}
}

func TestDecodeSampleCreate(t *testing.T) {
	t.Parallel()

	in, err := DecodeSample([]byte(`{"metadata":{},"dataset":1,"plate_barcode":"P1","well_id":"A1"}`), ModeCreate)
	require.NoError(t, err)

	var e entities.Sample
	in.Apply(&e)
	assert.Equal(t, entities.Sample{
		Metadata:     entities.Metadata{},
		DatasetID:    1,
		PlateBarcode: "P1",
		WellID:       "A1",
	}, e)
}

func TestDecodeSampleDefaultsMetadata(t *testing.T) {
	t.Parallel()

	in, err := DecodeSample([]byte(`{"dataset":{"id":2},"plate_barcode":"P1","well_id":"A1","id":77}`), ModeCreate)
	require.NoError(t, err)

	var e entities.Sample
	in.Apply(&e)
	assert.Equal(t, entities.Metadata{}, e.Metadata)
	assert.Equal(t, uint(2), e.DatasetID)
	assert.Zero(t, e.ID, "id in the body is ignored")
}

func TestDecodeValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		decode func() error
		fields map[string]string
	}{
		{
			name: "missing required fields",
			decode: func() error {
				_, err := DecodeSampleSignal([]byte(`{}`), ModeCreate)
				return err
			},
			fields: map[string]string{"signal": msgRequired, "sample": msgRequired, "target": msgRequired},
		},
		{
			name: "signal as string",
			decode: func() error {
				_, err := DecodeSampleSignal([]byte(`{"signal":"high","sample":1,"target":1}`), ModeCreate)
				return err
			},
			fields: map[string]string{"signal": msgNotNumber},
		},
		{
			name: "null and blank",
			decode: func() error {
				_, err := DecodeSample([]byte(`{"metadata":null,"dataset":1,"plate_barcode":" ","well_id":null}`), ModeReplace)
				return err
			},
			fields: map[string]string{"metadata": msgNull, "plate_barcode": msgBlank, "well_id": msgNull},
		},
		{
			name: "metadata not an object",
			decode: func() error {
				_, err := DecodeSample([]byte(`{"metadata":[1],"dataset":1,"plate_barcode":"P","well_id":"W"}`), ModeCreate)
				return err
			},
			fields: map[string]string{"metadata": msgNotObject},
		},
		{
			name: "unknown field",
			decode: func() error {
				_, err := DecodeDataset([]byte(`{"name":"D1","colour":"red"}`), ModeCreate)
				return err
			},
			fields: map[string]string{"colour": msgUnknown},
		},
		{
			name: "name not a string",
			decode: func() error {
				_, err := DecodeTarget([]byte(`{"name":5}`), ModeCreate)
				return err
			},
			fields: map[string]string{"name": msgNotString},
		},
		{
			name: "bad reference shape",
			decode: func() error {
				_, err := DecodeUmapPlotPoint([]byte(`{"x_coor":1,"y_coor":2,"sample":{"name":"S"}}`), ModeCreate)
				return err
			},
			fields: map[string]string{"sample": "Related object must include an id."},
		},
		{
			name: "array body",
			decode: func() error {
				_, err := DecodeDataset([]byte(`[{"name":"D1"}]`), ModeCreate)
				return err
			},
			fields: map[string]string{nonFieldErrors: "Invalid data. Expected a dictionary, but got list."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.decode()
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, tt.fields, errors.Fields(err))
		})
	}
}

func TestDecodeTooLong(t *testing.T) {
	t.Parallel()

	long := make([]byte, MaxCharLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := DecodeDataset([]byte(`{"name":"`+string(long)+`"}`), ModeCreate)
	require.Error(t, err)
	assert.Contains(t, errors.Fields(err)["name"], "no more than 255 characters")
}

func TestDecodeMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := DecodeDataset([]byte(`{"name":`), ModeCreate)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "JSON parse error")
}

func TestPartialDecodeValidatesOnlyPresentFields(t *testing.T) {
	t.Parallel()

	in, err := DecodeUmapPlotPoint([]byte(`{"y_coor":-4.5}`), ModePartial)
	require.NoError(t, err)

	e := entities.UmapPlotPoint{ID: 1, XCoor: 1, YCoor: 2, SampleID: 3}
	in.Apply(&e)
	assert.Equal(t, entities.UmapPlotPoint{ID: 1, XCoor: 1, YCoor: -4.5, SampleID: 3}, e)

	_, err = DecodeUmapPlotPoint([]byte(`{"y_coor":"x"}`), ModePartial)
	assert.Equal(t, map[string]string{"y_coor": msgNotNumber}, errors.Fields(err))

	empty, err := DecodeSample(nil, ModePartial)
	require.NoError(t, err)
	existing := entities.Sample{Metadata: entities.Metadata{"k": "v"}, WellID: "A1"}
	empty.Apply(&existing)
	assert.Equal(t, entities.Metadata{"k": "v"}, existing.Metadata)
}

func TestRefMarshalsBareID(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(Ref{ID: 5})
	require.NoError(t, err)
	assert.Equal(t, "5", string(body))
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := DecodeDataset([]byte("{\"name\":\"\xff\xfe\"}"), ModeCreate)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, map[string]string{nonFieldErrors: msgInvalidUTF8}, errors.Fields(err))
}

func TestReplaceResetsOmittedMetadata(t *testing.T) {
	t.Parallel()

	existing := entities.Sample{ID: 1, Metadata: entities.Metadata{"k": "v"}, DatasetID: 1}

	in, err := DecodeSample([]byte(`{"dataset":1,"plate_barcode":"P2","well_id":"B1"}`), ModeReplace)
	require.NoError(t, err)
	replaced := existing
	in.Apply(&replaced)
	assert.Equal(t, entities.Metadata{}, replaced.Metadata)

	in, err = DecodeSample([]byte(`{"well_id":"B1"}`), ModePartial)
	require.NoError(t, err)
	patched := existing
	in.Apply(&patched)
	assert.Equal(t, entities.Metadata{"k": "v"}, patched.Metadata)
}

func TestDecodeMetadataKeepsLargeIntegers(t *testing.T) {
	t.Parallel()

	in, err := DecodeSample([]byte(`{"metadata":{"big":12345678901234567890},"dataset":1,"plate_barcode":"P","well_id":"W"}`), ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), in.Metadata["big"])
}
