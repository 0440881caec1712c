package resources

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/errors"
)

type object = map[string]any

func TestDatasetThenSample(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	rec := do(t, e, http.MethodPost, "/api/dataset/", `{"name":"D1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, `{"id":1,"name":"D1"}`, strings.TrimSpace(rec.Body.String()))

	rec = do(t, e, http.MethodPost, "/api/sample/",
		`{"metadata":{},"dataset":1,"plate_barcode":"P1","well_id":"A1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t,
		`{"id":1,"metadata":{},"dataset":{"id":1,"name":"D1"},"plate_barcode":"P1","well_id":"A1"}`,
		strings.TrimSpace(rec.Body.String()))
}

func TestCreateRetrieveRoundTrip(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	tests := []struct {
		resource string
		body     object
		want     object
	}{
		{"dataset", object{"name": "D1"}, object{"id": 1.0, "name": "D1"}},
		{"target", object{"name": "EGFR"}, object{"id": 1.0, "name": "EGFR"}},
		{
			"sample",
			object{"metadata": object{"cells": 40.0}, "dataset": object{"id": 1}, "plate_barcode": "P1", "well_id": "B2"},
			object{"id": 1.0, "metadata": object{"cells": 40.0}, "dataset": object{"id": 1.0, "name": "D1"}, "plate_barcode": "P1", "well_id": "B2"},
		},
		{
			"umapplotpoint",
			object{"x_coor": 0.5, "y_coor": -1.25, "sample": 1},
			object{"id": 1.0, "x_coor": 0.5, "y_coor": -1.25, "sample": object{
				"id": 1.0, "metadata": object{"cells": 40.0}, "dataset": object{"id": 1.0, "name": "D1"}, "plate_barcode": "P1", "well_id": "B2",
			}},
		},
	}

	// Order matters: later resources reference earlier ones.
	for _, tt := range tests {
		rec := do(t, e, http.MethodPost, "/api/"+tt.resource+"/", tt.body)
		require.Equal(t, http.StatusCreated, rec.Code, "%s: %s", tt.resource, rec.Body.String())
		created := decodeJSON[object](t, rec)
		assert.Equal(t, tt.want, created, tt.resource)

		rec = do(t, e, http.MethodGet, "/api/"+tt.resource+"/1/", nil)
		require.Equal(t, http.StatusOK, rec.Code, tt.resource)
		assert.Equal(t, created, decodeJSON[object](t, rec), tt.resource)
	}
}

func TestEmbeddedObjectsMatchRetrieved(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/dataset/", object{"name": "D1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/target/", object{"name": "T1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/sample/",
		object{"metadata": object{"k": "v"}, "dataset": 1, "plate_barcode": "P1", "well_id": "A1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/samplesignal/",
		object{"signal": 3.5, "sample": 1, "target": 1}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/umapplotpoint/",
		object{"x_coor": 1, "y_coor": 2, "sample": 1}).Code)

	get := func(path string) object {
		rec := do(t, e, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		return decodeJSON[object](t, rec)
	}

	sample := get("/api/sample/1/")
	signal := get("/api/samplesignal/1/")
	point := get("/api/umapplotpoint/1/")

	assert.Equal(t, get("/api/dataset/1/"), sample["dataset"])
	assert.Equal(t, sample, signal["sample"])
	assert.Equal(t, get("/api/target/1/"), signal["target"])
	assert.Equal(t, sample, point["sample"])
	assert.Equal(t, 3.5, signal["signal"])
}

func TestDeleteThenRetrieve(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/target/", object{"name": "T1"}).Code)

	rec := do(t, e, http.MethodDelete, "/api/target/1/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/target/1/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotEmpty(t, resp.CorrelationID)

	rec = do(t, e, http.MethodDelete, "/api/target/1/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnresolvedReferenceWritesNothing(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	rec := do(t, e, http.MethodPost, "/api/sample/",
		object{"metadata": object{}, "dataset": 999, "plate_barcode": "P1", "well_id": "A1"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, map[string]string{"dataset": `Invalid pk "999" - object does not exist.`}, resp.Fields)

	rec = do(t, e, http.MethodPost, "/api/samplesignal/", object{"signal": 1, "sample": 5, "target": 6})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeJSON[ErrorResponse](t, rec).Fields
	assert.Contains(t, fields, "sample")
	assert.Contains(t, fields, "target")

	for _, resource := range []string{"sample", "samplesignal"} {
		rec = do(t, e, http.MethodGet, "/api/"+resource+"/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), resource)
	}
}

func TestListAfterCreates(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	const n = 5
	for i := range n {
		rec := do(t, e, http.MethodPost, "/api/dataset/", object{"name": "D" + string(rune('A'+i))})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, e, http.MethodGet, "/api/dataset/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]object](t, rec)
	require.Len(t, list, n)
	for i, item := range list {
		assert.InDelta(t, float64(i+1), item["id"], 0)
	}
}

func TestUpdates(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/dataset/", object{"name": "D1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/dataset/", object{"name": "D2"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/sample/",
		object{"metadata": object{"k": 1}, "dataset": 1, "plate_barcode": "P1", "well_id": "A1"}).Code)

	t.Run("partial", func(t *testing.T) {
		rec := do(t, e, http.MethodPatch, "/api/sample/1/", object{"well_id": "H12"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeJSON[object](t, rec)
		assert.Equal(t, "H12", got["well_id"])
		assert.Equal(t, "P1", got["plate_barcode"])
		assert.Equal(t, object{"k": 1.0}, got["metadata"])
	})

	t.Run("full replace moves the reference", func(t *testing.T) {
		rec := do(t, e, http.MethodPut, "/api/sample/1/",
			object{"metadata": object{}, "dataset": object{"id": 2}, "plate_barcode": "P9", "well_id": "C3"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeJSON[object](t, rec)
		assert.Equal(t, object{"id": 2.0, "name": "D2"}, got["dataset"])
		assert.Equal(t, object{}, got["metadata"])
	})

	t.Run("full replace requires fields", func(t *testing.T) {
		rec := do(t, e, http.MethodPut, "/api/sample/1/", object{"well_id": "C3"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		fields := decodeJSON[ErrorResponse](t, rec).Fields
		assert.Contains(t, fields, "dataset")
		assert.Contains(t, fields, "plate_barcode")
	})

	t.Run("bad reference leaves the row unchanged", func(t *testing.T) {
		rec := do(t, e, http.MethodPatch, "/api/sample/1/", object{"dataset": 42})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		got := decodeJSON[object](t, do(t, e, http.MethodGet, "/api/sample/1/", nil))
		assert.Equal(t, object{"id": 2.0, "name": "D2"}, got["dataset"])
	})

	t.Run("missing record", func(t *testing.T) {
		rec := do(t, e, http.MethodPut, "/api/dataset/77/", object{"name": "X"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteReferencedRecord(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/dataset/", object{"name": "D1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/sample/",
		object{"dataset": 1, "plate_barcode": "P1", "well_id": "A1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/target/", object{"name": "T1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/samplesignal/",
		object{"signal": 0.5, "sample": 1, "target": 1}).Code)

	for _, path := range []string{"/api/dataset/1/", "/api/sample/1/", "/api/target/1/"} {
		rec := do(t, e, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, decodeJSON[ErrorResponse](t, rec).Fields, "id", path)
		assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, path, nil).Code, path)
	}
}

func TestRequestErrors(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"non numeric id", http.MethodGet, "/api/dataset/abc/", nil, http.StatusNotFound},
		{"zero id", http.MethodGet, "/api/dataset/0/", nil, http.StatusNotFound},
		{"unknown resource", http.MethodGet, "/api/plate/", nil, http.StatusNotFound},
		{"method not allowed", http.MethodPost, "/api/dataset/1/", object{"name": "x"}, http.StatusMethodNotAllowed},
		{"malformed json", http.MethodPost, "/api/dataset/", `{"name":`, http.StatusBadRequest},
		{"list body", http.MethodPost, "/api/target/", `[]`, http.StatusBadRequest},
		{"blank name", http.MethodPost, "/api/target/", object{"name": ""}, http.StatusBadRequest},
		{"string signal", http.MethodPost, "/api/samplesignal/", object{"signal": "x", "sample": 1, "target": 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeJSON[ErrorResponse](t, rec).Code)
		})
	}
}

func TestRootListsResources(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	rec := do(t, e, http.MethodGet, "/api/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{
		"dataset":       "http://example.com/api/dataset/",
		"sample":        "http://example.com/api/sample/",
		"samplesignal":  "http://example.com/api/samplesignal/",
		"target":        "http://example.com/api/target/",
		"umapplotpoint": "http://example.com/api/umapplotpoint/",
	}, decodeJSON[map[string]string](t, rec))
}

func TestRouteTable(t *testing.T) {
	t.Parallel()
	c := New(openSQLite(t))

	names := c.Resources()
	assert.Equal(t, []string{"dataset", "sample", "samplesignal", "target", "umapplotpoint"}, names)

	names[0] = "changed"
	assert.Equal(t, ResourceDataset, c.Resources()[0], "callers cannot modify the table")

	h, ok := c.Handlers(ResourceSampleSignal)
	require.True(t, ok)
	assert.NotNil(t, h.PartialUpdate)

	_, ok = c.Handlers("plate")
	assert.False(t, ok)
}

func TestStorageFailureIsServerError(t *testing.T) {
	t.Parallel()

	repo := &mockRepository[entities.Dataset]{}
	repo.On("FindAll", mock.Anything).Return(nil,
		errors.New(errors.NewStd("SELECT * FROM datasets: disk I/O error")).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build())
	store := &mockStore{}
	store.On("Datasets").Return(repo)

	e := newTestServer(t, store)
	rec := do(t, e, http.MethodGet, "/api/dataset/", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, rec.Body.String(), "SELECT")
	repo.AssertExpectations(t)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errors.ValidationError("bad"), http.StatusBadRequest},
		{"not found", errors.NotFound("dataset", 1), http.StatusNotFound},
		{"timeout", errors.Newf("slow").Category(errors.CategoryTimeout).Build(), http.StatusGatewayTimeout},
		{"database", errors.Newf("boom").Category(errors.CategoryDatabase).Build(), http.StatusInternalServerError},
		{"plain", errors.NewStd("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.name)
	}
}

func TestMetadataRoundTripKeepsLargeIntegers(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/dataset/", `{"name":"D1"}`).Code)
	rec := do(t, e, http.MethodPost, "/api/sample/",
		`{"metadata":{"big":12345678901234567890},"dataset":1,"plate_barcode":"P1","well_id":"A1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"big":12345678901234567890`)

	rec = do(t, e, http.MethodGet, "/api/sample/1/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"big":12345678901234567890`)
}

func TestReplaceWithoutMetadataClearsIt(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/dataset/", `{"name":"D1"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/sample/",
		`{"metadata":{"k":"v"},"dataset":1,"plate_barcode":"P1","well_id":"A1"}`).Code)

	rec := do(t, e, http.MethodPut, "/api/sample/1/", `{"dataset":1,"plate_barcode":"P1","well_id":"A2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"metadata":{}`)

	rec = do(t, e, http.MethodGet, "/api/sample/1/", nil)
	assert.Contains(t, rec.Body.String(), `"metadata":{}`)
}

func TestInvalidUTF8IsRejected(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, openSQLite(t))

	rec := do(t, e, http.MethodPost, "/api/dataset/", "{\"name\":\"\xff\xfe\"}")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeJSON[ErrorResponse](t, rec).Fields, "non_field_errors")
	assert.Equal(t, "[]", strings.TrimSpace(do(t, e, http.MethodGet, "/api/dataset/", nil).Body.String()))
}
