package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/logger"
)

// newTestServer mounts a controller over ds under /api.
func newTestServer(t *testing.T, ds datastore.Interface) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		WriteError(c, err, logger.Discard())
	}
	New(ds, WithLogger(logger.Discard())).Register(e.Group("/api"))
	return e
}

// openSQLite opens a migrated store in a temporary directory.
func openSQLite(t *testing.T) datastore.Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "api.db")

	store, err := datastore.New(settings, datastore.WithLogger(logger.Discard()))
	require.NoError(t, err)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// do sends body (marshalled unless already a string) and returns the recorder.
func do(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// mockStore is a testify mock of datastore.Interface.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Open() error                       { return m.Called().Error(0) }
func (m *mockStore) Close() error                      { return m.Called().Error(0) }
func (m *mockStore) Ping(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *mockStore) Migrate(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockStore) Backend() string                   { return "mock" }

func (m *mockStore) Datasets() datastore.Repository[entities.Dataset] {
	return m.Called().Get(0).(datastore.Repository[entities.Dataset])
}

func (m *mockStore) Samples() datastore.Repository[entities.Sample] {
	return &mockRepository[entities.Sample]{}
}

func (m *mockStore) Targets() datastore.Repository[entities.Target] {
	return &mockRepository[entities.Target]{}
}

func (m *mockStore) SampleSignals() datastore.Repository[entities.SampleSignal] {
	return &mockRepository[entities.SampleSignal]{}
}

func (m *mockStore) UmapPlotPoints() datastore.Repository[entities.UmapPlotPoint] {
	return &mockRepository[entities.UmapPlotPoint]{}
}

// mockRepository is a testify mock of datastore.Repository.
type mockRepository[T entities.Record] struct {
	mock.Mock
}

func (m *mockRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*T)
	return record, args.Error(1)
}

func (m *mockRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]T)
	return records, args.Error(1)
}

func (m *mockRepository[T]) Insert(ctx context.Context, record *T) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockRepository[T]) Update(ctx context.Context, record *T) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockRepository[T]) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}
