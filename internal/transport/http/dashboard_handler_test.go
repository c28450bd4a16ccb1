package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "bikedash/internal/errors"
	"bikedash/internal/exporter"
	api "bikedash/pkg/contracts/api/v1"
	"bikedash/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Snapshot(ctx context.Context) *api.SnapshotResponse {
	return m.Called().Get(0).(*api.SnapshotResponse)
}

func (m *MockDashboardService) LoadDataset(ctx context.Context, name string, r io.Reader) (*api.SnapshotResponse, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(name, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.SnapshotResponse), args.Error(1)
}

func (m *MockDashboardService) Filters(ctx context.Context) (*api.FiltersResponse, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.FiltersResponse), args.Error(1)
}

func (m *MockDashboardService) ApplySelection(ctx context.Context, sel domain.FilterSelection) (*api.ChartsResponse, error) {
	args := m.Called(sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ChartsResponse), args.Error(1)
}

func (m *MockDashboardService) Preview(ctx context.Context, sel domain.FilterSelection) (*api.ChartsResponse, error) {
	args := m.Called(sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ChartsResponse), args.Error(1)
}

func (m *MockDashboardService) Charts(ctx context.Context) (*api.ChartsResponse, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ChartsResponse), args.Error(1)
}

func (m *MockDashboardService) Export(ctx context.Context, format exporter.Format, w io.Writer) error {
	args := m.Called(format)
	if payload, ok := args.Get(0).(string); ok {
		io.WriteString(w, payload)
	}
	return args.Error(1)
}

const testCSV = "datetime,season,weather,workingday,count\n2011-01-01 00:00:00,1,1,0,16\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(service DashboardService, maxUpload int64) chi.Router {
	logger := testLogger()
	h := NewDashboardHandler(service, maxUpload, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func loadedSnapshot() *api.SnapshotResponse {
	return &api.SnapshotResponse{
		State: api.StateLoaded,
		Dataset: &domain.DatasetInfo{
			ID:          "ds-1",
			Name:        "train.csv",
			LoadedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			RecordCount: 1,
		},
	}
}

func decodeProblem(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Bytes(), &problem))
	return problem
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDashboardHandler_GetSnapshot(t *testing.T) {
	service := new(MockDashboardService)
	service.On("Snapshot").Return(&api.SnapshotResponse{State: api.StateNoData})

	w := httptest.NewRecorder()
	newTestRouter(service, 1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"no_data"}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestDashboardHandler_UploadDataset(t *testing.T) {
	tests := []struct {
		name         string
		build        func(t *testing.T) *http.Request
		setupMock    func(*MockDashboardService)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "multipart upload",
			build: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, "file", "train.csv", testCSV)
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			setupMock: func(m *MockDashboardService) {
				m.On("LoadDataset", "train.csv", testCSV).Return(loadedSnapshot(), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "raw csv body with name",
			build: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/dataset?name=day.csv", strings.NewReader(testCSV))
				req.Header.Set("Content-Type", "text/csv; charset=utf-8")
				return req
			},
			setupMock: func(m *MockDashboardService) {
				m.On("LoadDataset", "day.csv", testCSV).Return(loadedSnapshot(), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "raw csv body without name",
			build: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(testCSV))
				req.Header.Set("Content-Type", "text/csv")
				return req
			},
			setupMock: func(m *MockDashboardService) {
				m.On("LoadDataset", defaultUploadName, testCSV).Return(loadedSnapshot(), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "wrong extension",
			build: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, "file", "train.json", testCSV)
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  apierrors.CodeValidationFailed,
		},
		{
			name: "missing file field",
			build: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, "upload", "train.csv", testCSV)
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  apierrors.CodeValidationFailed,
		},
		{
			name: "unsupported media type",
			build: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			expectedCode: http.StatusUnsupportedMediaType,
			expectedErr:  apierrors.CodeUnsupportedMedia,
		},
		{
			name: "missing content type",
			build: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(testCSV))
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  apierrors.CodeValidationFailed,
		},
		{
			name: "format error",
			build: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader("a,b\n1,2\n"))
				req.Header.Set("Content-Type", "text/csv")
				return req
			},
			setupMock: func(m *MockDashboardService) {
				m.On("LoadDataset", defaultUploadName, "a,b\n1,2\n").
					Return(nil, apierrors.NewMissingColumnsError([]string{"datetime"}))
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  apierrors.CodeFormatInvalid,
		},
		{
			name: "parse error",
			build: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(testCSV))
				req.Header.Set("Content-Type", "text/csv")
				return req
			},
			setupMock: func(m *MockDashboardService) {
				m.On("LoadDataset", defaultUploadName, testCSV).
					Return(nil, apierrors.NewParseError(2, "datetime", "yesterday", errors.New("bad time")))
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  apierrors.CodeParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockDashboardService)
			if tt.setupMock != nil {
				tt.setupMock(service)
			}

			w := httptest.NewRecorder()
			newTestRouter(service, 1<<20).ServeHTTP(w, tt.build(t))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				problem := decodeProblem(t, w.Body)
				assert.Equal(t, tt.expectedErr, problem["error_code"])
				assert.Equal(t, float64(tt.expectedCode), problem["status"])
			} else {
				assert.Contains(t, w.Body.String(), `"state":"loaded"`)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_UploadTooLarge(t *testing.T) {
	service := new(MockDashboardService)
	body, ct := multipartBody(t, "file", "train.csv", strings.Repeat(testCSV, 100))
	req := httptest.NewRequest(http.MethodPost, "/api/dataset", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	newTestRouter(service, 256).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	problem := decodeProblem(t, w.Body)
	assert.Equal(t, apierrors.CodePayloadTooLarge, problem["error_code"])
	service.AssertNotCalled(t, "LoadDataset", mock.Anything, mock.Anything)
}

func TestDashboardHandler_Filters(t *testing.T) {
	t.Run("no dataset", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Filters").Return(nil, apierrors.ErrNoDataset)

		w := httptest.NewRecorder()
		newTestRouter(service, 1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/filters/", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apierrors.CodeNoDataset, decodeProblem(t, w.Body)["error_code"])
	})

	t.Run("options and selection", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Filters").Return(&api.FiltersResponse{
			Options: domain.FilterOptions{
				Years:       []int{2011, 2012},
				Seasons:     []int{1, 2, 3, 4},
				WorkingDays: []domain.WorkingDaySelector{domain.WorkingDayAll, domain.WorkingDayOff, domain.WorkingDayOn},
			},
			Selection: domain.FilterSelection{Years: []int{2011, 2012}, Seasons: []int{1, 2, 3, 4}, WorkingDay: domain.WorkingDayAll},
		}, nil)

		w := httptest.NewRecorder()
		newTestRouter(service, 1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/filters/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got api.FiltersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, []int{2011, 2012}, got.Options.Years)
		assert.Equal(t, domain.WorkingDayAll, got.Selection.WorkingDay)
	})
}

func TestDashboardHandler_UpdateFilters(t *testing.T) {
	tests := []struct {
		name         string
		contentType  string
		body         string
		setupMock    func(*MockDashboardService)
		expectedCode int
		expectedErr  string
	}{
		{
			name:        "valid selection",
			contentType: "application/json",
			body:        `{"years":[2012],"seasons":[1,2],"workingday":"1"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("ApplySelection", domain.FilterSelection{
					Years: []int{2012}, Seasons: []int{1, 2}, WorkingDay: domain.WorkingDayOn,
				}).Return(&api.ChartsResponse{DatasetID: "ds-1"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:        "empty sets are a selection",
			contentType: "application/json",
			body:        `{"years":[],"seasons":[],"workingday":"All"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("ApplySelection", domain.FilterSelection{
					Years: []int{}, Seasons: []int{}, WorkingDay: domain.WorkingDayAll,
				}).Return(&api.ChartsResponse{DatasetID: "ds-1"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid workingday",
			contentType:  "application/json",
			body:         `{"years":[2012],"seasons":[1],"workingday":"2"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  apierrors.CodeValidationFailed,
		},
		{
			name:         "missing years",
			contentType:  "application/json",
			body:         `{"seasons":[1],"workingday":"All"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  apierrors.CodeValidationFailed,
		},
		{
			name:         "wrong content type",
			contentType:  "text/plain",
			body:         `{"years":[2012],"seasons":[1],"workingday":"All"}`,
			expectedCode: http.StatusUnsupportedMediaType,
			expectedErr:  apierrors.CodeUnsupportedMedia,
		},
		{
			name:        "no dataset",
			contentType: "application/json",
			body:        `{"years":[2012],"seasons":[1],"workingday":"All"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("ApplySelection", mock.Anything).Return(nil, apierrors.ErrNoDataset)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  apierrors.CodeNoDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockDashboardService)
			if tt.setupMock != nil {
				tt.setupMock(service)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/filters/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			newTestRouter(service, 1<<20).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, decodeProblem(t, w.Body)["error_code"])
			}
			service.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_Charts(t *testing.T) {
	service := new(MockDashboardService)
	service.On("Charts").Return(&api.ChartsResponse{
		DatasetID: "ds-1",
		ChartResults: domain.ChartResults{
			RecordCount: 3,
			Charts: []domain.Chart{{
				ID:     "by_hour",
				Title:  "Average rentals by hour",
				Kind:   domain.ChartKindLine,
				Points: []domain.ChartPoint{{Key: "0", Label: "0", Value: 16, Count: 1}},
			}},
		},
	}, nil)
	service.On("Preview", domain.FilterSelection{Years: []int{2011}, Seasons: []int{1}, WorkingDay: domain.WorkingDayOff}).
		Return(&api.ChartsResponse{DatasetID: "ds-1"}, nil)

	router := newTestRouter(service, 1<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got api.ChartsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3, got.RecordCount)
	require.Len(t, got.Charts, 1)
	assert.Equal(t, "by_hour", got.Charts[0].ID)

	req := httptest.NewRequest(http.MethodPost, "/api/charts/preview",
		strings.NewReader(`{"years":[2011],"seasons":[1],"workingday":"0"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	service.AssertExpectations(t)
}

func TestDashboardHandler_Export(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		setupMock    func(*MockDashboardService)
		expectedCode int
		expectedType string
		expectedExt  string
		expectedErr  string
	}{
		{
			name: "csv",
			path: "/api/export/csv",
			setupMock: func(m *MockDashboardService) {
				m.On("Export", exporter.FormatCSV).Return("chart,key\n", nil)
			},
			expectedCode: http.StatusOK,
			expectedType: exporter.FormatCSV.ContentType(),
			expectedExt:  ".csv",
		},
		{
			name: "xlsx upper case",
			path: "/api/export/XLSX",
			setupMock: func(m *MockDashboardService) {
				m.On("Export", exporter.FormatXLSX).Return("PK", nil)
			},
			expectedCode: http.StatusOK,
			expectedType: exporter.FormatXLSX.ContentType(),
			expectedExt:  ".xlsx",
		},
		{
			name:         "unsupported format",
			path:         "/api/export/pdf",
			expectedCode: http.StatusBadRequest,
			expectedErr:  apierrors.CodeUnsupported,
		},
		{
			name: "no dataset",
			path: "/api/export/csv",
			setupMock: func(m *MockDashboardService) {
				m.On("Export", exporter.FormatCSV).Return(nil, fmt.Errorf("export: %w", apierrors.ErrNoDataset))
			},
			expectedCode: http.StatusConflict,
			expectedErr:  apierrors.CodeNoDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockDashboardService)
			if tt.setupMock != nil {
				tt.setupMock(service)
			}

			w := httptest.NewRecorder()
			newTestRouter(service, 1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, decodeProblem(t, w.Body)["error_code"])
				assert.Empty(t, w.Header().Get("Content-Disposition"))
			} else {
				assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
				disposition := w.Header().Get("Content-Disposition")
				assert.True(t, strings.HasPrefix(disposition, "attachment; filename="))
				assert.Contains(t, disposition, tt.expectedExt)
				assert.Equal(t, fmt.Sprint(w.Body.Len()), w.Header().Get("Content-Length"))
			}
			service.AssertExpectations(t)
		})
	}
}
