package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

const testCSV = `Region,Date,Frequency,Unemployment Rate,Estimated Employed,Labour Participation Rate,Area
Bihar, 31-01-2020, Monthly, 10.6, 1000, 40.0, Rural
Bihar, 29-02-2020, Monthly, 10.2, 1100, 42.0, Rural
Bihar, 31-03-2020, Monthly, 15.4, 900, 38.0, Rural
Assam, 31-01-2020, Monthly, 4.7, 500, 45.0, Rural
Assam, 29-02-2020, Monthly, 4.5, 520, 44.0, Rural
Goa, 31-01-2020, Monthly, 8.0, 100, 35.0, Urban
`

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func createTestDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unemployment.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return services.NewDashboard(nil, path, services.WithLogger(testLogger))
}

func missingDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	return services.NewDashboard(nil, filepath.Join(t.TempDir(), "missing.csv"), services.WithLogger(testLogger))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestAPIHandlers_HandleRegions(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleRegions, "/api/regions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cacheControl, w.Header().Get("Cache-Control"))

	env := decode(t, w)
	require.True(t, env.Success)
	var data struct {
		Regions []string `json:"regions"`
		MinDate string   `json:"min_date"`
		MaxDate string   `json:"max_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"Assam", "Bihar", "Goa"}, data.Regions)
	assert.Equal(t, "2020-01-31T00:00:00Z", data.MinDate)
	assert.Equal(t, "2020-03-31T00:00:00Z", data.MaxDate)
}

func TestAPIHandlers_HandleRegions_Unavailable(t *testing.T) {
	h := NewAPIHandlers(missingDashboard(t), testLogger)

	w := serve(h.HandleRegions, "/api/regions")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "DATA_UNAVAILABLE", env.Error.Code)
}

func TestAPIHandlers_HandleView(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleView, "/api/view?region=Bihar&start=2020-02-01")
	require.Equal(t, http.StatusOK, w.Code)

	var vm struct {
		Status   string `json:"status"`
		RowCount int    `json:"row_count"`
		Summary  struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"summary"`
		DownloadName string `json:"download_name"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &vm))
	assert.Equal(t, "ready", vm.Status)
	assert.Equal(t, 2, vm.RowCount)
	assert.Equal(t, 10.2, vm.Summary.Min)
	assert.Equal(t, 15.4, vm.Summary.Max)
	assert.Equal(t, "unemployment_Bihar.csv", vm.DownloadName)
}

func TestAPIHandlers_HandleView_Unavailable(t *testing.T) {
	h := NewAPIHandlers(missingDashboard(t), testLogger)

	w := serve(h.HandleView, "/api/view")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w)
	assert.Equal(t, "DATA_UNAVAILABLE", env.Error.Code)
	assert.Contains(t, env.Error.Message, "not found")
}

func TestAPIHandlers_InvalidParams(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"bad start", "?start=31-01-2020", "start"},
		{"bad end", "?end=yesterday", "end"},
		{"end before start", "?start=2020-03-01&end=2020-01-01", "end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h.HandleView, "/api/view"+tt.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.Contains(t, env.Error.Fields, tt.field)
		})
	}
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleSummary, "/api/summary?region=Assam")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Summary struct {
			Mean   float64 `json:"mean"`
			Min    float64 `json:"min"`
			Max    float64 `json:"max"`
			Median float64 `json:"median"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.InDelta(t, 4.6, data.Summary.Mean, 1e-9)
	assert.Equal(t, 4.5, data.Summary.Min)
	assert.Equal(t, 4.7, data.Summary.Max)
	assert.InDelta(t, 4.6, data.Summary.Median, 1e-9)
}

func TestAPIHandlers_HandleSummary_Errors(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleSummary, "/api/summary?region=Goa&start=2020-02-01")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EMPTY_VIEW", decode(t, w).Error.Code)

	w = serve(h.HandleSummary, "/api/summary?region=Goa&column=Poverty%20Rate")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MISSING_COLUMN", decode(t, w).Error.Code)
}

func TestAPIHandlers_HandleCompare(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleCompare, "/api/compare?region=Assam&compare=Bihar,Goa,Atlantis")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Notices []string `json:"notices"`
		Ranking []struct {
			Key   string  `json:"key"`
			Mean  float64 `json:"mean"`
			Count int     `json:"count"`
		} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Len(t, data.Ranking, 3)
	assert.Equal(t, "Bihar", data.Ranking[0].Key)
	assert.Equal(t, 3, data.Ranking[0].Count)
	assert.Equal(t, "Goa", data.Ranking[1].Key)
	assert.Equal(t, "Assam", data.Ranking[2].Key)
	require.Len(t, data.Notices, 1)
	assert.Contains(t, data.Notices[0], "Atlantis")
}

func TestAPIHandlers_HandleCompare_RequiresRegions(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleCompare, "/api/compare?region=Assam")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Fields, "compare")
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	tests := []struct {
		name      string
		dashboard func(*testing.T) *services.Dashboard
		data      string
	}{
		{"ready", createTestDashboard, "ready"},
		{"degraded", missingDashboard, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAPIHandlers(tt.dashboard(t), testLogger)

			w := serve(h.HandleHealth, "/health")
			require.Equal(t, http.StatusOK, w.Code)

			var data map[string]string
			require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
			assert.Equal(t, "healthy", data["status"])
			assert.Equal(t, tt.data, data["data"])
			assert.Equal(t, Version, data["version"])
			assert.NotEmpty(t, data["timestamp"])
		})
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	h := NewAPIHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleStats, "/admin/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "ready", data["status"])
	assert.EqualValues(t, 6, data["record_count"])
	assert.EqualValues(t, 3, data["regions"])
}

func TestAPIHandlers_HandleReload(t *testing.T) {
	dashboard := createTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger)

	require.NoError(t, os.WriteFile(dashboard.Source(), []byte(testCSV+"Goa, 29-02-2020, Monthly, 7.0, 110, 36.0, Urban\n"), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	w := httptest.NewRecorder()
	h.HandleReload(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.EqualValues(t, 7, data["record_count"])
}
