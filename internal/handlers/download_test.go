package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/export"
)

func TestDownloadHandlers_HandleCSV(t *testing.T) {
	h := NewDownloadHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleCSV, "/download/csv?region=Bihar&end=2020-02-29")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeCSV, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=unemployment_Bihar.csv`, w.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "region", rows[0][0])
	assert.Equal(t, "Bihar", rows[1][0])
	assert.Equal(t, "2020-01-31", rows[1][1])
	assert.Equal(t, "2020-02-29", rows[2][1])
}

func TestDownloadHandlers_HandleCSV_QuotedFileName(t *testing.T) {
	h := NewDownloadHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleCSV, "/download/csv?region=Jammu%20%26%20Kashmir")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="unemployment_Jammu & Kashmir.csv"`, w.Header().Get("Content-Disposition"))
}

func TestDownloadHandlers_HandleXLSX(t *testing.T) {
	h := NewDownloadHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleXLSX, "/download/xlsx?region=Assam")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "unemployment_Assam.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.DefaultSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Assam", rows[1][0])
}

func TestDownloadHandlers_Unavailable(t *testing.T) {
	h := NewDownloadHandlers(missingDashboard(t), testLogger)

	w := serve(h.HandleCSV, "/download/csv")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}
