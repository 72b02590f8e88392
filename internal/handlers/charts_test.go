package handlers

import (
	"bytes"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, body []byte) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestChartHandlers_HandleTrend(t *testing.T) {
	h := NewChartHandlers(createTestDashboard(t), testLogger)

	for _, column := range []string{"", "labour_participation_rate", "estimated_employed"} {
		t.Run("column="+column, func(t *testing.T) {
			w := serve(h.HandleTrend, "/charts/trend.png?region=Bihar&column="+column)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			assertPNG(t, w.Body.Bytes())
		})
	}
}

func TestChartHandlers_HandleTrend_Errors(t *testing.T) {
	h := NewChartHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleTrend, "/charts/trend.png?region=Bihar&column=area")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Fields["column"], "unemployment_rate")

	w = serve(h.HandleTrend, "/charts/trend.png?region=Goa&start=2020-03-01")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EMPTY_VIEW", decode(t, w).Error.Code)
}

func TestChartHandlers_HandleCompare(t *testing.T) {
	h := NewChartHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleCompare, "/charts/compare.png?region=Bihar&compare=Assam&compare=Goa")
	require.Equal(t, http.StatusOK, w.Code)
	assertPNG(t, w.Body.Bytes())
}

func TestChartHandlers_HandleCompare_Empty(t *testing.T) {
	h := NewChartHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleCompare, "/charts/compare.png?region=Goa&start=2020-03-01")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EMPTY_VIEW", decode(t, w).Error.Code)
}
