package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageHandlers_HandleDashboard(t *testing.T) {
	h := NewPageHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleDashboard, "/?region=Goa")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Data Preview for Goa")
	assert.Contains(t, body, `download="unemployment_Goa.csv"`)
}

func TestPageHandlers_HandleDashboard_InvalidParamsFallBack(t *testing.T) {
	h := NewPageHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleDashboard, "/?start=garbage")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Data Preview for Assam")
}

func TestPageHandlers_HandleDashboard_Unavailable(t *testing.T) {
	h := NewPageHandlers(missingDashboard(t), testLogger)

	w := serve(h.HandleDashboard, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "missing.csv not found")
}

func TestPageHandlers_HandleDashboard_InvertedRange(t *testing.T) {
	h := NewPageHandlers(createTestDashboard(t), testLogger)

	w := serve(h.HandleDashboard, "/?region=Bihar&start=2020-03-01&end=2020-01-01")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Start date is after end date.")
	assert.Contains(t, body, "Data Preview for Bihar")
}
