package middleware

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-slim.dev/lattice"
)

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	nm := MetricsWithConfig(MetricsConfig{Registry: registry})

	for n := 0; n < 3; n++ {
		res, err := runMiddleware(t, nm, newState(t, http.MethodGet, "/"), okHandler)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, mf := range families {
		switch mf.GetName() {
		case "lattice_requests_total":
			for _, m := range mf.GetMetric() {
				byName[mf.GetName()] += m.GetCounter().GetValue()
			}
		case "lattice_request_duration_seconds":
			for _, m := range mf.GetMetric() {
				byName[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.Equal(t, 3.0, byName["lattice_requests_total"])
	assert.Equal(t, 3.0, byName["lattice_request_duration_seconds"])
}

func TestMetricsLabelsStatusAndError(t *testing.T) {
	registry := prometheus.NewRegistry()
	nm := MetricsWithConfig(MetricsConfig{Registry: registry})

	_, err := runMiddleware(t, nm, newState(t, http.MethodPost, "/"), func(s *lattice.State) (*lattice.Response, error) {
		return nil, assert.AnError
	})
	require.Error(t, err)

	families, gerr := registry.Gather()
	require.NoError(t, gerr)

	found := false
	for _, mf := range families {
		if mf.GetName() != "lattice_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["method"] == http.MethodPost && labels["status"] == "error" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected an error-status sample for POST")
}
