package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodPost, "/scan", http.StatusOK, 120*time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, "/scan", http.StatusOK, 80*time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, "/scan", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues(http.MethodPost, "/scan", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues(http.MethodPost, "/scan", "400")))
}

func TestCollector_ObserveClassifier(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveClassifier("ok", time.Second)
	c.ObserveClassifier("unavailable", time.Second)
	c.ObserveClassifier("ok", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.classifierAttempts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.classifierAttempts.WithLabelValues("unavailable")))
}

func TestCollector_RecordScan(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordScan("genuine")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.scansRecorded.WithLabelValues("genuine")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := NewRegistry()
	c := NewCollector(reg)
	c.RecordScan("counterfeit")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "currencyguard_scans_recorded_total")
	assert.Contains(t, string(body), "go_goroutines")
}
