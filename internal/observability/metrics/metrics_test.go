package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIntakeMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveTranscription("openai", true)
	m.ObserveTranscription("openai", true)
	m.ObserveAnalysis("FACILITY", "EMERGENCY")
	m.ObserveConfirmation("RETRY")
	m.ObserveComplaint("FACILITY", "EMERGENCY", "ON_SITE_VISIT")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transcriptionsTotal.WithLabelValues("openai", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("FACILITY", "EMERGENCY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirmationsTotal.WithLabelValues("RETRY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.complaintsTotal.WithLabelValues("FACILITY", "EMERGENCY", "ON_SITE_VISIT")))
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("POST", "/api/v1/conversations/start", "200", 0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/v1/conversations/start", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetricsNilSafe(t *testing.T) {
	var im *IntakeMetrics
	im.ObserveTranscription("stub", false)
	im.ObserveAnalysis("OTHER", "NORMAL")
	im.ObserveConfirmation("SAVE_AND_NOTIFY")
	im.ObserveComplaint("OTHER", "NORMAL", "INFO_GUIDE")

	var hm *HTTPMetrics
	hm.ObserveRequest("GET", "/", "200", 0.1)
}
