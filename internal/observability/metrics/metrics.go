package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters for the complaint intake pipeline.
type IntakeMetrics struct {
	transcriptionsTotal *prometheus.CounterVec
	analysesTotal       *prometheus.CounterVec
	confirmationsTotal  *prometheus.CounterVec
	complaintsTotal     *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		transcriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicedesk",
			Subsystem: "intake",
			Name:      "transcriptions_total",
			Help:      "Audio uploads transcribed, by provider that answered",
		}, []string{"provider", "fallback"}),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicedesk",
			Subsystem: "intake",
			Name:      "analyses_total",
			Help:      "Transcripts classified",
		}, []string{"category", "severity"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicedesk",
			Subsystem: "intake",
			Name:      "confirmations_total",
			Help:      "User confirmations by resulting next step",
		}, []string{"next_step"}),
		complaintsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicedesk",
			Subsystem: "intake",
			Name:      "complaints_total",
			Help:      "Complaints persisted",
		}, []string{"category", "severity", "handling_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transcriptionsTotal, m.analysesTotal, m.confirmationsTotal, m.complaintsTotal)
	return m
}

func (m *IntakeMetrics) ObserveTranscription(provider string, fallback bool) {
	if m == nil {
		return
	}
	m.transcriptionsTotal.WithLabelValues(provider, boolLabel(fallback)).Inc()
}

func (m *IntakeMetrics) ObserveAnalysis(category, severity string) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(category, severity).Inc()
}

func (m *IntakeMetrics) ObserveConfirmation(nextStep string) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(nextStep).Inc()
}

func (m *IntakeMetrics) ObserveComplaint(category, severity, handlingType string) {
	if m == nil {
		return
	}
	m.complaintsTotal.WithLabelValues(category, severity, handlingType).Inc()
}

// HTTPMetrics records request counts and latency per route pattern.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicedesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voicedesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
