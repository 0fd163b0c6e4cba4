package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics exposes counters, gauges and histograms for the analysis pipeline.
type PipelineMetrics struct {
	analysesTotal    *prometheus.CounterVec
	phiDetections    *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	escalations      *prometheus.CounterVec
	contextEvictions prometheus.Counter
	trackedUsers     prometheus.Gauge
	feedbackTotal    prometheus.Gauge
	feedbackHelpful  prometheus.Gauge
	analysisLatency  *prometheus.HistogramVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "analyses_total",
			Help:      "Total analyzed messages by intent and urgency",
		}, []string{"intent", "urgency", "channel"}),
		phiDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "compliance",
			Name:      "phi_detections_total",
			Help:      "PHI matches by category",
		}, []string{"category"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "upstream_failures_total",
			Help:      "Failed calls to secondary services",
		}, []string{"service"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "support",
			Name:      "escalations_total",
			Help:      "Escalations raised by urgency level",
		}, []string{"urgency"}),
		contextEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careline",
			Subsystem: "conversation",
			Name:      "context_evictions_total",
			Help:      "Conversation contexts evicted for inactivity",
		}),
		trackedUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "careline",
			Subsystem: "conversation",
			Name:      "tracked_users",
			Help:      "Users with a live conversation context",
		}),
		feedbackTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "careline",
			Subsystem: "feedback",
			Name:      "records",
			Help:      "Feedback records stored",
		}),
		feedbackHelpful: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "careline",
			Subsystem: "feedback",
			Name:      "helpful_percentage",
			Help:      "Share of feedback marked helpful",
		}),
		analysisLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careline",
			Subsystem: "pipeline",
			Name:      "analysis_latency_seconds",
			Help:      "Latency of message analysis",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.analysesTotal,
		m.phiDetections,
		m.upstreamFailures,
		m.escalations,
		m.contextEvictions,
		m.trackedUsers,
		m.feedbackTotal,
		m.feedbackHelpful,
		m.analysisLatency,
	)
	return m
}

func (m *PipelineMetrics) ObserveAnalysis(channel, intent, urgency string, seconds float64) {
	if m == nil {
		return
	}
	channel = labelOrUnknown(channel)
	m.analysesTotal.WithLabelValues(labelOrUnknown(intent), labelOrUnknown(urgency), channel).Inc()
	m.analysisLatency.WithLabelValues(channel).Observe(seconds)
}

// ObservePHI adds the per-category match counts from one message.
func (m *PipelineMetrics) ObservePHI(counts map[string]int) {
	if m == nil {
		return
	}
	for category, n := range counts {
		if n <= 0 {
			continue
		}
		m.phiDetections.WithLabelValues(category).Add(float64(n))
	}
}

func (m *PipelineMetrics) ObserveUpstreamFailure(service string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(labelOrUnknown(service)).Inc()
}

func (m *PipelineMetrics) ObserveEscalation(urgency string) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(labelOrUnknown(urgency)).Inc()
}

func (m *PipelineMetrics) ObserveContextSweep(evicted, remaining int) {
	if m == nil {
		return
	}
	if evicted > 0 {
		m.contextEvictions.Add(float64(evicted))
	}
	m.trackedUsers.Set(float64(remaining))
}

func (m *PipelineMetrics) ObserveFeedbackSummary(count, _ int, percentage float64) {
	if m == nil {
		return
	}
	m.feedbackTotal.Set(float64(count))
	m.feedbackHelpful.Set(percentage)
}

func labelOrUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
