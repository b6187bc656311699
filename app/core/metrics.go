package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rowdybard/banterbox/pkg/metrics"
)

type Metrics struct {
	apiResponseTime    *prometheus.HistogramVec
	apiErrorCounter    *prometheus.CounterVec
	eventsRecorded     *prometheus.CounterVec
	sweepRemoved       *prometheus.CounterVec
	classifierCalls    *prometheus.CounterVec
	classifierTime     *prometheus.HistogramVec
	contextBuildTime   *prometheus.HistogramVec
	detectorScore      *prometheus.HistogramVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:  metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:  metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		eventsRecorded:   metrics.NewCounterVec("events_recorded", []string{"event_type", "outcome"}),
		sweepRemoved:     metrics.NewCounterVec("sweep_removed", []string{"kind"}),
		classifierCalls:  metrics.NewCounterVec("classifier_calls", []string{"op", "result"}),
		classifierTime:   metrics.NewHistogramVec("classifier_call_time", []string{"op"}),
		contextBuildTime: metrics.NewHistogramVec("context_build_time", []string{"type"}),
		detectorScore:    metrics.NewHistogramVec("detector_score", nil),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) EventRecordedInc(eventType, outcome string) {
	m.eventsRecorded.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) SweepRemovedAdd(kind string, n float64) {
	m.sweepRemoved.WithLabelValues(kind).Add(n)
}

func (m *Metrics) ClassifierCallInc(op, result string) {
	m.classifierCalls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ClassifierTimer(op string) *prometheus.Timer {
	return prometheus.NewTimer(m.classifierTime.WithLabelValues(op))
}

func (m *Metrics) ContextBuildTimer(types string) *prometheus.Timer {
	return prometheus.NewTimer(m.contextBuildTime.WithLabelValues(types))
}

func (m *Metrics) DetectorScoreObserve(score float64) {
	m.detectorScore.WithLabelValues().Observe(score)
}
