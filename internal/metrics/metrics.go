// Package metrics exposes AirFrame counters and histograms to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the AirFrame collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	framesTotal    prometheus.Counter
	rejectsTotal   prometheus.Counter
	labelsTotal    *prometheus.CounterVec
	actionsTotal   *prometheus.CounterVec
	filterSeconds  *prometheus.HistogramVec
	galleryItems   prometheus.Gauge
	requestsTotal  prometheus.Counter
	errorsTotal    prometheus.Counter
	renderedFrames prometheus.Counter
}

// New creates and registers the AirFrame collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airframe_landmark_frames_total",
			Help: "Landmark frames processed by the gesture engine",
		}),
		rejectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airframe_landmark_rejects_total",
			Help: "Landmark frames rejected by validation",
		}),
		labelsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airframe_gesture_labels_total",
			Help: "Frames recognized per gesture label",
		}, []string{"label"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airframe_actions_total",
			Help: "Actions dispatched, by action and source",
		}, []string{"action", "source"}),
		filterSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airframe_filter_apply_seconds",
			Help:    "Time spent applying a filter to one frame",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .02, .04, .08},
		}, []string{"kind"}),
		galleryItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airframe_gallery_items",
			Help: "Items currently in the gallery",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airframe_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airframe_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		renderedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airframe_rendered_frames_total",
			Help: "Camera frames rendered through the filter pipeline",
		}),
	}

	m.registry.MustRegister(
		m.framesTotal,
		m.rejectsTotal,
		m.labelsTotal,
		m.actionsTotal,
		m.filterSeconds,
		m.galleryItems,
		m.requestsTotal,
		m.errorsTotal,
		m.renderedFrames,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncFrames() {
	m.framesTotal.Inc()
}

func (m *Metrics) IncRejects() {
	m.rejectsTotal.Inc()
}

func (m *Metrics) IncLabel(label string) {
	m.labelsTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) IncAction(action, source string) {
	m.actionsTotal.WithLabelValues(action, source).Inc()
}

func (m *Metrics) IncRendered() {
	m.renderedFrames.Inc()
}

// ObserveFilter records how long one filter application took.
func (m *Metrics) ObserveFilter(kind string, d time.Duration) {
	m.filterSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) SetGalleryItems(n int) {
	m.galleryItems.Set(float64(n))
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
