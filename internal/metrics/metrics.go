package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

type tracker interface {
	TrackRequest(site, method string, status int, duration time.Duration)
	TrackLookup(outcome string, duration time.Duration)
	TrackHeaderSet(site string)
}

var Tracker tracker = &nullTracker{}

func Enable() http.Handler {
	Tracker = NewPrometheusTracker()
	return promhttp.Handler()
}

type nullTracker struct{}

func (nullTracker) TrackRequest(site, method string, status int, dur time.Duration) {}
func (nullTracker) TrackLookup(outcome string, dur time.Duration)                   {}
func (nullTracker) TrackHeaderSet(site string)                                      {}

type prometheusTracker struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	headersSet     *prometheus.CounterVec
}

func NewPrometheusTracker() *prometheusTracker {
	tracker := &prometheusTracker{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "http_requests_total",
				Namespace: "lastmod",
				Subsystem: "proxy",
				Help:      "HTTP requests processed, labeled by site, status code and method.",
			},
			[]string{"site", "method", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "http_request_duration_seconds",
				Namespace: "lastmod",
				Subsystem: "proxy",
				Help:      "Duration of HTTP requests, labeled by site, status code and method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"site", "method", "status"},
		),

		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "lookups_total",
				Namespace: "lastmod",
				Subsystem: "contentgraph",
				Help:      "Content graph last-modified lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		),

		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:      "lookup_duration_seconds",
				Namespace: "lastmod",
				Subsystem: "contentgraph",
				Help:      "Duration of content graph lookups, labeled by outcome.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),

		headersSet: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:      "headers_set_total",
				Namespace: "lastmod",
				Subsystem: "proxy",
				Help:      "Responses that received a Last-Modified header, labeled by site.",
			},
			[]string{"site"},
		),
	}

	prometheus.MustRegister(tracker.httpRequests, tracker.httpDuration, tracker.lookups, tracker.lookupDuration, tracker.headersSet)

	return tracker
}

func (p *prometheusTracker) TrackRequest(site, method string, status int, duration time.Duration) {
	method = normalizeMethod(method)
	statusString := strconv.Itoa(status)

	p.httpRequests.WithLabelValues(site, method, statusString).Inc()
	p.httpDuration.WithLabelValues(site, method, statusString).Observe(duration.Seconds())
}

func (p *prometheusTracker) TrackLookup(outcome string, duration time.Duration) {
	p.lookups.WithLabelValues(outcome).Inc()
	p.lookupDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (p *prometheusTracker) TrackHeaderSet(site string) {
	p.headersSet.WithLabelValues(site).Inc()
}

// Private

func normalizeMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost,
		http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	default:
		return "OTHER"
	}
}
