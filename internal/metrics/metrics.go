package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts renders, exports, logo loads and HTTP requests, both in
// memory (for the run report and tests) and as Prometheus collectors on a
// private registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	mu    sync.Mutex
	stats Snapshot

	reg          *prometheus.Registry
	renders      prometheus.Histogram
	exports      *prometheus.HistogramVec
	logoLoads    *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	Renders      int
	RenderTime   time.Duration
	Exports      int
	ExportErrors int
	LogoLoads    int
	LogoErrors   int
	HTTPRequests int
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		renders: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scrim2gif",
			Name:      "render_seconds",
			Help:      "Time to render one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		exports: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scrim2gif",
			Name:      "export_seconds",
			Help:      "Time to produce one export, by format and result.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"format", "result"}),
		logoLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrim2gif",
			Name:      "logo_loads_total",
			Help:      "Logo fetch+decode attempts by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrim2gif",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scrim2gif",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	r.reg.MustRegister(r.renders, r.exports, r.logoLoads, r.httpRequests, r.httpLatency)
	return r
}

func (r *Recorder) RecordRender(d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.Renders++
	r.stats.RenderTime += d
	r.mu.Unlock()
	r.renders.Observe(d.Seconds())
}

func (r *Recorder) RecordExport(format string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.Exports++
	if err != nil {
		r.stats.ExportErrors++
	}
	r.mu.Unlock()
	r.exports.WithLabelValues(format, result(err)).Observe(d.Seconds())
}

func (r *Recorder) RecordLogoLoad(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.LogoLoads++
	if err != nil {
		r.stats.LogoErrors++
	}
	r.mu.Unlock()
	r.logoLoads.WithLabelValues(result(err)).Inc()
}

func (r *Recorder) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.HTTPRequests++
	r.mu.Unlock()
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
