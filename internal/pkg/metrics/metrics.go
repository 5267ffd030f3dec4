package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wasteatlas",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wasteatlas",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Atlas metrics
	SequenceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "atlas",
		Name:      "sequence_transitions_total",
		Help:      "Total sequence transitions by action",
	}, []string{"action"})

	FramesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "atlas",
		Name:      "frames_rendered_total",
		Help:      "Total frames computed, by output format",
	}, []string{"format"})

	MarkersUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "atlas",
		Name:      "markers_updated_total",
		Help:      "Markers resized on sequence transitions",
	}, []string{"dataset"})

	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "datasets",
		Name:      "loads_total",
		Help:      "Dataset load attempts by result",
	}, []string{"dataset", "result"})

	DatasetLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wasteatlas",
		Subsystem: "datasets",
		Name:      "load_duration_seconds",
		Help:      "Duration of dataset loads",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"dataset"})

	SourcePolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "datasets",
		Name:      "source_polls_total",
		Help:      "Remote dataset polls by result",
	}, []string{"dataset", "result"})

	TileRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "tiles",
		Name:      "requests_total",
		Help:      "Basemap tile requests by cache result",
	}, []string{"result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wasteatlas",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasteatlas",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wasteatlas",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wasteatlas",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wasteatlas",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool.Stat.
// The stat is taken as an interface so this package does not import pgx.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
