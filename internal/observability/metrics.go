package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnloop",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "learnloop",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	llmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnloop",
		Subsystem: "llm",
		Name:      "requests_total",
		Help:      "Generation backend calls by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	llmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "learnloop",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Generation backend latency by purpose.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
	}, []string{"purpose"})

	llmRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnloop",
		Subsystem: "llm",
		Name:      "retries_total",
		Help:      "Generation backend retry attempts by purpose.",
	}, []string{"purpose"})
)

// ObserveLLMRequest records one completed generation call. Outcome is
// "ok" or "error".
func ObserveLLMRequest(purpose, outcome string, elapsed time.Duration) {
	llmRequestsTotal.WithLabelValues(purpose, outcome).Inc()
	llmRequestDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func ObserveLLMRetry(purpose string) {
	llmRetriesTotal.WithLabelValues(purpose).Inc()
}

// MetricsMiddleware records per-route request counts and latency. The
// route label uses the matched template, not the raw path, to keep
// cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
