package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry with the HTTP and blog collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	postsCreated prometheus.Counter
	postLikes    prometheus.Counter
	postsUpdated prometheus.Counter
	postsDeleted prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Total number of posts created",
		}),
		postLikes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_post_likes_total",
			Help: "Total number of likes recorded",
		}),
		postsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_posts_updated_total",
			Help: "Total number of posts updated",
		}),
		postsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_posts_deleted_total",
			Help: "Total number of delete requests",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.postsCreated,
		m.postLikes,
		m.postsUpdated,
		m.postsDeleted,
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies per route.
// Errors are handed to the echo error handler before recording so the status
// label is the one the client received. The error is still returned, and the
// error handler must ignore responses that are already committed.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			duration := time.Since(start)
			status := c.Response().Status

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	}
}

func (m *Metrics) PostCreated() {
	if m != nil {
		m.postsCreated.Inc()
	}
}

func (m *Metrics) PostLiked() {
	if m != nil {
		m.postLikes.Inc()
	}
}

func (m *Metrics) PostUpdated() {
	if m != nil {
		m.postsUpdated.Inc()
	}
}

func (m *Metrics) PostDeleted() {
	if m != nil {
		m.postsDeleted.Inc()
	}
}
