// Package metrics は Prometheus のメトリクスと /metrics エンドポイントを提供します。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "galoya"

// Metrics はAPIサーバーのメトリクス一式です。レジストリはプロセス内で1つだけ作ります。
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	contactMessages *prometheus.CounterVec
}

// New はレジストリを作成し、メトリクスを登録します。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by result",
		}, []string{"result"}),
		contactMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_messages_total",
			Help:      "Total number of contact form submissions by result",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.loginAttempts,
		m.contactMessages,
	)
	return m
}

// Middleware はリクエスト数と処理時間を記録します。ルートはテンプレート（/api/products/:slugOrId）で集計します。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveLogin はログイン試行の結果を数えます。
func (m *Metrics) ObserveLogin(result string) {
	m.loginAttempts.WithLabelValues(result).Inc()
}

// ObserveContact はお問い合わせの受付結果を数えます。
func (m *Metrics) ObserveContact(result string) {
	m.contactMessages.WithLabelValues(result).Inc()
}

// Handler は /metrics のハンドラーです。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry はレジストリを返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
