package obs

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors for the site.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	PageViews         prometheus.Counter
	ContactOutcomes   *prometheus.CounterVec
	AttachmentRejects *prometheus.CounterVec
	Sessions          prometheus.GaugeFunc
}

// NewMetrics registers and returns the site collectors. sessions reports the
// number of live contact sessions and may be nil.
func NewMetrics(namespace string, reg prometheus.Registerer, sessions func() float64) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if sessions == nil {
		sessions = func() float64 { return 0 }
	}
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		PageViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_total",
			Help:      "Full page loads of the portfolio.",
		}),
		ContactOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		AttachmentRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_attachment_rejections_total",
			Help:      "Staged attachments refused, by reason.",
		}, []string{"reason"}),
		Sessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contact_sessions",
			Help:      "Live contact form sessions held in memory.",
		}, sessions),
	}
	reg.MustRegister(m.HTTPRequests, m.PageViews, m.ContactOutcomes, m.AttachmentRejects, m.Sessions)
	return m
}

// Middleware counts requests by route and status.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
