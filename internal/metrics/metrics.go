// Package metrics exposes Prometheus counters for polling cycles, course
// scrapes and notifications.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CourseWatcher/internal/domain"
)

const namespace = "coursewatcher"

// Scrape results.
const (
	ResultUnchanged = "unchanged"
	ResultChanged   = "changed"
	ResultFirstSeen = "first_seen"
	ResultFailed    = "failed"
)

// Collector holds the watcher metrics on a private registry. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	Cycles         prometheus.Counter
	CycleDuration  prometheus.Histogram
	CourseScrapes  *prometheus.CounterVec
	Changes        *prometheus.CounterVec
	Notifications  *prometheus.CounterVec
	TrackedCourses prometheus.Gauge
}

// New registers all metrics plus Go runtime collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total polling cycles executed",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one polling cycle",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		CourseScrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "course_scrapes_total",
			Help:      "Course scrapes by result (unchanged, changed, first_seen, failed)",
		}, []string{"result"}),
		Changes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "New items detected by category",
		}, []string{"category"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by result (sent, failed, skipped)",
		}, []string{"result"}),
		TrackedCourses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_courses",
			Help:      "Courses present in the snapshot store",
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveCycle(elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Cycles.Inc()
	c.CycleDuration.Observe(elapsed.Seconds())
}

func (c *Collector) CourseScraped(result string) {
	if c == nil {
		return
	}
	c.CourseScrapes.WithLabelValues(result).Inc()
}

func (c *Collector) ChangeDetected(category domain.Category) {
	if c == nil {
		return
	}
	c.Changes.WithLabelValues(string(category)).Inc()
}

func (c *Collector) NotificationResult(result string) {
	if c == nil {
		return
	}
	c.Notifications.WithLabelValues(result).Inc()
}

func (c *Collector) SetTracked(n int) {
	if c == nil {
		return
	}
	c.TrackedCourses.Set(float64(n))
}
