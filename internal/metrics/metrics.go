package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	BatchRuns        prometheus.Counter
	GroupRuns        *prometheus.CounterVec
	PostsFetched     prometheus.Counter
	PostsRejected    prometheus.Counter
	NewPosts         prometheus.Counter
	Classifications  *prometheus.CounterVec
	LeadsFound       prometheus.Counter
	LeadsPublished   prometheus.Counter
	GroupDuration    prometheus.Histogram
	BatchDuration    prometheus.Histogram
	LastBatchSuccess prometheus.Gauge
	ConfiguredGroups prometheus.Gauge
}

// NewMetrics creates Prometheus metrics registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		BatchRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "group_lead_scraper_batch_runs_total",
			Help: "Total number of batch runs over the configured groups",
		}),
		GroupRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "group_lead_scraper_group_runs_total",
			Help: "Total number of group runs by outcome",
		}, []string{"status"}),
		PostsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "group_lead_scraper_posts_fetched_total",
			Help: "Total number of raw records returned by the scraping backend",
		}),
		PostsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "group_lead_scraper_posts_rejected_total",
			Help: "Total number of raw records skipped for missing fields",
		}),
		NewPosts: factory.NewCounter(prometheus.CounterOpts{
			Name: "group_lead_scraper_new_posts_total",
			Help: "Total number of posts not seen in earlier runs",
		}),
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "group_lead_scraper_classifications_total",
			Help: "Total number of classification attempts by outcome",
		}, []string{"result"}),
		LeadsFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "group_lead_scraper_leads_found_total",
			Help: "Total number of posts classified as relevant",
		}),
		LeadsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "group_lead_scraper_leads_published_total",
			Help: "Total number of lead notifications published",
		}),
		GroupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "group_lead_scraper_group_duration_seconds",
			Help:    "Time spent processing one group",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "group_lead_scraper_batch_duration_seconds",
			Help:    "Time spent processing a full batch",
			Buckets: []float64{5, 30, 60, 300, 600, 1800, 3600},
		}),
		LastBatchSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "group_lead_scraper_last_batch_success_timestamp_seconds",
			Help: "Unix time of the last batch in which every group succeeded",
		}),
		ConfiguredGroups: factory.NewGauge(prometheus.GaugeOpts{
			Name: "group_lead_scraper_configured_groups",
			Help: "Number of groups in the current configuration",
		}),
	}
}
