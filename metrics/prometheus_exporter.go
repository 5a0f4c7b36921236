package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter serves the contents of a Registry in Prometheus
// exposition format. Rather than hand-formatting the text protocol, it
// mirrors every Counter/Gauge/Histogram in the Registry into a
// prometheus.Registry through one unchecked collector that snapshots the
// Registry on each scrape, and delegates scraping to promhttp, so the wire format and content negotiation (including protobuf
// and OpenMetrics) stay correct for free.
type PrometheusExporter struct {
	config   PrometheusConfig
	registry *Registry
	promReg  *prometheus.Registry
}

// PrometheusConfig configures the Prometheus exporter.
type PrometheusConfig struct {
	// Namespace is an optional prefix prepended to all metric names
	// (e.g. "lance_index" produces "lance_index_flat_search_total").
	Namespace string
	// Path is the HTTP path to serve metrics on (default "/metrics").
	Path string
}

// DefaultPrometheusConfig returns a config with sensible defaults.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace: "lance_index",
		Path:      "/metrics",
	}
}

// NewPrometheusExporter creates a new exporter that reads from the given
// registry. Metric collection is lazy: each scrape re-reads the current
// Counter/Gauge/Histogram values, so metrics created after NewPrometheusExporter
// is called are still picked up.
func NewPrometheusExporter(registry *Registry, config PrometheusConfig) *PrometheusExporter {
	if config.Path == "" {
		config.Path = "/metrics"
	}
	pe := &PrometheusExporter{
		config:   config,
		registry: registry,
		promReg:  prometheus.NewRegistry(),
	}
	pe.promReg.MustRegister(&registrySnapshotCollector{collect: pe.collect})
	return pe
}

// registrySnapshotCollector adapts Registry.Snapshot to the
// prometheus.Collector interface. It deliberately sends no descriptors from
// Describe: the set of metric names in a Registry grows at runtime as
// components call Counter/Gauge/Histogram for the first time, so this is
// registered as an "unchecked" collector per client_golang's convention for
// dynamic metric sets.
type registrySnapshotCollector struct {
	collect func(chan<- prometheus.Metric)
}

func (c *registrySnapshotCollector) Describe(chan<- *prometheus.Desc) {}

func (c *registrySnapshotCollector) Collect(ch chan<- prometheus.Metric) {
	c.collect(ch)
}

// promName converts a dot-separated metric name to Prometheus format: dots
// and dashes become underscores, and the namespace prefix is prepended.
func (pe *PrometheusExporter) promName(name string) string {
	sanitized := make([]byte, 0, len(name)+len(pe.config.Namespace)+1)
	if pe.config.Namespace != "" {
		sanitized = append(sanitized, pe.config.Namespace...)
		sanitized = append(sanitized, '_')
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' || c == '-' {
			c = '_'
		}
		sanitized = append(sanitized, c)
	}
	return string(sanitized)
}

// collect is invoked by the client_golang collection loop on every scrape;
// it snapshots the Registry and emits one Prometheus metric per entry.
func (pe *PrometheusExporter) collect(ch chan<- prometheus.Metric) {
	snap := pe.registry.Snapshot()
	for name, v := range snap {
		promName := pe.promName(name)
		switch val := v.(type) {
		case int64:
			desc := prometheus.NewDesc(promName, name, nil, nil)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(val))
		case map[string]interface{}:
			count, _ := val["count"].(int64)
			sum, _ := val["sum"].(float64)
			desc := prometheus.NewDesc(promName, name, nil, nil)
			ch <- prometheus.MustNewConstSummary(desc, uint64(count), sum, nil)
		}
	}
}

// Handler returns an http.Handler that serves the configured path in
// Prometheus exposition format.
func (pe *PrometheusExporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(pe.config.Path, promhttp.HandlerFor(pe.promReg, promhttp.HandlerOpts{}))
	return mux
}
