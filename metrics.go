package gobj

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "gobj"

// Collector exports a binding's registry size, registry operation counts
// and native call failures.
type Collector struct {
	binding *Binding

	entries    *prometheus.Desc
	operations *prometheus.Desc
	callErrors *prometheus.Desc
}

// NewCollector returns a prometheus.Collector for b. The registry name is
// attached as a constant label.
func NewCollector(b *Binding) *Collector {
	labels := prometheus.Labels{"registry": b.reg.Name()}
	return &Collector{
		binding: b,
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "registry", "entries"),
			"Number of native handles with a registered wrapper.",
			nil, labels,
		),
		operations: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "registry", "operations_total"),
			"Registry operations by kind.",
			[]string{"op"}, labels,
		),
		callErrors: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "native", "call_errors_total"),
			"Failed calls into the native library by operation.",
			[]string{"op"}, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.operations
	ch <- c.callErrors
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(c.binding.Len()))

	s := c.binding.reg.Stats()
	for op, n := range map[string]uint64{
		"register":   s.Registrations,
		"replace":    s.Replacements,
		"unregister": s.Unregistrations,
		"hit":        s.Hits,
		"miss":       s.Misses,
	} {
		ch <- prometheus.MustNewConstMetric(c.operations, prometheus.CounterValue, float64(n), op)
	}

	for op, n := range c.binding.NativeCallErrors() {
		ch <- prometheus.MustNewConstMetric(c.callErrors, prometheus.CounterValue, float64(n), op)
	}
}
