// Package metrics provides internal Prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector aggregates the framework's Prometheus metrics.
type Collector struct {
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensTotal     *prometheus.CounterVec

	oxyCallsTotal   *prometheus.CounterVec
	oxyCallDuration *prometheus.HistogramVec

	benchTasksTotal   *prometheus.CounterVec
	benchTaskDuration prometheus.Histogram
}

var (
	defaultCollector *Collector
	defaultOnce      sync.Once
)

// Default returns the process-wide collector. promauto registers with the
// global registry, so construction must happen exactly once.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultCollector = newCollector("oxygent")
	})
	return defaultCollector
}

func newCollector(namespace string) *Collector {
	c := &Collector{}

	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"provider", "status"},
	)
	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"provider"},
	)
	c.llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total tokens reported by providers",
		},
		[]string{"provider", "kind"},
	)

	c.oxyCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oxy_calls_total",
			Help:      "Total operator invocations dispatched by the MAS",
		},
		[]string{"callee", "state"},
	)
	c.oxyCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oxy_call_duration_seconds",
			Help:      "Operator invocation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		},
		[]string{"callee"},
	)

	c.benchTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bench_tasks_total",
			Help:      "Total benchmark tasks by outcome",
		},
		[]string{"status"},
	)
	c.benchTaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bench_task_duration_seconds",
			Help:      "Benchmark task duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	return c
}

// ObserveLLMRequest records one completion request.
func (c *Collector) ObserveLLMRequest(provider, status string, d time.Duration) {
	c.llmRequestsTotal.WithLabelValues(provider, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// AddLLMTokens records token usage for a provider.
func (c *Collector) AddLLMTokens(provider string, prompt, completion int) {
	if prompt > 0 {
		c.llmTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		c.llmTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	}
}

// ObserveOxyCall records one dispatched operator invocation.
func (c *Collector) ObserveOxyCall(callee, state string, d time.Duration) {
	c.oxyCallsTotal.WithLabelValues(callee, state).Inc()
	c.oxyCallDuration.WithLabelValues(callee).Observe(d.Seconds())
}

// ObserveBenchTask records one finished benchmark task.
func (c *Collector) ObserveBenchTask(status string, d time.Duration) {
	c.benchTasksTotal.WithLabelValues(status).Inc()
	c.benchTaskDuration.Observe(d.Seconds())
}
