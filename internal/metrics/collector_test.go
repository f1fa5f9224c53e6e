package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsSingleton(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)
}

func TestObserveCounters(t *testing.T) {
	c := Default()

	before := testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("deepseek-v3", "success"))
	c.ObserveLLMRequest("deepseek-v3", "success", 120*time.Millisecond)
	after := testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("deepseek-v3", "success"))
	assert.Equal(t, before+1, after)

	c.AddLLMTokens("deepseek-v3", 100, 20)
	assert.Equal(t, float64(100), testutil.ToFloat64(c.llmTokensTotal.WithLabelValues("deepseek-v3", "prompt")))

	c.ObserveOxyCall("wiki_summary", "completed", 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.oxyCallsTotal.WithLabelValues("wiki_summary", "completed")))

	c.ObserveBenchTask("success", time.Second)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.benchTasksTotal.WithLabelValues("success")))
}
