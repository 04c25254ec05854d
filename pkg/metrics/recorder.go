package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder publishes pipeline counters to Prometheus.
type Recorder struct {
	runs        *prometheus.CounterVec
	calls       *prometheus.CounterVec
	chunks      prometheus.Histogram
	runDuration *prometheus.HistogramVec
}

// NewRecorder registers the summarizer collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsum",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by path and terminal state.",
		}, []string{"path", "state"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsum",
			Name:      "llm_calls_total",
			Help:      "Text generation calls by prompt kind and outcome.",
		}, []string{"kind", "outcome"}),
		chunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docsum",
			Name:      "document_chunks",
			Help:      "Number of chunks produced for multi-chunk documents.",
			Buckets:   []float64{2, 4, 6, 8, 12, 16, 24, 32, 64},
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsum",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall clock duration of pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"path"}),
	}
	if reg != nil {
		reg.MustRegister(r.runs, r.calls, r.chunks, r.runDuration)
	}
	return r
}

// RunFinished records a terminal pipeline state.
func (r *Recorder) RunFinished(path, state string, elapsed time.Duration) {
	if r == nil {
		return
	}
	if path == "" {
		path = "none"
	}
	r.runs.WithLabelValues(path, state).Inc()
	r.runDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// LLMCall records one text generation call.
func (r *Recorder) LLMCall(kind string, ok bool) {
	if r == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	r.calls.WithLabelValues(kind, outcome).Inc()
}

// ChunksProduced records the chunk count of a multi-chunk run.
func (r *Recorder) ChunksProduced(n int) {
	if r == nil {
		return
	}
	r.chunks.Observe(float64(n))
}
