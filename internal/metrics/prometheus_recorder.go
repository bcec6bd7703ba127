package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	registry         *prom.Registry
	stageDuration    *prom.HistogramVec
	runDuration      prom.Histogram
	stageResults     *prom.CounterVec
	runOutcome       *prom.CounterVec
	metadataFetches  *prom.CounterVec
	pluginExecutions *prom.CounterVec
	generatedFiles   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "odata4gen",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "odata4gen",
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "odata4gen",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "odata4gen",
			Name:      "run_outcomes_total",
			Help:      "Generation runs by final status",
		}, []string{"outcome"})
		pr.metadataFetches = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "odata4gen",
			Name:      "metadata_fetches_total",
			Help:      "Metadata acquisitions by source and result",
		}, []string{"source", "result"})
		pr.pluginExecutions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "odata4gen",
			Name:      "plugin_executions_total",
			Help:      "Plugin executions by type and result",
		}, []string{"type", "result"})
		pr.generatedFiles = prom.NewGauge(prom.GaugeOpts{
			Namespace: "odata4gen",
			Name:      "generated_files",
			Help:      "Files written by the last generation run",
		})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome, pr.metadataFetches, pr.pluginExecutions, pr.generatedFiles)
	})
	return pr
}

// Registry returns the registry the metrics were registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// WriteTextfile dumps the registry in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncMetadataFetch(source string, success bool) {
	if p == nil || p.metadataFetches == nil {
		return
	}
	p.metadataFetches.WithLabelValues(source, resultOf(success)).Inc()
}

func (p *PrometheusRecorder) IncPluginExecution(typeName string, success bool) {
	if p == nil || p.pluginExecutions == nil {
		return
	}
	p.pluginExecutions.WithLabelValues(typeName, resultOf(success)).Inc()
}

func (p *PrometheusRecorder) SetGeneratedFiles(n int) {
	if p == nil || p.generatedFiles == nil {
		return
	}
	p.generatedFiles.Set(float64(n))
}

func resultOf(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
