package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// RunOutcomeLabel is the final status of a generation run.
type RunOutcomeLabel string

const (
	RunSuccess  RunOutcomeLabel = "success"
	RunWarning  RunOutcomeLabel = "warning"
	RunFailed   RunOutcomeLabel = "failed"
	RunCanceled RunOutcomeLabel = "canceled"
)

// Stage names used by the generation pipeline.
const (
	StageResolve = "resolve"
	StageEngine  = "engine"
	StageWrite   = "write"
	StageEmit    = "emit"
	StagePlugins = "plugins"
)

// Metadata sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Recorder defines observability hooks for run and stage metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome RunOutcomeLabel)
	IncMetadataFetch(source string, success bool)
	IncPluginExecution(typeName string, success bool)
	SetGeneratedFiles(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel) {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel) {}
func (NoopRecorder) IncMetadataFetch(string, bool) {}
func (NoopRecorder) IncPluginExecution(string, bool) {}
func (NoopRecorder) SetGeneratedFiles(int) {}
