package generator

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/engine"
	"git.home.luguber.info/inful/odata4gen/internal/engine/golang"
	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/logfields"
	"git.home.luguber.info/inful/odata4gen/internal/metadata"
	"git.home.luguber.info/inful/odata4gen/internal/metrics"
	"git.home.luguber.info/inful/odata4gen/internal/observability"
	"git.home.luguber.info/inful/odata4gen/internal/output"
	"git.home.luguber.info/inful/odata4gen/internal/plugin"
	"git.home.luguber.info/inful/odata4gen/internal/version"
	"git.home.luguber.info/inful/odata4gen/internal/workspace"
)

// CsdlSuffix is appended to the base name for the normalized metadata copy.
const CsdlSuffix = "Csdl.xml"

// PluginRunner executes plugin specs in order.
type PluginRunner interface {
	RunAll(ctx context.Context, specs []string, cfg *config.Generation) error
}

// Result describes a finished run.
type Result struct {
	RunID        string
	Version      metadata.SchemaVersion
	Files        []output.LedgerEntry
	Diagnostics  []engine.Diagnostic
	MetadataFile string
	SourceFile   string
	Duration     time.Duration
}

// Orchestrator runs generations. It holds no per-run state and may be
// reused for consecutive runs.
type Orchestrator struct {
	engine        engine.Engine
	httpClient    *http.Client
	recorder      metrics.Recorder
	logger        *slog.Logger
	plugins       PluginRunner
	workspaceBase string
	version       string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEngine replaces the built-in Go engine.
func WithEngine(e engine.Engine) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithHTTPClient sets the base client for remote metadata.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.httpClient = c }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPluginRunner replaces the default plugin host.
func WithPluginRunner(p PluginRunner) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.plugins = p
		}
	}
}

// WithWorkspaceBase sets the parent of the per-run scratch directory.
func WithWorkspaceBase(dir string) Option {
	return func(o *Orchestrator) { o.workspaceBase = dir }
}

// WithVersion overrides the value substituted for the version token.
func WithVersion(v string) Option {
	return func(o *Orchestrator) {
		if v != "" {
			o.version = v
		}
	}
}

// New returns an Orchestrator using the Go engine and the shared object
// plugin host unless overridden.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		version:  version.Short(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.engine == nil {
		o.engine = golang.New(golang.WithLogger(o.logger))
	}
	if o.plugins == nil {
		o.plugins = plugin.NewHost(plugin.WithLogger(o.logger), plugin.WithRecorder(o.recorder))
	}
	return o
}

// Generate runs the pipeline for cfg. cfg.MetadataLocation is normalized in
// place; nothing else in cfg is modified. On failure the returned Result
// still lists the files written so far.
func (o *Orchestrator) Generate(ctx context.Context, cfg *config.Generation) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	ctx = observability.WithRunID(ctx, result.RunID)

	var fm *output.FileManager
	finish := func(err error) (*Result, error) {
		result.Duration = time.Since(start)
		if fm != nil {
			result.Files = fm.Ledger()
		}
		o.recorder.ObserveRunDuration(result.Duration)
		o.recorder.SetGeneratedFiles(len(result.Files))
		o.recorder.IncRunOutcome(outcome(ctx, err, result.Diagnostics))
		if err != nil {
			o.log(ctx).LogAttrs(ctx, slog.LevelError, "Client code was not generated", logfields.Error(err))
			return result, err
		}
		o.log(ctx).LogAttrs(ctx, slog.LevelInfo, "Client code generated",
			logfields.Files(len(result.Files)),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
		return result, nil
	}

	if cfg == nil {
		return finish(errors.ConfigurationError("generation config is required").Build())
	}
	if err := cfg.Validate(); err != nil {
		return finish(err)
	}

	o.log(ctx).LogAttrs(ctx, slog.LevelInfo, "Generating client code", logfields.Location(cfg.MetadataLocation))

	ws := o.workspace(cfg)
	if err := ws.Create(); err != nil {
		return finish(errors.FileSystemError("failed to create workspace").WithCause(err).Build())
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			o.log(ctx).LogAttrs(ctx, slog.LevelWarn, "Failed to cleanup workspace", logfields.Error(err))
		}
	}()

	resolver := metadata.NewResolver(
		metadata.WithHTTPClient(o.httpClient),
		metadata.WithScratch(ws),
		metadata.WithRecorder(o.recorder),
		metadata.WithLogger(o.logger),
	)

	var resolved metadata.Result
	err := o.stage(ctx, metrics.StageResolve, func(ctx context.Context) error {
		var err error
		resolved, err = resolver.Resolve(ctx, cfg)
		if err != nil {
			return err
		}
		result.Version = resolved.Version
		if !resolved.Version.Supported() {
			return errors.UnsupportedSchemaVersionError(resolved.Version.String(), metadata.SupportedVersion.String()).
				WithContext("location", resolved.Location).
				Build()
		}
		return nil
	})
	if err != nil {
		return finish(err)
	}

	fm = output.NewFileManager(o.logger)
	fm.SetToken(output.VersionToken, o.version)

	base := cfg.BaseName()
	csdlName := base + CsdlSuffix
	result.MetadataFile = filepath.Join(cfg.OutputDirectory, csdlName)
	result.SourceFile = filepath.Join(cfg.OutputDirectory, base+"."+o.engine.Extension())

	if err := o.stage(ctx, metrics.StageWrite, func(context.Context) error {
		return fm.Write(resolved.Path, result.MetadataFile)
	}); err != nil {
		return finish(err)
	}

	var out *engine.Output
	err = o.stage(ctx, metrics.StageEngine, func(ctx context.Context) error {
		var err error
		out, err = o.engine.Generate(ctx, BuildEngineConfig(cfg, result.MetadataFile, csdlName))
		if err != nil {
			return errors.GenerationEngineError(o.engine.Name(), err).Build()
		}
		if out == nil {
			out = &engine.Output{}
		}
		result.Diagnostics = out.Diagnostics
		o.logDiagnostics(ctx, out)
		return nil
	})
	if err != nil {
		return finish(err)
	}

	if err := o.stage(ctx, metrics.StageWrite, func(context.Context) error {
		return fm.WriteBytes(o.engine.Name(), out.Source, result.SourceFile)
	}); err != nil {
		return finish(err)
	}

	if out.Emitter != nil {
		if err := o.stage(ctx, metrics.StageEmit, func(ctx context.Context) error {
			return out.Emitter.Emit(ctx, newEmitWriter(fm), cfg.OutputDirectory)
		}); err != nil {
			return finish(err)
		}
	}

	if len(cfg.Plugins) > 0 {
		if err := o.stage(ctx, metrics.StagePlugins, func(ctx context.Context) error {
			return o.plugins.RunAll(ctx, cfg.Plugins, cfg)
		}); err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

func (o *Orchestrator) workspace(cfg *config.Generation) *workspace.Manager {
	if cfg.WorkDirectory != "" {
		return workspace.NewPersistentManager(cfg.WorkDirectory, "metadata")
	}
	return workspace.NewManager(o.workspaceBase)
}

// stage runs fn with stage-scoped logging and records its duration and result.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	if err := ctx.Err(); err != nil {
		o.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}

	start := time.Now()
	err := fn(ctx)
	o.recorder.ObserveStageDuration(name, time.Since(start))

	switch {
	case err == nil:
		o.recorder.IncStageResult(name, metrics.ResultSuccess)
	case ctx.Err() != nil:
		o.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		o.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	o.log(ctx).LogAttrs(ctx, slog.LevelDebug, "Stage finished",
		logfields.DurationMS(float64(time.Since(start).Milliseconds())),
		logfields.Error(err))
	return err
}

func (o *Orchestrator) logDiagnostics(ctx context.Context, out *engine.Output) {
	logger := o.log(ctx)
	for _, d := range out.Diagnostics {
		level := slog.LevelWarn
		if d.Severity == engine.SeverityError {
			level = slog.LevelError
		}
		logger.LogAttrs(ctx, level, d.Message, logfields.Engine(o.engine.Name()), slog.String("element", d.Element))
	}
	if out.HasErrors() {
		logger.LogAttrs(ctx, slog.LevelError, "Engine reported errors, generated code may be incomplete", logfields.Engine(o.engine.Name()))
	}
}

// log scopes the configured logger to the run, stage and plugin in ctx.
func (o *Orchestrator) log(ctx context.Context) *slog.Logger {
	return observability.Logger(ctx, o.logger)
}

func outcome(ctx context.Context, err error, diags []engine.Diagnostic) metrics.RunOutcomeLabel {
	switch {
	case err != nil && ctx.Err() != nil:
		return metrics.RunCanceled
	case err != nil:
		return metrics.RunFailed
	case len(diags) > 0:
		return metrics.RunWarning
	default:
		return metrics.RunSuccess
	}
}
