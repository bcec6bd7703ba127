package plugin

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/logfields"
	"git.home.luguber.info/inful/odata4gen/internal/metrics"
	"git.home.luguber.info/inful/odata4gen/internal/observability"
)

// Host loads plugins from spec strings and runs them in order.
type Host struct {
	loader   Loader
	logger   *slog.Logger
	recorder metrics.Recorder
	dir      string
}

// Option configures a Host.
type Option func(*Host)

// WithLoader replaces the shared object loader.
func WithLoader(l Loader) Option {
	return func(h *Host) {
		if l != nil {
			h.loader = l
		}
	}
}

// WithLogger sets the base logger handed to plugins.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(h *Host) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithDir sets the directory modules are resolved against. It defaults to
// the working directory at load time.
func WithDir(dir string) Option {
	return func(h *Host) { h.dir = dir }
}

// NewHost returns a host that opens shared objects.
func NewHost(opts ...Option) *Host {
	h := &Host{
		loader:   SharedObjectLoader{},
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) moduleDir() (string, error) {
	if h.dir != "" {
		return h.dir, nil
	}
	return os.Getwd()
}

// Load validates raw and builds the plugin it names. Checks run in order:
// spec shape, module file, type lookup, instantiation.
func (h *Host) Load(ctx context.Context, raw string, cfg *config.Generation) (Plugin, error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, err
	}

	dir, err := h.moduleDir()
	if err != nil {
		return nil, errors.PluginModuleNotFoundError(raw, spec.Module).WithCause(err).Build()
	}
	modulePath := spec.Module
	if !filepath.IsAbs(modulePath) {
		modulePath = filepath.Join(dir, spec.Module)
	}
	if st, statErr := os.Stat(modulePath); statErr != nil || st.IsDir() {
		return nil, errors.PluginModuleNotFoundError(raw, spec.Module).
			WithContext("path", modulePath).
			Build()
	}

	factory, err := h.loader.Load(modulePath, spec.TypeName)
	if err != nil {
		return nil, errors.PluginTypeNotFoundError(raw, spec.TypeName, err).Build()
	}

	p, err := instantiate(factory, h.logger.With(logfields.Plugin(raw)), pluginConfig(cfg))
	if err != nil {
		return nil, errors.PluginInstantiationError(raw, err).Build()
	}
	if ar, ok := p.(ArgsReceiver); ok && len(spec.Extra) > 0 {
		ar.SetArgs(spec.Extra)
	}

	observability.Logger(ctx, h.logger).LogAttrs(ctx, slog.LevelDebug, "Plugin loaded", logfields.Path(modulePath))
	return p, nil
}

func instantiate(f Factory, logger *slog.Logger, cfg *Config) (p Plugin, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("factory panicked: %v", r)
		}
	}()
	p, err = f(logger, cfg)
	if err == nil && p == nil {
		err = stderrors.New("factory returned no instance")
	}
	return p, err
}

func execute(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panicked: %v", r)
		}
	}()
	return p.Execute(ctx)
}

// RunAll loads and executes each spec in order. The first failure stops
// the chain; later plugins are neither loaded nor executed.
func (h *Host) RunAll(ctx context.Context, specs []string, cfg *config.Generation) error {
	for _, raw := range specs {
		if err := ctx.Err(); err != nil {
			return err
		}
		pctx := observability.WithPlugin(ctx, raw)

		p, err := h.Load(pctx, raw, cfg)
		if err != nil {
			h.recorder.IncPluginExecution(typeLabel(raw), false)
			return err
		}

		if err := h.run(pctx, raw, p, cfg.PluginTimeout); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) run(ctx context.Context, raw string, p Plugin, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := execute(ctx, p)
	elapsed := logfields.DurationMS(float64(time.Since(start).Milliseconds()))
	h.recorder.IncPluginExecution(typeLabel(raw), err == nil)

	if err != nil {
		observability.Logger(ctx, h.logger).LogAttrs(ctx, slog.LevelError, "Plugin failed", elapsed, logfields.Error(err))
		return errors.PluginExecutionError(raw, err).Build()
	}
	observability.Logger(ctx, h.logger).LogAttrs(ctx, slog.LevelInfo, "Plugin executed", elapsed)
	return nil
}

// typeLabel keeps metric cardinality to the type name.
func typeLabel(raw string) string {
	if spec, err := ParseSpec(raw); err == nil {
		return spec.TypeName
	}
	return "invalid"
}
