package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	ferrors "git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/generator"
	"git.home.luguber.info/inful/odata4gen/internal/logfields"
	"git.home.luguber.info/inful/odata4gen/internal/metrics"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	GenerationFlags
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := g.Build(root.Verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRunner(global, g.MetricsFile).run(ctx, cfg)
}

// runner executes generations for one command invocation. Metrics
// accumulate across the runs of a watch session.
type runner struct {
	global       *Global
	metricsFile  string
	recorder     *metrics.PrometheusRecorder
	orchestrator *generator.Orchestrator
}

func newRunner(global *Global, metricsFile string) *runner {
	r := &runner{global: global, metricsFile: metricsFile}
	opts := []generator.Option{generator.WithLogger(global.Logger)}
	if metricsFile != "" {
		r.recorder = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		opts = append(opts, generator.WithRecorder(r.recorder))
	}
	r.orchestrator = generator.New(opts...)
	return r
}

func (r *runner) run(ctx context.Context, cfg *config.Generation) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDirectory, 0o750); err != nil {
		return ferrors.FileWriteError(cfg.OutputDirectory, err).Build()
	}

	result, err := r.orchestrator.Generate(ctx, cfg)
	r.writeMetrics()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(r.global.Stdout, "Generated %d file(s) in %s\n", len(result.Files), cfg.OutputDirectory)
	for _, d := range result.Diagnostics {
		_, _ = fmt.Fprintf(r.global.Stdout, "  %s\n", d)
	}
	return nil
}

func (r *runner) writeMetrics() {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.WriteTextfile(r.metricsFile); err != nil {
		r.logger().Warn("Failed to write metrics file", logfields.Path(r.metricsFile), logfields.Error(err))
	}
}

func (r *runner) logger() *slog.Logger {
	if r.global.Logger != nil {
		return r.global.Logger
	}
	return slog.Default()
}
