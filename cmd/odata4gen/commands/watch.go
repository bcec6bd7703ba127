package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/odata4gen/internal/logfields"
	"git.home.luguber.info/inful/odata4gen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	GenerationFlags
	Interval time.Duration `help:"Poll interval for remote metadata" default:"5m"`
	Debounce time.Duration `help:"Quiet period after a local metadata change" default:"500ms"`
}

func (w *WatchCmd) Run(global *Global, root *CLI) error {
	template, err := w.Build(root.Verbose)
	if err != nil {
		return err
	}
	if err := template.Validate(); err != nil {
		return err
	}

	r := newRunner(global, w.MetricsFile)
	// Each run gets its own copy; the resolver rewrites MetadataLocation.
	watcher, err := watch.New(template.MetadataLocation, func(ctx context.Context, _ string) error {
		return r.run(ctx, template.Clone())
	}, watch.Options{Debounce: w.Debounce, Interval: w.Interval, Logger: r.logger()})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r.logger().Info("Starting watch mode", logfields.Location(template.MetadataLocation))
	if err := watcher.Run(ctx); err != nil {
		return err
	}
	r.logger().Info("Watch mode stopped")
	return nil
}
