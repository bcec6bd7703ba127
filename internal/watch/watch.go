// Package watch reruns generation when the metadata source changes. Local
// documents are observed with fsnotify; remote documents are polled on a
// gocron schedule. Runs never overlap and pending triggers coalesce.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/logfields"
	"git.home.luguber.info/inful/odata4gen/internal/metadata"
	"git.home.luguber.info/inful/odata4gen/internal/observability"
)

// Trigger reasons passed to the run function.
const (
	TriggerStartup  = "startup"
	TriggerFile     = "file"
	TriggerInterval = "interval"
)

// DefaultDebounce is the quiet window after a file event.
const DefaultDebounce = 500 * time.Millisecond

// Func runs one generation.
type Func func(ctx context.Context, trigger string) error

// Options tunes a Watcher.
type Options struct {
	// Debounce is the quiet window for file events.
	Debounce time.Duration
	// Interval is the poll period for remote metadata. Required when the
	// location is remote.
	Interval time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Watcher reruns a Func on changes to one metadata location.
type Watcher struct {
	location string
	remote   bool
	run      Func
	opts     Options
	logger   *slog.Logger
	triggers chan string
}

// New validates the options for location.
func New(location string, run Func, opts Options) (*Watcher, error) {
	if location == "" {
		return nil, ferrors.ConfigurationError("metadata location is required").Build()
	}
	if run == nil {
		return nil, ferrors.ValidationError("run function is required").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	remote := metadata.IsRemote(location)
	if remote && opts.Interval <= 0 {
		return nil, ferrors.ConfigurationError("an interval is required to watch remote metadata").
			WithContext("location", location).
			Build()
	}
	return &Watcher{
		location: location,
		remote:   remote,
		run:      run,
		opts:     opts,
		logger:   logger,
		triggers: make(chan string, 1),
	}, nil
}

// Run generates once, then on every trigger until ctx is done. Failed runs
// are logged; they do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	w.trigger(TriggerStartup)

	var (
		stop func()
		err  error
	)
	if w.remote {
		stop, err = w.startScheduler()
	} else {
		stop, err = w.startFileWatch(ctx)
	}
	if err != nil {
		return err
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-w.triggers:
			w.execute(ctx, reason)
		}
	}
}

// trigger queues a run unless one is already pending.
func (w *Watcher) trigger(reason string) {
	select {
	case w.triggers <- reason:
	default:
	}
}

func (w *Watcher) execute(ctx context.Context, reason string) {
	ctx = observability.WithTrigger(ctx, reason)
	logger := observability.Logger(ctx, w.logger)
	start := time.Now()
	logger.LogAttrs(ctx, slog.LevelInfo, "Regenerating", logfields.Location(w.location))

	if err := w.run(ctx, reason); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "Regeneration failed", logfields.Error(err))
		return
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Regeneration finished",
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

func (w *Watcher) startScheduler() (func(), error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.trigger, TriggerInterval),
		gocron.WithName("metadata-poll"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create poll job: %w", err)
	}

	w.logger.Info("Polling remote metadata", logfields.Location(w.location), slog.Duration("interval", w.opts.Interval))
	s.Start()
	return func() {
		if err := s.Shutdown(); err != nil {
			w.logger.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}, nil
}

func (w *Watcher) startFileWatch(ctx context.Context) (func(), error) {
	path, err := filepath.Abs(metadata.LocalPath(w.location))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve metadata path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// The directory survives editors that replace the file on save.
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.logger.Info("Watching metadata file", logfields.Path(path))
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.watchLoop(ctx, fw, filepath.Base(path))
	}()

	return func() {
		if err := fw.Close(); err != nil {
			w.logger.Warn("Failed to close file watcher", logfields.Error(err))
		}
		<-done
	}, nil
}

func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher, name string) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Metadata file changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.opts.Debounce, func() { w.trigger(TriggerFile) })
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}
