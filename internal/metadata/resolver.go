package metadata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/logfields"
	"git.home.luguber.info/inful/odata4gen/internal/metrics"
)

// Scratch creates the file the normalized document is written to.
type Scratch interface {
	CreateFile(pattern string) (*os.File, error)
}

// Result describes a resolved metadata document.
type Result struct {
	// Path of the normalized local copy.
	Path string
	// Version detected from the envelope namespace.
	Version SchemaVersion
	// Location after normalization.
	Location string
}

// Resolver acquires a metadata document and normalizes it to a local file.
type Resolver struct {
	baseClient *http.Client
	scratch    Scratch
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client whose transport, timeout and redirect
// policy are used for remote documents.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.baseClient = c
		}
	}
}

// WithScratch sets where normalized documents are written. Without it,
// files go to the system temp directory and the caller removes them.
func WithScratch(s Scratch) Option {
	return func(r *Resolver) { r.scratch = s }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver returns a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		baseClient: &http.Client{},
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type tempScratch struct{}

func (tempScratch) CreateFile(pattern string) (*os.File, error) {
	return os.CreateTemp("", pattern)
}

// Resolve normalizes cfg.MetadataLocation in place, retrieves the document
// and writes its root element subtree to a scratch file.
func (r *Resolver) Resolve(ctx context.Context, cfg *config.Generation) (Result, error) {
	if strings.TrimSpace(cfg.MetadataLocation) == "" {
		return Result{}, errors.ConfigurationError("metadata location is required").Build()
	}

	cfg.MetadataLocation = NormalizeLocation(cfg.MetadataLocation)
	location := cfg.MetadataLocation

	src, source, err := r.open(ctx, cfg)
	r.recorder.IncMetadataFetch(source, err == nil)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	scratch := r.scratch
	if scratch == nil {
		scratch = tempScratch{}
	}
	out, err := scratch.CreateFile("metadata-*.xml")
	if err != nil {
		return Result{}, errors.FileWriteError("metadata-*.xml", err).Build()
	}

	detected, err := normalize(src, out, out.Name(), location)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = errors.FileWriteError(out.Name(), closeErr).Build()
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return Result{}, err
	}

	r.logger.Info("Resolved metadata",
		logfields.Location(location),
		logfields.Path(out.Name()),
		logfields.SchemaVersion(detected.String()))

	return Result{Path: out.Name(), Version: detected, Location: location}, nil
}

func (r *Resolver) open(ctx context.Context, cfg *config.Generation) (io.ReadCloser, string, error) {
	location := cfg.MetadataLocation
	if IsRemote(location) {
		if cfg.Fetch.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Fetch.Timeout)
			body, err := r.openRemote(ctx, cfg)
			if err != nil {
				cancel()
				return nil, metrics.SourceRemote, err
			}
			return &cancelOnClose{ReadCloser: body, cancel: cancel}, metrics.SourceRemote, nil
		}
		body, err := r.openRemote(ctx, cfg)
		return body, metrics.SourceRemote, err
	}

	f, err := os.Open(LocalPath(location))
	if err != nil {
		return nil, metrics.SourceLocal, errors.MetadataFetchError(location, err).Build()
	}
	return f, metrics.SourceLocal, nil
}

// cancelOnClose releases the fetch deadline once the body has been read.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
