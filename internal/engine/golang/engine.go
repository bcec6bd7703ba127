// Package golang is the built-in engine. It emits a Go client package with
// jennifer and formats it with gofumpt.
package golang

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dave/jennifer/jen"
	"mvdan.cc/gofumpt/format"

	"git.home.luguber.info/inful/odata4gen/internal/engine"
)

// Engine generates Go client code.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns the Go engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return "go" }

func (e *Engine) Extension() string { return "go" }

// Generate reads the metadata document at cfg.MetadataPath and returns the
// generated package. Unknown types and unexpected elements become
// diagnostics; unreadable documents and unformattable output are errors.
func (e *Engine) Generate(ctx context.Context, cfg engine.Config) (*engine.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := parseDocument(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}
	m := buildModel(doc, cfg)

	if !cfg.IgnoreUnexpectedElements {
		names, err := unexpectedElements(cfg.MetadataPath)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			m.diags = append(m.diags, engine.Diagnostic{
				Severity: engine.SeverityError,
				Element:  n,
				Message:  "unexpected element",
			})
		}
	}

	src, err := formatFile(m.renderMain(!cfg.GenerateMultipleFiles))
	if err != nil {
		return nil, err
	}
	out := &engine.Output{Source: src}

	if cfg.GenerateMultipleFiles {
		em := &fileEmitter{}
		names := newFileNamer(cfg.ServiceName+"."+e.Extension(), cfg.MetadataRelativePath)
		for _, ti := range m.types {
			f := m.newFile()
			m.renderType(f, ti)
			content, err := formatFile(f)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ti.qualified, err)
			}
			name, renamed := names.name(ti.goName)
			if renamed {
				m.diags = append(m.diags, engine.Diagnostic{
					Severity: engine.SeverityWarning,
					Element:  ti.qualified,
					Message:  fmt.Sprintf("type file written as %s to keep generated file names distinct", name),
				})
			}
			em.files = append(em.files, typeFile{name: name, content: content})
		}
		out.Emitter = em
	}

	out.Diagnostics = m.diags
	e.logger.DebugContext(ctx, "Go client generated",
		slog.String("package", m.pkg),
		slog.Int("types", len(m.types)),
		slog.Int("diagnostics", len(m.diags)))
	return out, nil
}

func formatFile(f *jen.File) ([]byte, error) {
	src, err := render(f)
	if err != nil {
		return nil, err
	}
	formatted, err := format.Source(src, format.Options{})
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return formatted, nil
}
