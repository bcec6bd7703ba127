// Package engine defines the boundary to code generation engines. An engine
// turns a normalized metadata document into client source text; the
// orchestrator owns everything around it (acquisition, file output, plugins).
package engine

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/odata4gen/internal/config"
)

// Config is the engine's copy of the generation settings.
type Config struct {
	// MetadataLocation is the normalized location the document came from.
	MetadataLocation string
	// MetadataPath is the normalized document in the output directory.
	MetadataPath string
	// MetadataRelativePath is MetadataPath relative to the output directory.
	MetadataRelativePath string
	// ServiceName is the base name of the output files.
	ServiceName string

	UseTracking              bool
	IgnoreUnexpectedElements bool
	EnableNamingAlias        bool
	NamespacePrefix          string
	MakeTypesInternal        bool
	GenerateMultipleFiles    bool

	ExcludedOperationImports []string
	ExcludedBoundOperations  []string
	ExcludedSchemaTypes      []string

	CustomHTTPHeaders   []string
	Proxy               *config.Proxy
	CustomContainerName string
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a non-fatal problem reported by an engine.
type Diagnostic struct {
	Severity Severity
	Message  string
	// Element names the schema element concerned, if any.
	Element string
}

func (d Diagnostic) String() string {
	if d.Element == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Element, d.Message)
}

// Writer is the part of the output manager available to emitters.
type Writer interface {
	WriteBytes(name string, content []byte, destination string) error
}

// MultiFileEmitter writes supplementary per-type files.
type MultiFileEmitter interface {
	Emit(ctx context.Context, w Writer, outDir string) error
}

// Output is the result of one engine invocation.
type Output struct {
	Source      []byte
	Diagnostics []Diagnostic
	// Emitter is set when the engine produced per-type files.
	Emitter MultiFileEmitter
}

// HasErrors reports whether any diagnostic has error severity.
func (o *Output) HasErrors() bool {
	for _, d := range o.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Engine generates client source from a normalized metadata document.
// A returned error is fatal for the run; diagnostics are not.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string
	// Extension is the file extension of the generated source, without dot.
	Extension() string
	Generate(ctx context.Context, cfg Config) (*Output, error)
}
