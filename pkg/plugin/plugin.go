// Package plugin is the contract between odata4gen and post-generation
// extensions.
//
// An extension is a shared object built with -buildmode=plugin against this
// package. It either calls Register from init or exports a New<Type>
// symbol of type Factory. Plugins run in-process with full trust after all
// generated files are written.
package plugin

import (
	"context"
	"log/slog"
	"strings"
)

// Plugin is a post-generation step.
type Plugin interface {
	Execute(ctx context.Context) error
}

// Factory builds a plugin for one run. The logger is already scoped to the
// plugin spec.
type Factory func(logger *slog.Logger, cfg *Config) (Plugin, error)

// ArgsReceiver is implemented by plugins that accept the extra spec fields.
type ArgsReceiver interface {
	SetArgs(args []string)
}

// Setting is one key=value pair passed on the command line or in the
// configuration file.
type Setting struct {
	Key   string
	Value string
}

// Config is the view of a generation run handed to plugins. It is a copy;
// changes do not affect the run.
type Config struct {
	MetadataLocation string
	OutputDirectory  string
	// BaseName names the main source file and the metadata copy.
	BaseName string

	NamespacePrefix       string
	CustomContainerName   string
	UseTracking           bool
	MakeTypesInternal     bool
	GenerateMultipleFiles bool
	Verbose               bool

	Plugins  []string
	Settings []Setting
}

// Setting returns the value stored under key. Keys match case-insensitively.
func (c *Config) Setting(key string) string {
	if c == nil {
		return ""
	}
	for _, s := range c.Settings {
		if strings.EqualFold(s.Key, key) {
			return s.Value
		}
	}
	return ""
}
