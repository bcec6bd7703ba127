package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/odata4gen/internal/util/sets"
)

// File is the on-disk YAML form of a generation configuration. Unset fields
// leave the defaults untouched.
type File struct {
	Metadata                 string      `yaml:"metadata"`
	UseTracking              *bool       `yaml:"use_tracking,omitempty"`
	IgnoreUnexpectedElements *bool       `yaml:"ignore_unexpected_elements,omitempty"`
	EnableNamingAlias        *bool       `yaml:"naming_alias,omitempty"`
	NamespacePrefix          string      `yaml:"namespace_prefix,omitempty"`
	Internal                 bool        `yaml:"internal,omitempty"`
	MultipleFiles            bool        `yaml:"multiple_files,omitempty"`
	Exclude                  ExcludeFile `yaml:"exclude,omitempty"`
	Headers                  []string    `yaml:"headers,omitempty"`
	Proxy                    *Proxy      `yaml:"proxy,omitempty"`
	Container                string      `yaml:"container,omitempty"`
	OutputDirectory          string      `yaml:"output_directory,omitempty"`
	WorkDirectory            string      `yaml:"work_directory,omitempty"`
	Settings                 *Settings   `yaml:"settings,omitempty"`
	Plugins                  []string    `yaml:"plugins,omitempty"`
	Fetch                    FetchFile   `yaml:"fetch,omitempty"`
	PluginTimeout            string      `yaml:"plugin_timeout,omitempty"`
}

// ExcludeFile lists the names the engine must skip.
type ExcludeFile struct {
	OperationImports []string `yaml:"operation_imports,omitempty"`
	BoundOperations  []string `yaml:"bound_operations,omitempty"`
	SchemaTypes      []string `yaml:"schema_types,omitempty"`
}

// FetchFile tunes metadata retrieval.
type FetchFile struct {
	Timeout   string `yaml:"timeout,omitempty"`
	Retries   int    `yaml:"retries,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
}

// envFiles are loaded, when present, before variables in the YAML are expanded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads environment variables from .env/.env.local. Existing
// process environment variables are not overwritten.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", "file", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "file", name)
	}
}

// LoadFile reads a YAML configuration file. ${VAR} references are expanded
// after .env files have been loaded.
func LoadFile(path string) (*File, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	return &f, nil
}

// ApplyTo copies the values set in the file onto g.
func (f *File) ApplyTo(g *Generation) error {
	if f.Metadata != "" {
		g.MetadataLocation = f.Metadata
	}
	if f.UseTracking != nil {
		g.UseTracking = *f.UseTracking
	}
	if f.IgnoreUnexpectedElements != nil {
		g.IgnoreUnexpectedElements = *f.IgnoreUnexpectedElements
	}
	if f.EnableNamingAlias != nil {
		g.EnableNamingAlias = *f.EnableNamingAlias
	}
	if f.NamespacePrefix != "" {
		g.NamespacePrefix = f.NamespacePrefix
	}
	g.MakeTypesInternal = g.MakeTypesInternal || f.Internal
	g.GenerateMultipleFiles = g.GenerateMultipleFiles || f.MultipleFiles

	addAll(&g.ExcludedOperationImports, f.Exclude.OperationImports)
	addAll(&g.ExcludedBoundOperations, f.Exclude.BoundOperations)
	addAll(&g.ExcludedSchemaTypes, f.Exclude.SchemaTypes)

	g.CustomHTTPHeaders = append(g.CustomHTTPHeaders, f.Headers...)
	if f.Proxy != nil {
		g.Proxy = f.Proxy
	}
	if f.Container != "" {
		g.CustomContainerName = f.Container
	}
	if f.OutputDirectory != "" {
		g.OutputDirectory = f.OutputDirectory
	}
	if f.WorkDirectory != "" {
		g.WorkDirectory = f.WorkDirectory
	}
	if f.Settings != nil {
		if g.Settings == nil {
			g.Settings = NewSettings()
		}
		g.Settings.Merge(f.Settings)
	}
	g.Plugins = append(g.Plugins, f.Plugins...)

	if f.Fetch.Timeout != "" {
		d, err := time.ParseDuration(f.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("invalid fetch timeout %q: %w", f.Fetch.Timeout, err)
		}
		g.Fetch.Timeout = d
	}
	if f.Fetch.Retries > 0 {
		g.Fetch.RetryMax = f.Fetch.Retries
	}
	if f.Fetch.UserAgent != "" {
		g.Fetch.UserAgent = f.Fetch.UserAgent
	}
	if f.PluginTimeout != "" {
		d, err := time.ParseDuration(f.PluginTimeout)
		if err != nil {
			return fmt.Errorf("invalid plugin timeout %q: %w", f.PluginTimeout, err)
		}
		g.PluginTimeout = d
	}
	return nil
}

func addAll(dst *sets.Set[string], names []string) {
	if len(names) == 0 {
		return
	}
	if *dst == nil {
		*dst = sets.New[string]()
	}
	for _, n := range names {
		(*dst).Add(n)
	}
}
