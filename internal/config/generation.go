package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/util/sets"
)

// DefaultServiceName is the base name of the output files when no custom
// container name is given.
const DefaultServiceName = "ODataService"

// Generation holds everything one generation run needs. The orchestrator
// treats it as read-only, except for MetadataLocation which the metadata
// resolver normalizes exactly once.
type Generation struct {
	MetadataLocation string

	UseTracking              bool
	IgnoreUnexpectedElements bool
	EnableNamingAlias        bool
	NamespacePrefix          string
	MakeTypesInternal        bool
	GenerateMultipleFiles    bool

	ExcludedOperationImports sets.Set[string]
	ExcludedBoundOperations  sets.Set[string]
	ExcludedSchemaTypes      sets.Set[string]

	// CustomHTTPHeaders holds "Name: Value" lines.
	CustomHTTPHeaders []string
	// Proxy is nil when requests go direct.
	Proxy *Proxy

	CustomContainerName string
	OutputDirectory     string
	// WorkDirectory keeps the normalized metadata after the run when set.
	WorkDirectory string

	Settings *Settings
	Plugins  []string

	Verbose       bool
	Fetch         FetchOptions
	PluginTimeout time.Duration
}

// FetchOptions tunes remote metadata retrieval.
type FetchOptions struct {
	Timeout   time.Duration
	RetryMax  int
	UserAgent string
}

// Defaults returns a configuration with the documented default toggles.
func Defaults() *Generation {
	return &Generation{
		UseTracking:              true,
		IgnoreUnexpectedElements: true,
		EnableNamingAlias:        true,
		ExcludedOperationImports: sets.New[string](),
		ExcludedBoundOperations:  sets.New[string](),
		ExcludedSchemaTypes:      sets.New[string](),
		OutputDirectory:          ".",
		Settings:                 NewSettings(),
	}
}

// BaseName is the custom container name, or DefaultServiceName.
func (g *Generation) BaseName() string {
	if name := strings.TrimSpace(g.CustomContainerName); name != "" {
		return name
	}
	return DefaultServiceName
}

// Setting returns a plugin setting by key.
func (g *Generation) Setting(key string) string {
	if g.Settings == nil {
		return ""
	}
	v, _ := g.Settings.Get(key)
	return v
}

// Validate checks the invariants that must hold before orchestration.
func (g *Generation) Validate() error {
	if strings.TrimSpace(g.MetadataLocation) == "" {
		return errors.ConfigurationError("metadata location is required").Build()
	}
	if strings.TrimSpace(g.OutputDirectory) == "" {
		return errors.ConfigurationError("output directory is required").Build()
	}
	if err := validateFileBase(g.CustomContainerName); err != nil {
		return err
	}
	for _, h := range g.CustomHTTPHeaders {
		if _, _, ok := SplitHeader(h); !ok {
			return errors.ConfigurationError("invalid custom header, expected 'Name: Value'").
				WithContext("header", h).
				Build()
		}
	}
	if g.Fetch.RetryMax < 0 {
		return errors.ConfigurationError("retry count must not be negative").Build()
	}
	return nil
}

const invalidFileChars = `/\:*?"<>|`

// validateFileBase rejects container names that cannot be used as a file
// name base on common filesystems.
func validateFileBase(name string) error {
	if name == "" {
		return nil
	}
	bad := name == "." || name == ".." || strings.ContainsAny(name, invalidFileChars)
	for _, r := range name {
		if r < 0x20 {
			bad = true
		}
	}
	if bad {
		return errors.ConfigurationError("container name is not a valid file name").
			WithContext("container", name).
			Build()
	}
	return nil
}

// SplitHeader splits a "Name: Value" line.
func SplitHeader(line string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}

// Clone returns a deep copy so a watched run can mutate MetadataLocation
// without touching the template.
func (g *Generation) Clone() *Generation {
	cp := *g
	cp.ExcludedOperationImports = g.ExcludedOperationImports.Clone()
	cp.ExcludedBoundOperations = g.ExcludedBoundOperations.Clone()
	cp.ExcludedSchemaTypes = g.ExcludedSchemaTypes.Clone()
	cp.CustomHTTPHeaders = append([]string(nil), g.CustomHTTPHeaders...)
	cp.Plugins = append([]string(nil), g.Plugins...)
	if g.Proxy != nil {
		p := *g.Proxy
		if g.Proxy.Credentials != nil {
			c := *g.Proxy.Credentials
			p.Credentials = &c
		}
		cp.Proxy = &p
	}
	if g.Settings != nil {
		cp.Settings = g.Settings.Clone()
	}
	return &cp
}
