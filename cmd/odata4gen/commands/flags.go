package commands

import (
	"time"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	ferrors "git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/util/sets"
)

// GenerationFlags are shared by generate and watch.
type GenerationFlags struct {
	Metadata      string        `short:"m" help:"URI of the metadata document or a local file path"`
	NoTracking    bool          `short:"n" name:"no-tracking" help:"Disable entity and property tracking"`
	Namespace     string        `aliases:"ns" help:"Namespace prefix of the generated code"`
	NoAlias       bool          `name:"no-alias" aliases:"na" help:"Keep schema names as declared"`
	Internal      bool          `short:"i" help:"Generate unexported types"`
	Multiple      bool          `aliases:"mf" help:"Write one file per structured type"`
	Eoi           string        `name:"eoi" help:"Comma-separated operation imports to exclude"`
	Ebo           string        `name:"ebo" help:"Comma-separated bound operations to exclude"`
	Est           string        `name:"est" help:"Comma-separated schema types to exclude"`
	Container     string        `short:"c" help:"Custom container name, also the output file base name"`
	OutputDir     string        `short:"o" name:"outputdir" help:"Output directory, created if missing"`
	Proxy         string        `short:"p" help:"Proxy settings. Format: domain\\user:password@host:port"`
	Plugins       []string      `aliases:"pl" sep:"none" help:"Plugin as module,Type[,args...]; repeatable"`
	Header        []string      `sep:"none" help:"Extra HTTP header 'Name: Value'; repeatable"`
	Config        string        `help:"YAML configuration file; flags override its values"`
	MetricsFile   string        `name:"metrics-file" help:"Write Prometheus metrics to this file after each run"`
	FetchTimeout  time.Duration `name:"fetch-timeout" help:"Deadline for fetching remote metadata"`
	PluginTimeout time.Duration `name:"plugin-timeout" help:"Deadline for each plugin"`
	Retry         int           `help:"Retries for remote metadata" default:"-1"`
	WorkDir       string        `name:"work-dir" help:"Keep the normalized metadata in this directory"`
	Settings      []string      `arg:"" optional:"" help:"Plugin settings as key=value (use -- before --key=value forms)"`
}

// Build layers defaults, the optional config file, the flags and the
// positional settings, in that order.
func (f *GenerationFlags) Build(verbose bool) (*config.Generation, error) {
	cfg := config.Defaults()

	if f.Config != "" {
		file, err := config.LoadFile(f.Config)
		if err != nil {
			return nil, ferrors.ConfigurationError("cannot load configuration file").
				WithCause(err).
				WithContext("path", f.Config).
				Build()
		}
		if err := file.ApplyTo(cfg); err != nil {
			return nil, ferrors.ConfigurationError("invalid configuration file").
				WithCause(err).
				WithContext("path", f.Config).
				Build()
		}
	}

	if f.Metadata != "" {
		cfg.MetadataLocation = f.Metadata
	}
	if f.NoTracking {
		cfg.UseTracking = false
	}
	if f.Namespace != "" {
		cfg.NamespacePrefix = f.Namespace
	}
	if f.NoAlias {
		cfg.EnableNamingAlias = false
	}
	cfg.MakeTypesInternal = cfg.MakeTypesInternal || f.Internal
	cfg.GenerateMultipleFiles = cfg.GenerateMultipleFiles || f.Multiple

	mergeCSV(&cfg.ExcludedOperationImports, f.Eoi)
	mergeCSV(&cfg.ExcludedBoundOperations, f.Ebo)
	mergeCSV(&cfg.ExcludedSchemaTypes, f.Est)

	if f.Container != "" {
		cfg.CustomContainerName = f.Container
	}
	if f.OutputDir != "" {
		cfg.OutputDirectory = f.OutputDir
	}
	if f.WorkDir != "" {
		cfg.WorkDirectory = f.WorkDir
	}
	if f.Proxy != "" {
		proxy, err := config.ParseProxy(f.Proxy)
		if err != nil {
			return nil, err
		}
		cfg.Proxy = proxy
	}
	cfg.CustomHTTPHeaders = append(cfg.CustomHTTPHeaders, f.Header...)
	cfg.Plugins = append(cfg.Plugins, f.Plugins...)

	if f.FetchTimeout > 0 {
		cfg.Fetch.Timeout = f.FetchTimeout
	}
	if f.PluginTimeout > 0 {
		cfg.PluginTimeout = f.PluginTimeout
	}
	if f.Retry >= 0 {
		cfg.Fetch.RetryMax = f.Retry
	}
	cfg.Verbose = verbose

	settings, err := config.ParseSettings(f.Settings)
	if err != nil {
		return nil, err
	}
	cfg.Settings.Merge(settings)
	return cfg, nil
}

func mergeCSV(dst *sets.Set[string], list string) {
	if list == "" {
		return
	}
	if *dst == nil {
		*dst = sets.New[string]()
	}
	for name := range sets.FromCSV(list) {
		dst.Add(name)
	}
}
