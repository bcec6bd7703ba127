// Package plugin loads and runs post-generation extensions.
//
// A plugin is named by a spec string "module,type[,arg...]". The module is a
// file relative to the working directory; the type selects a factory from
// the process-wide registry or a New<Type> symbol exported by the module.
// The contract extensions compile against lives in pkg/plugin.
package plugin

import (
	"git.home.luguber.info/inful/odata4gen/internal/config"
	api "git.home.luguber.info/inful/odata4gen/pkg/plugin"
)

// The host works in terms of the public contract.
type (
	Plugin       = api.Plugin
	Factory      = api.Factory
	ArgsReceiver = api.ArgsReceiver
	Config       = api.Config
	Registry     = api.Registry
)

// pluginConfig copies the parts of cfg that plugins may read.
func pluginConfig(cfg *config.Generation) *Config {
	if cfg == nil {
		return nil
	}
	pc := &Config{
		MetadataLocation:      cfg.MetadataLocation,
		OutputDirectory:       cfg.OutputDirectory,
		BaseName:              cfg.BaseName(),
		NamespacePrefix:       cfg.NamespacePrefix,
		CustomContainerName:   cfg.CustomContainerName,
		UseTracking:           cfg.UseTracking,
		MakeTypesInternal:     cfg.MakeTypesInternal,
		GenerateMultipleFiles: cfg.GenerateMultipleFiles,
		Verbose:               cfg.Verbose,
		Plugins:               append([]string(nil), cfg.Plugins...),
	}
	for _, key := range cfg.Settings.Keys() {
		value, _ := cfg.Settings.Get(key)
		pc.Settings = append(pc.Settings, api.Setting{Key: key, Value: value})
	}
	return pc
}
