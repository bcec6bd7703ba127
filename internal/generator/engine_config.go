package generator

import (
	"slices"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/engine"
	"git.home.luguber.info/inful/odata4gen/internal/util/sets"
)

// BuildEngineConfig copies the generation settings the engine needs.
// metadataPath is the normalized document in the output directory and
// relativePath its name relative to that directory.
func BuildEngineConfig(cfg *config.Generation, metadataPath, relativePath string) engine.Config {
	ec := engine.Config{
		MetadataLocation:         cfg.MetadataLocation,
		MetadataPath:             metadataPath,
		MetadataRelativePath:     relativePath,
		ServiceName:              cfg.BaseName(),
		UseTracking:              cfg.UseTracking,
		IgnoreUnexpectedElements: cfg.IgnoreUnexpectedElements,
		EnableNamingAlias:        cfg.EnableNamingAlias,
		NamespacePrefix:          cfg.NamespacePrefix,
		MakeTypesInternal:        cfg.MakeTypesInternal,
		GenerateMultipleFiles:    cfg.GenerateMultipleFiles,
		ExcludedOperationImports: sortedOrNil(cfg.ExcludedOperationImports),
		ExcludedBoundOperations:  sortedOrNil(cfg.ExcludedBoundOperations),
		ExcludedSchemaTypes:      sortedOrNil(cfg.ExcludedSchemaTypes),
		CustomHTTPHeaders:        slices.Clone(cfg.CustomHTTPHeaders),
		CustomContainerName:      cfg.CustomContainerName,
	}
	if cfg.Proxy != nil {
		p := *cfg.Proxy
		if p.Credentials != nil {
			creds := *p.Credentials
			p.Credentials = &creds
		}
		ec.Proxy = &p
	}
	return ec
}

func sortedOrNil(s sets.Set[string]) []string {
	if s.Len() == 0 {
		return nil
	}
	return sets.Sorted(s)
}
