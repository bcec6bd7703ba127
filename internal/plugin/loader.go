package plugin

import (
	"fmt"
	"log/slog"
	goplugin "plugin"
	"strings"
	"unicode"

	api "git.home.luguber.info/inful/odata4gen/pkg/plugin"
)

// Loader resolves a type name inside a plugin module to a factory.
type Loader interface {
	Load(modulePath, typeName string) (Factory, error)
}

// RegistryLoader resolves types from a registry only. The module file is
// not opened; the host has already checked that it exists.
type RegistryLoader struct {
	Registry *Registry
}

func (l RegistryLoader) Load(_ string, typeName string) (Factory, error) {
	if f, ok := registryOrDefault(l.Registry).Lookup(typeName); ok {
		return f, nil
	}
	return nil, fmt.Errorf("no plugin type %s registered", typeName)
}

// SharedObjectLoader opens modules built with -buildmode=plugin. Types
// already in the registry, such as compiled-in plugins, resolve without
// opening the module. Otherwise factories registered by the module's init
// take precedence over exported symbols.
type SharedObjectLoader struct {
	Registry *Registry
}

func (l SharedObjectLoader) Load(modulePath, typeName string) (Factory, error) {
	reg := registryOrDefault(l.Registry)
	if f, ok := reg.Lookup(typeName); ok {
		return f, nil
	}

	p, err := goplugin.Open(modulePath)
	if err != nil {
		return nil, fmt.Errorf("open plugin module: %w", err)
	}
	if f, ok := reg.Lookup(typeName); ok {
		return f, nil
	}

	for _, name := range symbolNames(typeName) {
		sym, err := p.Lookup(name)
		if err != nil {
			continue
		}
		f, ok := asFactory(sym)
		if !ok {
			return nil, fmt.Errorf("symbol %s has type %T, not a plugin factory", name, sym)
		}
		return f, nil
	}
	return nil, fmt.Errorf("module does not export %s", strings.Join(symbolNames(typeName), " or "))
}

func registryOrDefault(r *Registry) *Registry {
	if r == nil {
		return api.DefaultRegistry()
	}
	return r
}

// symbolNames lists the exported symbols that may hold the factory for
// typeName.
func symbolNames(typeName string) []string {
	exported := []rune(typeName)
	exported[0] = unicode.ToUpper(exported[0])
	name := string(exported)
	return []string{"New" + name, name}
}

func asFactory(sym goplugin.Symbol) (Factory, bool) {
	switch f := sym.(type) {
	case func(*slog.Logger, *Config) (Plugin, error):
		return f, true
	case *Factory:
		return *f, *f != nil
	case *func(*slog.Logger, *Config) (Plugin, error):
		return *f, *f != nil
	default:
		return nil, false
	}
}
