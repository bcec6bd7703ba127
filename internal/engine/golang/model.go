package golang

import (
	"fmt"
	"slices"

	"git.home.luguber.info/inful/odata4gen/internal/engine"
)

// typeInfo is a schema type the emitter generates.
type typeInfo struct {
	qualified string
	goName    string
	kind      typeKind
	entity    bool
	st        *structuredType
	enum      *enumType
}

type boundOperation struct {
	qualified string
	name      string
	action    bool
}

// model is the resolved view of a document for one engine configuration.
type model struct {
	namespace string
	pkg       string
	byName    map[string]*typeInfo
	types     []*typeInfo
	container *entityContainer
	bound     []boundOperation
	diags     []engine.Diagnostic
	cfg       engine.Config
	names     namer
	usedNames map[string]string
}

func contains(list []string, values ...string) bool {
	for _, v := range values {
		if v != "" && slices.Contains(list, v) {
			return true
		}
	}
	return false
}

func (m *model) warn(element, format string, args ...any) {
	m.diags = append(m.diags, engine.Diagnostic{
		Severity: engine.SeverityWarning,
		Element:  element,
		Message:  fmt.Sprintf(format, args...),
	})
}

// claim records a generated identifier and reports a clash with an earlier one.
func (m *model) claim(goName, qualified string) bool {
	if other, ok := m.usedNames[goName]; ok {
		m.warn(qualified, "generated name %s already used by %s, type skipped", goName, other)
		return false
	}
	m.usedNames[goName] = qualified
	return true
}

func buildModel(doc *edmxDocument, cfg engine.Config) *model {
	m := &model{
		byName:    map[string]*typeInfo{},
		cfg:       cfg,
		names:     namer{alias: cfg.EnableNamingAlias, internal: cfg.MakeTypesInternal},
		usedNames: map[string]string{},
	}

	for si := range doc.DataServices.Schemas {
		s := &doc.DataServices.Schemas[si]
		if m.namespace == "" {
			m.namespace = s.Namespace
		}

		register := func(name string, ti *typeInfo) {
			ti.qualified = s.Namespace + "." + name
			if contains(cfg.ExcludedSchemaTypes, ti.qualified, name) {
				return
			}
			ti.goName = m.names.typeName(name)
			if !m.claim(ti.goName, ti.qualified) {
				return
			}
			m.types = append(m.types, ti)
			m.byName[ti.qualified] = ti
			if s.Alias != "" {
				m.byName[s.Alias+"."+name] = ti
			}
		}

		for i := range s.EnumTypes {
			register(s.EnumTypes[i].Name, &typeInfo{kind: kindEnum, enum: &s.EnumTypes[i]})
		}
		for i := range s.ComplexTypes {
			register(s.ComplexTypes[i].Name, &typeInfo{kind: kindComplex, st: &s.ComplexTypes[i]})
		}
		for i := range s.EntityTypes {
			register(s.EntityTypes[i].Name, &typeInfo{kind: kindEntity, entity: true, st: &s.EntityTypes[i]})
		}

		for _, ops := range []struct {
			list   []operation
			action bool
		}{{s.Functions, false}, {s.Actions, true}} {
			for _, op := range ops.list {
				if !op.IsBound {
					continue
				}
				qualified := s.Namespace + "." + op.Name
				if contains(cfg.ExcludedBoundOperations, qualified, op.Name) {
					continue
				}
				m.bound = append(m.bound, boundOperation{qualified: qualified, name: op.Name, action: ops.action})
			}
		}

		if m.container == nil && len(s.Containers) > 0 {
			m.container = &s.Containers[0]
		}
	}

	m.pkg = packageName(cfg.NamespacePrefix, m.namespace)
	return m
}

// qualifiedNamespace is the namespace the generated code reports, with the
// configured prefix applied.
func (m *model) qualifiedNamespace() string {
	if m.cfg.NamespacePrefix == "" {
		return m.namespace
	}
	if m.namespace == "" {
		return m.cfg.NamespacePrefix
	}
	return m.cfg.NamespacePrefix + "." + m.namespace
}

// containerName names the service entry point type. A clash with a schema
// type gets a "Client" suffix.
func (m *model) containerName() string {
	var name string
	switch {
	case m.cfg.CustomContainerName != "":
		name = m.names.typeName(m.cfg.CustomContainerName)
	case m.container != nil && m.container.Name != "":
		name = m.names.typeName(m.container.Name)
	default:
		name = m.names.typeName(m.cfg.ServiceName)
	}
	if _, taken := m.usedNames[name]; taken {
		name += "Client"
	}
	return name
}
