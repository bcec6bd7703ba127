package golang

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"

	"git.home.luguber.info/inful/odata4gen/internal/config"
	"git.home.luguber.info/inful/odata4gen/internal/output"
)

const generatedHeader = "Code generated by odata4gen " + output.VersionToken + ". DO NOT EDIT."

func (m *model) newFile() *jen.File {
	f := jen.NewFile(m.pkg)
	f.HeaderComment(generatedHeader)
	return f
}

// goType resolves a CSDL type reference to a Go type expression.
func (m *model) goType(owner string, p property) *jen.Statement {
	elem, many := collectionOf(p.Type)

	if prim, ok := primitive[elem]; ok {
		switch {
		case many:
			return jen.Index().Add(prim())
		case p.nullable() && !referenceTypes[elem]:
			return jen.Op("*").Add(prim())
		default:
			return prim()
		}
	}

	ti, ok := m.byName[elem]
	if !ok {
		m.warn(owner+"."+p.Name, "type %s is not generated, using json.RawMessage", elem)
		return jen.Qual("encoding/json", "RawMessage")
	}

	switch {
	case many && ti.entity && m.cfg.UseTracking:
		return jen.Id("Tracked").Types(jen.Id(ti.goName))
	case many:
		return jen.Index().Id(ti.goName)
	case ti.kind == kindEnum && !p.nullable():
		return jen.Id(ti.goName)
	default:
		// Single-valued structured values are pointers so self references
		// stay legal.
		return jen.Op("*").Id(ti.goName)
	}
}

func jsonTag(p property) map[string]string {
	name := p.Name
	if p.nullable() {
		name += ",omitempty"
	}
	return map[string]string{"json": name}
}

// renderStructured writes one struct per entity or complex type.
func (m *model) renderStructured(f *jen.File, ti *typeInfo) {
	st := ti.st
	kind := "complex"
	if ti.entity {
		kind = "entity"
	}

	var fields []jen.Code
	if st.BaseType != "" {
		if base, ok := m.byName[st.BaseType]; ok && base.st != nil {
			fields = append(fields, jen.Id(base.goName))
		} else {
			m.warn(ti.qualified, "base type %s is not generated", st.BaseType)
		}
	}
	for _, p := range st.Properties {
		fields = append(fields, jen.Id(m.names.field(p.Name)).Add(m.goType(ti.qualified, p)).Tag(jsonTag(p)))
	}
	for _, p := range st.NavigationProperties {
		p.Nullable = "true"
		fields = append(fields, jen.Id(m.names.field(p.Name)).Add(m.goType(ti.qualified, p)).Tag(jsonTag(p)))
	}
	if st.OpenType {
		fields = append(fields, jen.Id("DynamicProperties").Map(jen.String()).Qual("encoding/json", "RawMessage").Tag(map[string]string{"json": "-"}))
	}

	f.Commentf("%s is the %s %s type.", ti.goName, ti.qualified, kind)
	f.Type().Id(ti.goName).Struct(fields...)

	if len(st.Key) > 0 {
		keys := make([]jen.Code, 0, len(st.Key))
		for _, k := range st.Key {
			keys = append(keys, jen.Lit(k.Name))
		}
		f.Line()
		f.Commentf("KeyProperties lists the key properties of %s.", ti.goName)
		f.Func().Params(jen.Id(ti.goName)).Id("KeyProperties").Params().Index().String().Block(
			jen.Return(jen.Index().String().Values(keys...)),
		)
	}
}

func (m *model) renderEnum(f *jen.File, ti *typeInfo) {
	f.Commentf("%s is the %s enumeration.", ti.goName, ti.qualified)
	f.Type().Id(ti.goName).String()

	if len(ti.enum.Members) == 0 {
		return
	}
	members := make([]jen.Code, 0, len(ti.enum.Members))
	for _, mem := range ti.enum.Members {
		members = append(members, jen.Id(ti.goName+m.names.field(mem.Name)).Id(ti.goName).Op("=").Lit(mem.Name))
	}
	f.Line()
	f.Const().Defs(members...)
}

func (m *model) renderType(f *jen.File, ti *typeInfo) {
	if ti.kind == kindEnum {
		m.renderEnum(f, ti)
		return
	}
	m.renderStructured(f, ti)
}

// renderTracked emits the change-tracking collection used for navigation
// collections.
func renderTracked(f *jen.File) {
	t := jen.Id("Tracked").Types(jen.Id("T"))
	recv := func() *jen.Statement { return jen.Id("c").Op("*").Id("Tracked").Types(jen.Id("T")) }

	f.Comment("Tracked is a collection that records local modifications.")
	f.Type().Id("Tracked").Types(jen.Id("T").Any()).Struct(
		jen.Id("Items").Index().Id("T"),
		jen.Id("changed").Bool(),
	)
	f.Line()
	f.Comment("Add appends items and marks the collection as changed.")
	f.Func().Params(recv()).Id("Add").Params(jen.Id("items").Op("...").Id("T")).Block(
		jen.Id("c").Dot("Items").Op("=").Append(jen.Id("c").Dot("Items"), jen.Id("items").Op("...")),
		jen.Id("c").Dot("changed").Op("=").True(),
	)
	f.Line()
	f.Comment("Remove deletes the item at index i.")
	f.Func().Params(recv()).Id("Remove").Params(jen.Id("i").Int()).Block(
		jen.Id("c").Dot("Items").Op("=").Qual("slices", "Delete").Call(jen.Id("c").Dot("Items"), jen.Id("i"), jen.Id("i").Op("+").Lit(1)),
		jen.Id("c").Dot("changed").Op("=").True(),
	)
	f.Line()
	f.Func().Params(recv()).Id("Changed").Params().Bool().Block(
		jen.Return(jen.Id("c").Dot("changed")),
	)
	f.Line()
	f.Func().Params(jen.Id("c").Add(t.Clone())).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Return(jen.Qual("encoding/json", "Marshal").Call(jen.Id("c").Dot("Items"))),
	)
	f.Line()
	f.Func().Params(recv()).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Id("c").Dot("changed").Op("=").False(),
		jen.Return(jen.Qual("encoding/json", "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("c").Dot("Items"))),
	)
	f.Line()
}

// defaultHeaders parses the configured header lines, skipping bad ones.
func (m *model) defaultHeaders() jen.Dict {
	d := jen.Dict{}
	for _, line := range m.cfg.CustomHTTPHeaders {
		name, value, ok := config.SplitHeader(line)
		if !ok {
			m.warn("", "skipping malformed header %q", line)
			continue
		}
		d[jen.Lit(name)] = jen.Lit(value)
	}
	return d
}

func (m *model) renderContainer(f *jen.File) {
	name := m.containerName()
	ctor := "New" + upperFirst(name)
	if m.cfg.MakeTypesInternal {
		ctor = "new" + upperFirst(name)
	}
	recv := jen.Id("c").Op("*").Id(name)

	f.Commentf("%s is the entry point of the %s service.", name, m.qualifiedNamespace())
	f.Type().Id(name).Struct(
		jen.Id("BaseURL").String(),
		jen.Id("Headers").Map(jen.String()).String(),
	)
	f.Line()
	f.Commentf("%s returns a %s for the service rooted at baseURL.", ctor, name)
	f.Func().Id(ctor).Params(jen.Id("baseURL").String()).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
			jen.Id("BaseURL"): jen.Qual("strings", "TrimRight").Call(jen.Id("baseURL"), jen.Lit("/")),
			jen.Id("Headers"): jen.Map(jen.String()).String().Values(m.defaultHeaders()),
		})),
	)
	f.Line()

	f.Comment("EntitySet addresses an entity set of the service.")
	f.Type().Id("EntitySet").Types(jen.Id("T").Any()).Struct(
		jen.Id("Service").Op("*").Id(name),
		jen.Id("Path").String(),
	)
	f.Line()
	f.Comment("URL returns the absolute address of the set.")
	f.Func().Params(jen.Id("s").Id("EntitySet").Types(jen.Id("T"))).Id("URL").Params().String().Block(
		jen.Return(jen.Id("s").Dot("Service").Dot("BaseURL").Op("+").Lit("/").Op("+").Id("s").Dot("Path")),
	)

	if m.container == nil {
		return
	}

	for _, es := range m.container.EntitySets {
		ti, ok := m.byName[es.EntityType]
		if !ok {
			m.warn(m.container.Name+"."+es.Name, "entity type %s is not generated, set skipped", es.EntityType)
			continue
		}
		f.Line()
		f.Commentf("%s addresses the %s entity set.", m.names.field(es.Name), es.Name)
		f.Func().Params(recv.Clone()).Id(m.names.field(es.Name)).Params().Id("EntitySet").Types(jen.Id(ti.goName)).Block(
			jen.Return(jen.Id("EntitySet").Types(jen.Id(ti.goName)).Values(jen.Dict{
				jen.Id("Service"): jen.Id("c"),
				jen.Id("Path"):    jen.Lit(es.Name),
			})),
		)
	}

	for _, s := range m.container.Singletons {
		f.Line()
		f.Commentf("%sURL returns the address of the %s singleton.", m.names.field(s.Name), s.Name)
		f.Func().Params(recv.Clone()).Id(m.names.field(s.Name)+"URL").Params().String().Block(
			jen.Return(jen.Id("c").Dot("BaseURL").Op("+").Lit("/"+s.Name)),
		)
	}

	imports := append(append([]operationImport{}, m.container.FunctionImports...), m.container.ActionImports...)
	for _, imp := range imports {
		if contains(m.cfg.ExcludedOperationImports, imp.Name, m.container.Name+"."+imp.Name) {
			continue
		}
		target := imp.Function
		if target == "" {
			target = imp.Action
		}
		f.Line()
		f.Commentf("%sURL returns the address of the %s operation import (%s).", m.names.field(imp.Name), imp.Name, target)
		f.Func().Params(recv.Clone()).Id(m.names.field(imp.Name)+"URL").Params().String().Block(
			jen.Return(jen.Id("c").Dot("BaseURL").Op("+").Lit("/"+imp.Name)),
		)
	}
}

func (m *model) renderBound(f *jen.File) {
	if len(m.bound) == 0 {
		return
	}
	ops := append([]boundOperation(nil), m.bound...)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].qualified < ops[j].qualified })

	defs := make([]jen.Code, 0, len(ops))
	for _, op := range ops {
		defs = append(defs, jen.Id("Operation"+m.names.field(op.name)).Op("=").Lit(op.qualified))
	}
	f.Comment("Qualified names of the bound operations.")
	f.Const().Defs(defs...)
	f.Line()
}

// renderMain builds the primary source file. Types are included unless
// they go to separate files.
func (m *model) renderMain(withTypes bool) *jen.File {
	f := m.newFile()

	f.Const().Defs(
		jen.Comment("MetadataVersion is the generator version that produced this package."),
		jen.Id("MetadataVersion").Op("=").Lit(output.VersionToken),
		jen.Comment("MetadataFile is the metadata document this package was generated from."),
		jen.Id("MetadataFile").Op("=").Lit(m.cfg.MetadataRelativePath),
		jen.Comment("Namespace is the schema namespace of the service."),
		jen.Id("Namespace").Op("=").Lit(m.qualifiedNamespace()),
	)
	f.Line()

	m.renderBound(f)
	if m.cfg.UseTracking {
		renderTracked(f)
	}
	m.renderContainer(f)

	if withTypes {
		for _, ti := range m.types {
			f.Line()
			m.renderType(f, ti)
		}
	}
	return f
}

func render(f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
