package golang

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// namer derives Go identifiers from CSDL names.
type namer struct {
	alias    bool
	internal bool
}

// clean replaces runes that cannot appear in an identifier.
func clean(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func upperFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

func lowerFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToLower(r)) + s[i+len(string(r)):]
	}
	return s
}

// exported turns a CSDL name into an exported identifier. With aliasing the
// name is camelized (first_name becomes FirstName); without it only the
// first letter changes.
func (n namer) exported(name string) string {
	if n.alias {
		if c := inflect.Camelize(name); c != "" {
			name = c
		}
	}
	return upperFirst(clean(name))
}

// typeName names a generated type, honoring the internal visibility flag.
func (n namer) typeName(name string) string {
	id := n.exported(name)
	if n.internal {
		id = lowerFirst(id)
		if token.IsKeyword(id) || predeclared[id] {
			id += "_"
		}
	}
	return id
}

// field names stay exported so encoding/json can see them.
func (n namer) field(name string) string {
	return n.exported(name)
}

// packageName derives a package clause from a prefix or namespace.
func packageName(prefix, namespace string) string {
	source := prefix
	if source == "" {
		source = namespace
		if i := strings.LastIndex(source, "."); i >= 0 {
			source = source[i+1:]
		}
	}
	pkg := strings.ToLower(clean(strings.ReplaceAll(source, ".", "")))
	pkg = strings.Trim(pkg, "_")
	if pkg == "" || token.IsKeyword(pkg) || predeclared[pkg] {
		return "odata"
	}
	return pkg
}

var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "error": true, "string": true, "int": true,
	"int8": true, "int16": true, "int32": true, "int64": true, "uint": true, "uint8": true,
	"float32": true, "float64": true, "rune": true, "true": true, "false": true, "nil": true,
	"len": true, "cap": true, "new": true, "make": true, "append": true, "copy": true,
}
