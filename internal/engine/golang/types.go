package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"
)

// primitive maps EDM primitive types to Go types.
var primitive = map[string]func() *jen.Statement{
	"Edm.String":         func() *jen.Statement { return jen.String() },
	"Edm.Boolean":        func() *jen.Statement { return jen.Bool() },
	"Edm.Byte":           func() *jen.Statement { return jen.Uint8() },
	"Edm.SByte":          func() *jen.Statement { return jen.Int8() },
	"Edm.Int16":          func() *jen.Statement { return jen.Int16() },
	"Edm.Int32":          func() *jen.Statement { return jen.Int32() },
	"Edm.Int64":          func() *jen.Statement { return jen.Int64() },
	"Edm.Single":         func() *jen.Statement { return jen.Float32() },
	"Edm.Double":         func() *jen.Statement { return jen.Float64() },
	"Edm.Decimal":        func() *jen.Statement { return jen.Qual("encoding/json", "Number") },
	"Edm.Guid":           func() *jen.Statement { return jen.String() },
	"Edm.Binary":         func() *jen.Statement { return jen.Index().Byte() },
	"Edm.DateTimeOffset": func() *jen.Statement { return jen.Qual("time", "Time") },
	"Edm.DateTime":       func() *jen.Statement { return jen.Qual("time", "Time") },
	"Edm.Date":           func() *jen.Statement { return jen.String() },
	"Edm.TimeOfDay":      func() *jen.Statement { return jen.String() },
	"Edm.Duration":       func() *jen.Statement { return jen.String() },
	"Edm.Time":           func() *jen.Statement { return jen.String() },
}

// referenceTypes are never wrapped in a pointer when nullable.
var referenceTypes = map[string]bool{
	"Edm.String":    true,
	"Edm.Binary":    true,
	"Edm.Guid":      true,
	"Edm.Date":      true,
	"Edm.Duration":  true,
	"Edm.TimeOfDay": true,
	"Edm.Time":      true,
}

type typeKind int

const (
	kindUnknown typeKind = iota
	kindPrimitive
	kindEntity
	kindComplex
	kindEnum
)

// collectionOf returns the element type of "Collection(X)".
func collectionOf(t string) (string, bool) {
	if strings.HasPrefix(t, "Collection(") && strings.HasSuffix(t, ")") {
		return t[len("Collection(") : len(t)-1], true
	}
	return t, false
}
