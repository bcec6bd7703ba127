package golang

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// The model below keeps only what the emitter needs. Element names are
// matched without namespace so every CSDL version decodes the same way.

type edmxDocument struct {
	XMLName      xml.Name `xml:"Edmx"`
	DataServices struct {
		Schemas []csdlSchema `xml:"Schema"`
	} `xml:"DataServices"`
}

type csdlSchema struct {
	Namespace    string            `xml:"Namespace,attr"`
	Alias        string            `xml:"Alias,attr"`
	EntityTypes  []structuredType  `xml:"EntityType"`
	ComplexTypes []structuredType  `xml:"ComplexType"`
	EnumTypes    []enumType        `xml:"EnumType"`
	Functions    []operation       `xml:"Function"`
	Actions      []operation       `xml:"Action"`
	Containers   []entityContainer `xml:"EntityContainer"`
}

type structuredType struct {
	Name                 string     `xml:"Name,attr"`
	BaseType             string     `xml:"BaseType,attr"`
	Abstract             bool       `xml:"Abstract,attr"`
	OpenType             bool       `xml:"OpenType,attr"`
	Key                  []keyRef   `xml:"Key>PropertyRef"`
	Properties           []property `xml:"Property"`
	NavigationProperties []property `xml:"NavigationProperty"`
}

type keyRef struct {
	Name string `xml:"Name,attr"`
}

type property struct {
	Name     string `xml:"Name,attr"`
	Type     string `xml:"Type,attr"`
	Nullable string `xml:"Nullable,attr"`
}

// nullable follows the CSDL default of true.
func (p property) nullable() bool {
	return !strings.EqualFold(p.Nullable, "false")
}

type enumType struct {
	Name           string       `xml:"Name,attr"`
	UnderlyingType string       `xml:"UnderlyingType,attr"`
	IsFlags        bool         `xml:"IsFlags,attr"`
	Members        []enumMember `xml:"Member"`
}

type enumMember struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value,attr"`
}

type operation struct {
	Name       string      `xml:"Name,attr"`
	IsBound    bool        `xml:"IsBound,attr"`
	Parameters []parameter `xml:"Parameter"`
	ReturnType *struct {
		Type string `xml:"Type,attr"`
	} `xml:"ReturnType"`
}

type parameter struct {
	Name string `xml:"Name,attr"`
	Type string `xml:"Type,attr"`
}

type entityContainer struct {
	Name            string            `xml:"Name,attr"`
	EntitySets      []entitySet       `xml:"EntitySet"`
	Singletons      []singleton       `xml:"Singleton"`
	FunctionImports []operationImport `xml:"FunctionImport"`
	ActionImports   []operationImport `xml:"ActionImport"`
}

type entitySet struct {
	Name       string `xml:"Name,attr"`
	EntityType string `xml:"EntityType,attr"`
}

type singleton struct {
	Name string `xml:"Name,attr"`
	Type string `xml:"Type,attr"`
}

type operationImport struct {
	Name     string `xml:"Name,attr"`
	Function string `xml:"Function,attr"`
	Action   string `xml:"Action,attr"`
}

// knownElements are the CSDL elements a schema may contain.
var knownElements = map[string]bool{
	"Edmx": true, "DataServices": true, "Reference": true, "Include": true, "IncludeAnnotations": true,
	"Schema": true, "EntityType": true, "ComplexType": true, "EnumType": true, "Member": true,
	"Key": true, "PropertyRef": true, "Property": true, "NavigationProperty": true,
	"ReferentialConstraint": true, "OnDelete": true, "TypeDefinition": true,
	"Function": true, "Action": true, "Parameter": true, "ReturnType": true,
	"EntityContainer": true, "EntitySet": true, "Singleton": true, "NavigationPropertyBinding": true,
	"FunctionImport": true, "ActionImport": true, "Term": true, "Annotations": true, "Annotation": true,
	"Collection": true, "Record": true, "PropertyValue": true, "String": true, "Bool": true, "Int": true,
	"EnumMember": true, "Path": true, "PropertyPath": true, "NavigationPropertyPath": true,
	"AnnotationPath": true, "Apply": true, "If": true, "Null": true, "LabeledElement": true,
	"Association": true, "AssociationSet": true, "End": true, "Principal": true, "Dependent": true,
	"Using": true, "Documentation": true, "Summary": true, "LongDescription": true,
	"Decimal": true, "Float": true, "Date": true, "DateTimeOffset": true, "Guid": true,
	"Duration": true, "TimeOfDay": true, "Binary": true, "And": true, "Or": true, "Not": true,
	"Eq": true, "Ne": true, "Gt": true, "Ge": true, "Lt": true, "Le": true, "Cast": true, "IsOf": true,
	"LabeledElementReference": true, "UrlRef": true,
}

func parseDocument(path string) (*edmxDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc edmxDocument
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &doc, nil
}

// unexpectedElements lists element names outside the CSDL vocabulary, in
// document order and without duplicates.
func unexpectedElements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := map[string]bool{}
	var out []string
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || knownElements[se.Name.Local] || seen[se.Name.Local] {
			continue
		}
		seen[se.Name.Local] = true
		out = append(out, se.Name.Local)
	}
}
