package metadata

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
)

const xmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// normalize positions a reader on the first element of src, detects the
// envelope version from its namespace and re-encodes the element subtree to
// dst as UTF-8. Tokens are written back with the prefixes and attribute
// order of the input; the result is equivalent XML, not a byte copy.
// Failures writing dst are reported against dstName.
func normalize(src io.Reader, dst io.Writer, dstName, location string) (SchemaVersion, error) {
	dec := xml.NewDecoder(src)
	dec.CharsetReader = charset.NewReaderLabel

	var root xml.StartElement
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return VersionUnknown, errors.EmptyMetadataError(location).Build()
		}
		if err != nil {
			return VersionUnknown, errors.MetadataFetchError(location, fmt.Errorf("invalid metadata document: %w", err)).Build()
		}
		if se, ok := tok.(xml.StartElement); ok {
			root = se.Copy()
			break
		}
	}

	detected := VersionForNamespace(namespaceOf(root))

	w := bufio.NewWriter(dst)
	if _, err := w.WriteString(xmlHeader); err != nil {
		return detected, errors.FileWriteError(dstName, err).Build()
	}
	writeStart(w, root)

	depth := 1
	for depth > 0 {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return detected, errors.MetadataFetchError(location, fmt.Errorf("invalid metadata document: %w", io.ErrUnexpectedEOF)).Build()
		}
		if err != nil {
			return detected, errors.MetadataFetchError(location, fmt.Errorf("invalid metadata document: %w", err)).Build()
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			writeStart(w, t)
		case xml.EndElement:
			depth--
			_, _ = fmt.Fprintf(w, "</%s>", qualified(t.Name))
		case xml.CharData:
			_, _ = textEscaper.WriteString(w, string(t))
		case xml.Comment:
			_, _ = fmt.Fprintf(w, "<!--%s-->", t)
		case xml.ProcInst:
			_, _ = fmt.Fprintf(w, "<?%s %s?>", t.Target, t.Inst)
		case xml.Directive:
			_, _ = fmt.Fprintf(w, "<!%s>", t)
		}
	}

	if err := w.Flush(); err != nil {
		return detected, errors.FileWriteError(dstName, err).Build()
	}
	return detected, nil
}

// namespaceOf resolves the namespace URI of a raw start element from the
// xmlns declarations on the element itself.
func namespaceOf(se xml.StartElement) string {
	for _, a := range se.Attr {
		if se.Name.Space == "" && a.Name.Space == "" && a.Name.Local == "xmlns" {
			return a.Value
		}
		if se.Name.Space != "" && a.Name.Space == "xmlns" && a.Name.Local == se.Name.Space {
			return a.Value
		}
	}
	return ""
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeStart(w *bufio.Writer, se xml.StartElement) {
	_ = w.WriteByte('<')
	_, _ = w.WriteString(qualified(se.Name))
	for _, a := range se.Attr {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(qualified(a.Name))
		_, _ = w.WriteString(`="`)
		_, _ = attrEscaper.WriteString(w, a.Value)
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
}
