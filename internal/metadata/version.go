package metadata

// SchemaVersion is the envelope version detected from the root element namespace.
type SchemaVersion int

const (
	VersionUnknown SchemaVersion = iota
	Version1
	Version2
	Version3
	Version4
)

// SupportedVersion is the only envelope version the engines accept.
const SupportedVersion = Version4

// envelopeNamespaces maps the known EDMX namespaces to their versions.
var envelopeNamespaces = map[string]SchemaVersion{
	"http://schemas.microsoft.com/ado/2007/06/edmx": Version1,
	"http://schemas.microsoft.com/ado/2008/10/edmx": Version2,
	"http://schemas.microsoft.com/ado/2009/11/edmx": Version3,
	"http://docs.oasis-open.org/odata/ns/edmx":      Version4,
}

// VersionForNamespace looks up an envelope namespace URI. Unknown namespaces
// yield VersionUnknown.
func VersionForNamespace(uri string) SchemaVersion {
	return envelopeNamespaces[uri]
}

func (v SchemaVersion) String() string {
	switch v {
	case Version1:
		return "1.0.0.0"
	case Version2:
		return "2.0.0.0"
	case Version3:
		return "3.0.0.0"
	case Version4:
		return "4.0.0.0"
	default:
		return "unknown"
	}
}

// Supported reports whether v is SupportedVersion.
func (v SchemaVersion) Supported() bool {
	return v == SupportedVersion
}
