package errors

import "errors"

// Kind names a precise failure of the generation pipeline. Each kind maps to a
// sentinel error so that errors.Is works through wrapping.
type Kind string

const (
	KindNone                 Kind = ""
	KindConfiguration        Kind = "ConfigurationError"
	KindMetadataFetch        Kind = "MetadataFetchError"
	KindEmptyMetadata        Kind = "EmptyMetadataError"
	KindUnsupportedSchema    Kind = "UnsupportedSchemaVersionError"
	KindGenerationEngine     Kind = "GenerationEngineError"
	KindFileWrite            Kind = "FileWriteError"
	KindMalformedPluginSpec  Kind = "MalformedPluginSpecError"
	KindPluginModuleNotFound Kind = "PluginModuleNotFoundError"
	KindPluginTypeNotFound   Kind = "PluginTypeNotFoundError"
	KindPluginInstantiation  Kind = "PluginInstantiationError"
	KindPluginExecution      Kind = "PluginExecutionError"
)

// Sentinel errors, one per Kind.
var (
	ErrConfiguration            = errors.New("configuration error")
	ErrMetadataFetch            = errors.New("metadata fetch error")
	ErrEmptyMetadata            = errors.New("empty metadata")
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")
	ErrGenerationEngine         = errors.New("generation engine error")
	ErrFileWrite                = errors.New("file write error")
	ErrMalformedPluginSpec      = errors.New("malformed plugin spec")
	ErrPluginModuleNotFound     = errors.New("plugin module not found")
	ErrPluginTypeNotFound       = errors.New("plugin type not found")
	ErrPluginInstantiation      = errors.New("plugin instantiation error")
	ErrPluginExecution          = errors.New("plugin execution error")
)

var kindSentinels = map[Kind]error{
	KindConfiguration:        ErrConfiguration,
	KindMetadataFetch:        ErrMetadataFetch,
	KindEmptyMetadata:        ErrEmptyMetadata,
	KindUnsupportedSchema:    ErrUnsupportedSchemaVersion,
	KindGenerationEngine:     ErrGenerationEngine,
	KindFileWrite:            ErrFileWrite,
	KindMalformedPluginSpec:  ErrMalformedPluginSpec,
	KindPluginModuleNotFound: ErrPluginModuleNotFound,
	KindPluginTypeNotFound:   ErrPluginTypeNotFound,
	KindPluginInstantiation:  ErrPluginInstantiation,
	KindPluginExecution:      ErrPluginExecution,
}

// Sentinel returns the sentinel error for the kind, or nil for KindNone.
func (k Kind) Sentinel() error {
	return kindSentinels[k]
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// KindOf returns the Kind of the first ClassifiedError in the chain, or KindNone.
func KindOf(err error) Kind {
	if classified, ok := AsClassified(err); ok {
		return classified.Kind()
	}
	return KindNone
}

// Convenience constructors for the pipeline failures.

// ConfigurationError reports missing or invalid caller input.
func ConfigurationError(message string) *ErrorBuilder {
	return ConfigError(message).WithKind(KindConfiguration)
}

// MetadataFetchError reports a failure retrieving the metadata document.
func MetadataFetchError(location string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryNetwork, "cannot access metadata").
		Fatal().
		WithKind(KindMetadataFetch).
		WithContext("location", location)
}

// EmptyMetadataError reports a metadata document without a root element.
func EmptyMetadataError(location string) *ErrorBuilder {
	return NewError(CategoryMetadata, "the metadata is an empty file").
		Fatal().
		WithKind(KindEmptyMetadata).
		WithContext("location", location)
}

// UnsupportedSchemaVersionError reports an envelope version the engine cannot process.
func UnsupportedSchemaVersionError(detected, supported string) *ErrorBuilder {
	return NewError(CategoryMetadata, "wrong edmx version "+detected).
		Fatal().
		WithKind(KindUnsupportedSchema).
		WithContext("detected", detected).
		WithContext("supported", supported)
}

// GenerationEngineError wraps a fatal failure raised by the code generation engine.
func GenerationEngineError(engine string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryGeneration, "code generation failed").
		Fatal().
		WithKind(KindGenerationEngine).
		WithContext("engine", engine)
}

// FileWriteError wraps a filesystem failure during a managed write.
func FileWriteError(path string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryFileSystem, "file write failed").
		Fatal().
		WithKind(KindFileWrite).
		WithContext("path", path)
}

// MalformedPluginSpecError reports a plugin spec without module and type fields.
func MalformedPluginSpecError(spec string) *ErrorBuilder {
	return NewError(CategoryPlugin, "incorrect plugin spec, expected module,type").
		Fatal().
		WithKind(KindMalformedPluginSpec).
		WithContext("spec", spec)
}

// PluginModuleNotFoundError reports a plugin module missing on disk.
func PluginModuleNotFoundError(spec, module string) *ErrorBuilder {
	return NewError(CategoryPlugin, "plugin module not found").
		Fatal().
		WithKind(KindPluginModuleNotFound).
		WithContext("spec", spec).
		WithContext("module", module)
}

// PluginTypeNotFoundError reports a module that does not provide the requested type.
func PluginTypeNotFoundError(spec, typeName string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryPlugin, "plugin type not found").
		Fatal().
		WithKind(KindPluginTypeNotFound).
		WithContext("spec", spec).
		WithContext("type", typeName)
}

// PluginInstantiationError reports a plugin factory that failed to construct an instance.
func PluginInstantiationError(spec string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryPlugin, "plugin creation failed").
		Fatal().
		WithKind(KindPluginInstantiation).
		WithContext("spec", spec)
}

// PluginExecutionError wraps a failure returned by a plugin's Execute.
func PluginExecutionError(spec string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryPlugin, "plugin execution failed").
		Fatal().
		WithKind(KindPluginExecution).
		WithContext("spec", spec)
}
