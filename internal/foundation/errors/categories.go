package errors

// ErrorCategory groups failures by the part of the pipeline that raised
// them. The CLI derives its exit code from the category.
type ErrorCategory string

const (
	// Caller input.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Metadata acquisition.
	CategoryNetwork  ErrorCategory = "network"
	CategoryMetadata ErrorCategory = "metadata"
	CategoryNotFound ErrorCategory = "not_found"

	// Code emission and extensions.
	CategoryGeneration ErrorCategory = "generation"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryPlugin     ErrorCategory = "plugin"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

var categoryExitCodes = map[ErrorCategory]int{
	CategoryValidation: ExitUsage,
	CategoryConfig:     ExitConfig,
	CategoryNetwork:    ExitExternal,
	CategoryMetadata:   ExitExternal,
	CategoryNotFound:   ExitExternal,
	CategoryGeneration: ExitGeneration,
	CategoryFileSystem: ExitGeneration,
	CategoryPlugin:     ExitPlugin,
	CategoryRuntime:    ExitPlugin,
	CategoryInternal:   ExitInternal,
}

// ExitCode is the process exit code for failures of this category.
func (c ErrorCategory) ExitCode() int {
	if code, ok := categoryExitCodes[c]; ok {
		return code
	}
	return ExitGeneral
}

// ErrorSeverity tells whether the run can continue.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells whether repeating the operation can succeed.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext names what a failure was about: the metadata location, the
// output path, the plugin spec.
type ErrorContext map[string]any

// Set stores value under key, allocating the map if needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext, 1)
	}
	c[key] = value
	return c
}

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
