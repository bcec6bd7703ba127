// Package errors provides the classified error primitives used across odata4gen.
//
// Every failure the generation pipeline can report is a ClassifiedError carrying
// a broad category (config, network, filesystem, plugin, ...), a severity, a retry
// hint, a free-form context map and a Kind naming the precise failure
// (MetadataFetchError, PluginTypeNotFoundError, ...). Kinds have sentinel values so
// callers can match them through any amount of wrapping:
//
//	if errors.Is(err, ferrors.ErrUnsupportedSchemaVersion) { ... }
//
// Errors are built with the fluent ErrorBuilder:
//
//	err := errors.NewError(errors.CategoryNetwork, "metadata fetch failed").
//		WithKind(errors.KindMetadataFetch).
//		WithContext("location", url).
//		WithCause(originalErr).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
