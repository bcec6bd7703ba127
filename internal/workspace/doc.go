// Package workspace manages the scratch directory of a generation run,
// supporting both ephemeral and persistent (fixed-path) modes.
//
// Ephemeral mode creates a uniquely named directory (e.g. odata4gen-123456)
// holding the normalized metadata document, removed after the run.
//
// Persistent mode uses a fixed directory path (e.g. ./.odata4gen/work) that
// survives the run so the normalized document can be inspected.
package workspace
