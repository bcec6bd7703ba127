package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID         = "run_id"
	KeyStage         = "stage"
	KeyDurationMS    = "duration_ms"
	KeyPath          = "path"
	KeyLocation      = "location"
	KeyPlugin        = "plugin"
	KeySchemaVersion = "schema_version"
	KeyEngine        = "engine"
	KeyFiles         = "files"
	KeyTrigger       = "trigger"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Location(l string) slog.Attr { return slog.String(KeyLocation, l) }
func Plugin(spec string) slog.Attr { return slog.String(KeyPlugin, spec) }
func SchemaVersion(v string) slog.Attr { return slog.String(KeySchemaVersion, v) }
func Engine(name string) slog.Attr { return slog.String(KeyEngine, name) }
func Files(n int) slog.Attr { return slog.Int(KeyFiles, n) }
func Trigger(reason string) slog.Attr { return slog.String(KeyTrigger, reason) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
