package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyTarget     = "target"
	KeyStep       = "step"
	KeyState      = "state"
	KeyCommand    = "command"
	KeyDir        = "dir"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyVersion    = "version"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyJobName    = "job_name"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr    { return slog.String(KeyRunID, id) }
func Target(name string) slog.Attr { return slog.String(KeyTarget, name) }
func Step(name string) slog.Attr   { return slog.String(KeyStep, name) }
func State(s string) slog.Attr     { return slog.String(KeyState, s) }
func Command(c string) slog.Attr   { return slog.String(KeyCommand, c) }
func Dir(d string) slog.Attr       { return slog.String(KeyDir, d) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr       { return slog.String(KeyURL, u) }
func Version(v string) slog.Attr   { return slog.String(KeyVersion, v) }
func ExitCode(code int) slog.Attr  { return slog.Int(KeyExitCode, code) }
func JobName(n string) slog.Attr   { return slog.String(KeyJobName, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
