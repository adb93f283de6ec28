package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath        = "path"
	KeySource      = "source"
	KeyDestination = "destination"
	KeySection     = "section"
	KeyCount       = "count"
	KeyDurationMS  = "duration_ms"
	KeyPort        = "port"
	KeyError       = "error"
)

func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr        { return slog.String(KeySource, p) }
func Destination(p string) slog.Attr   { return slog.String(KeyDestination, p) }
func Section(s string) slog.Attr       { return slog.String(KeySection, s) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Port(port int) slog.Attr          { return slog.Int(KeyPort, port) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
