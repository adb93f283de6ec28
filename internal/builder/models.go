// internal/builder/models.go
package builder

import "log/slog"

// Generator runs the content pipeline: reading content files, rendering pages
// and lists, and writing them out. It holds no state between calls, so one
// Generator can serve any number of builds.
type Generator struct {
	converter Converter
	logger    *slog.Logger
}

// NewGenerator returns a Generator that converts markdown with converter.
// converter may be nil; markdown bodies are then kept as plain text.
func NewGenerator(converter Converter, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{converter: converter, logger: logger}
}

// BuildOptions are the per-run switches the CLI hands to BuildSite.
type BuildOptions struct {
	Unsafe   bool
	Markdown string
}

// BuildStats counts what one BuildSite run wrote.
type BuildStats struct {
	Pages int // flat pages, including the home page
	Posts int // section posts
	Lists int // index lists and feeds
}

// Total is the number of files written.
func (s BuildStats) Total() int {
	return s.Pages + s.Posts + s.Lists
}
