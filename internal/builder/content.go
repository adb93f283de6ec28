package builder

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
	"makesite/internal/util"
)

const (
	// DefaultDate is used for content files without a date prefix.
	DefaultDate = "1970-01-01"

	dateLayout    = "2006-01-02"
	rfc2822Layout = "Mon, 02 Jan 2006 15:04:05 +0000"
)

var (
	datedNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

	// headerPattern matches one <!-- key: value --> marker at the start of
	// the text together with the whitespace around it. '.' does not cross
	// newlines, so key and value stay on the marker's line.
	headerPattern = regexp.MustCompile(`^\s*<!--\s*(.+?)\s*:\s*(.+?)\s*-->\s*`)
)

// splitDateSlug splits a base name without extension into its date prefix
// and slug. Names without a prefix get DefaultDate.
func splitDateSlug(name string) (date, slug string) {
	if m := datedNamePattern.FindStringSubmatch(name); m != nil {
		return m[1], m[2]
	}
	return DefaultDate, name
}

// parseHeaders consumes leading header markers and returns them together with
// the remaining text.
func parseHeaders(text string) (Params, string) {
	headers := Params{}
	for {
		loc := headerPattern.FindStringSubmatchIndex(text)
		if loc == nil {
			return headers, text
		}
		headers[text[loc[2]:loc[3]]] = strings.TrimSpace(text[loc[4]:loc[5]])
		text = text[loc[1]:]
	}
}

// ReadContent parses one content file into its parameter mapping: date, slug,
// rfc_2822_date and content, plus every header the file declares.
//
// Files with a markdown extension have their body converted. When no
// converter is configured or conversion fails, a warning naming the file is
// logged and the plain text is kept.
func (g *Generator) ReadContent(path string) (Params, error) {
	text, err := util.ReadText(path)
	if err != nil {
		b := ferrors.FileSystemError("cannot read content file")
		if errors.Is(err, os.ErrNotExist) {
			b = ferrors.NotFoundError("content file not found")
		}
		return nil, b.WithContext("path", path).WithCause(err).Build()
	}

	base := filepath.Base(path)
	date, slug := splitDateSlug(strings.TrimSuffix(base, filepath.Ext(base)))
	content := Params{KeyDate: date, KeySlug: slug}

	headers, body := parseHeaders(text)
	for k, v := range headers {
		content[k] = v
	}

	day, err := time.Parse(dateLayout, content[KeyDate])
	if err != nil {
		return nil, ferrors.ValidationError("invalid content date").
			WithContext("path", path).WithCause(err).Build()
	}
	content[KeyRFC2822Date] = day.Format(rfc2822Layout)

	body = strings.TrimSpace(body)
	if IsMarkdown(path) {
		body = g.convert(path, body)
	}
	content[KeyContent] = body
	return content, nil
}

func (g *Generator) convert(path, body string) string {
	if g.converter == nil {
		g.logger.Warn("Cannot render Markdown", logfields.Path(path), logfields.Error(ErrConverterUnavailable))
		return body
	}
	out, err := g.converter.Convert([]byte(body))
	if err != nil {
		g.logger.Warn("Cannot render Markdown", logfields.Path(path), logfields.Error(err))
		return body
	}
	return out
}
