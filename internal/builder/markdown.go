package builder

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Converter turns rich markup into output markup. A Generator with a nil
// Converter treats rich-text conversion as unavailable.
type Converter interface {
	Convert(source []byte) (string, error)
}

// ErrConverterUnavailable is reported when a rich-markup file is read and no
// converter is configured.
var ErrConverterUnavailable = errors.New("markdown converter unavailable")

// Markdown engine names accepted by NewConverter.
const (
	EngineGoldmark    = "goldmark"
	EngineBlackfriday = "blackfriday"
	EngineNone        = "none"
)

var markdownExtensions = map[string]bool{
	".md": true, ".mkd": true, ".mkdn": true, ".mdown": true, ".markdown": true,
}

// IsMarkdown reports whether path carries one of the rich-markup extensions.
func IsMarkdown(path string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(path))]
}

// ConverterOptions controls converter output.
type ConverterOptions struct {
	// Unsafe disables HTML sanitization of the converted output.
	Unsafe bool
}

// NewConverter returns the converter for engine. EngineNone yields a nil
// Converter, which makes every markdown file fall back to its plain text.
func NewConverter(engine string, opts ConverterOptions) (Converter, error) {
	switch strings.ToLower(engine) {
	case "", EngineGoldmark:
		return NewGoldmarkConverter(opts), nil
	case EngineBlackfriday:
		return NewBlackfridayConverter(opts), nil
	case EngineNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown markdown engine %q", engine)
	}
}

type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer(opts ConverterOptions) sanitizer {
	if opts.Unsafe {
		return sanitizer{}
	}
	return sanitizer{policy: bluemonday.UGCPolicy()}
}

func (s sanitizer) apply(out []byte) string {
	if s.policy == nil {
		return string(out)
	}
	return string(s.policy.SanitizeBytes(out))
}

// GoldmarkConverter renders CommonMark + GFM with goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
	sanitizer
}

// NewGoldmarkConverter builds the default converter.
func NewGoldmarkConverter(opts ConverterOptions) *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newContentLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			// Raw HTML in content passes through; the sanitizer decides what survives.
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md, sanitizer: newSanitizer(opts)}
}

func (c *GoldmarkConverter) Convert(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	return c.apply(buf.Bytes()), nil
}

// BlackfridayConverter renders markdown with blackfriday's common extensions.
// It does not rewrite content links.
type BlackfridayConverter struct {
	extensions blackfriday.Extensions
	sanitizer
}

func NewBlackfridayConverter(opts ConverterOptions) *BlackfridayConverter {
	return &BlackfridayConverter{
		extensions: blackfriday.CommonExtensions,
		sanitizer:  newSanitizer(opts),
	}
}

func (c *BlackfridayConverter) Convert(source []byte) (string, error) {
	out := blackfriday.Run(source, blackfriday.WithExtensions(c.extensions))
	return c.apply(out), nil
}
