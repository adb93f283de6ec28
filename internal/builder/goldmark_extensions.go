// internal/builder/goldmark_extensions.go
package builder

import (
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// contentLinkTransformer rewrites links between markdown content files to the
// address the site driver publishes them at. A post is written to
// <section>/<slug>/index.html, one directory deeper than its source, so a
// link to "2018-01-02-bar.md" becomes "../bar/".
type contentLinkTransformer struct{}

func newContentLinkTransformer() parser.ASTTransformer {
	return &contentLinkTransformer{}
}

func (t *contentLinkTransformer) Transform(node *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if dest, ok := contentLinkTarget(string(link.Destination)); ok {
			link.Destination = []byte(dest)
		}
		return ast.WalkContinue, nil
	})
}

// contentLinkTarget maps a relative link to a markdown file onto its
// published directory. Absolute, external and fragment-only links are kept.
func contentLinkTarget(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if !IsMarkdown(u.Path) {
		return "", false
	}

	dir, file := path.Split(u.Path)
	_, slug := splitDateSlug(strings.TrimSuffix(file, path.Ext(file)))
	out := path.Join("..", dir, slug) + "/"
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.Fragment
	}
	return out, true
}
