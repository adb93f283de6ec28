// internal/scaffold/scaffold.go
package scaffold

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"makesite/internal/builder"
	"makesite/internal/config"
	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
	"makesite/internal/util"
)

// ArchetypeFile is read, relative to the site root, when new content is created.
const ArchetypeFile = "archetypes/default.md"

// PageSection names flat pages for CreateNewContent. They are written
// undated to the top of the content directory.
const PageSection = "page"

// CreateNewSite writes a complete starter site into dir: site.yaml, the six
// layouts, an archetype and sample content for the default sections. The
// next steps are printed to out.
func CreateNewSite(dir string, out io.Writer) error {
	slog.Info("Scaffolding new site", logfields.Path(dir))
	for name, text := range siteFiles() {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := util.WriteText(p, text); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write file").
				WithContext("path", p).Build()
		}
	}

	fmt.Fprintln(out, "Site scaffolded. You can now:")
	fmt.Fprintln(out, "  cd", dir)
	fmt.Fprintln(out, "  makesite build")
	fmt.Fprintln(out, "  makesite serve")
	return nil
}

func siteFiles() map[string]string {
	layout := config.Default().LayoutDir
	content := config.Default().ContentDir
	return map[string]string{
		"site.yaml":   siteYAML,
		ArchetypeFile: archetypeDefault,

		path.Join(layout, builder.PageLayout):     pageLayout,
		path.Join(layout, builder.PostLayout):     postLayout,
		path.Join(layout, builder.ListLayout):     listLayout,
		path.Join(layout, builder.ItemLayout):     itemLayout,
		path.Join(layout, builder.FeedLayout):     feedLayout,
		path.Join(layout, builder.FeedItemLayout): feedItemLayout,

		path.Join(content, "_index.html"):                         indexPage,
		path.Join(content, "about.html"):                          aboutPage,
		path.Join(content, "blog", "2018-01-01-proin-quam.md"):    firstPost,
		path.Join(content, "blog", "2018-01-02-vitae-ante.md"):    secondPost,
		path.Join(content, "news", "2018-01-05-site-launch.html"): newsItem,
	}
}

// CreateNewContent writes a new content file for title into section and
// returns its path. Section files are dated with now and take the extension
// of the section's glob; PageSection files are plain HTML pages. The body
// comes from the archetype under root, or a built-in one when root has none.
func CreateNewContent(cfg config.SiteConfig, root, section, title string, now time.Time) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", ferrors.ValidationError("title yields an empty slug").
			WithContext("title", title).Build()
	}

	var p string
	if section == PageSection {
		p = filepath.Join(cfg.ContentDir, slug+".html")
	} else {
		s, ok := findSection(cfg, section)
		if !ok {
			return "", ferrors.NotFoundError("unknown section").
				WithContext("section", section).Build()
		}
		dir, pattern := path.Split(s.Glob)
		ext := path.Ext(pattern)
		if ext == "" || strings.ContainsAny(ext, "*?[") {
			ext = ".md"
		}
		name := now.Format("2006-01-02") + "-" + slug + ext
		p = filepath.Join(cfg.ContentDir, filepath.FromSlash(dir), name)
	}
	p = filepath.Join(root, p)

	if _, err := os.Stat(p); err == nil {
		return "", ferrors.ValidationError("content file already exists").
			WithContext("path", p).Build()
	}

	archetype := archetypeDefault
	if text, err := util.ReadText(filepath.Join(root, filepath.FromSlash(ArchetypeFile))); err == nil {
		archetype = text
	}
	text := builder.Render(archetype, builder.Params{"title": title})

	if err := util.WriteText(p, text); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write content file").
			WithContext("path", p).Build()
	}
	slog.Info("Created content", logfields.Path(p), logfields.Section(section))
	return p, nil
}

func findSection(cfg config.SiteConfig, name string) (config.Section, bool) {
	for _, s := range cfg.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return config.Section{}, false
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, drops accents and joins the remaining
// alphanumeric runs with hyphens.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, title)
	if err != nil {
		s = title
	}
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

const siteYAML = `# Directories are relative to the directory makesite runs in.
content_dir: content
layout_dir: layout
output_dir: _site

# goldmark, blackfriday or none
markdown: goldmark

sections:
  - name: blog
    glob: blog/*.md
    title: Blog
  - name: news
    glob: news/*.html
    title: News

# Parameters available to every layout. params.json overrides these.
params:
  subtitle: Lorem Ipsum
  author: Admin
`

const archetypeDefault = `<!-- title: {{ title }} -->

Write something meaningful here.
`

const pageLayout = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ title }} - {{ subtitle }}</title>
  <link rel="alternate" type="application/rss+xml" title="Blog" href="{{ base_path }}/blog/rss.xml">
  <link rel="alternate" type="application/atom+xml" title="Blog" href="{{ base_path }}/blog/atom.xml">
  <style>
    body { font-family: sans-serif; max-width: 700px; margin: 2em auto; padding: 0 1em; line-height: 1.6; color: #222; }
    nav a { margin-right: 1em; }
    .meta { color: #777; font-size: 0.9em; }
    footer { margin-top: 3em; text-align: center; font-size: 0.9em; color: #555; }
  </style>
</head>
<body>
<nav>
  <a href="{{ base_path }}/">Home</a>
  <a href="{{ base_path }}/blog/">Blog</a>
  <a href="{{ base_path }}/news/">News</a>
  <a href="{{ base_path }}/about/">About</a>
</nav>
<main>
{{ content }}
</main>
<footer>&copy; {{ current_year }} {{ author }}</footer>
</body>
</html>
`

const postLayout = `<article>
  <h1>{{ title }}</h1>
  <p class="meta">Published on {{ date }} by <b>{{ author }}</b></p>
  {{ content }}
</article>
`

const listLayout = `<h1>{{ title }}</h1>
{{ content }}
`

const itemLayout = `<section>
  <h2><a href="{{ base_path }}/{{ blog }}/{{ slug }}/">{{ title }}</a></h2>
  <p class="meta">Published on {{ date }}</p>
  <p>{{ summary }} ...</p>
</section>
`

const feedLayout = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>{{ title }} - {{ subtitle }}</title>
<link>{{ site_url }}/</link>
<description>{{ title }} - {{ subtitle }}</description>
{{ content }}
</channel>
</rss>
`

const feedItemLayout = `<item>
<title>{{ title }}</title>
<link>{{ site_url }}/{{ blog }}/{{ slug }}/</link>
<guid>{{ site_url }}/{{ blog }}/{{ slug }}/</guid>
<pubDate>{{ rfc_2822_date }}</pubDate>
<description>{{ summary }}</description>
</item>
`

const indexPage = `<!-- title: Home -->
<p>Welcome to this site. Latest posts are on the <a href="blog/">blog</a>.</p>
`

const aboutPage = `<!-- title: About -->
<!-- render: yes -->
<p>This site is maintained by {{ author }}.</p>
`

const firstPost = `<!-- title: Proin Quam -->

Lorem ipsum dolor sit amet, consectetur adipiscing elit. Proin quam
ante, *vehicula* vel sollicitudin eget, suscipit sed lectus.

See also [the next post](2018-01-02-vitae-ante.md).
`

const secondPost = `<!-- title: Vitae Ante -->
<!-- tags: latin, filler -->

Vitae ante **mollis** tempor. Curabitur eget justo vitae elit
hendrerit faucibus.
`

const newsItem = `<!-- title: Site Launch -->
<p>The site is live.</p>
`
