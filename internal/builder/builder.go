// internal/builder/builder.go
package builder

import (
	"log/slog"
	"path/filepath"
	"time"

	"makesite/internal/config"
	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
	"makesite/internal/util"
)

// Layout files expected in the layout directory.
const (
	PageLayout     = "page.html"
	PostLayout     = "post.html"
	ListLayout     = "list.html"
	ItemLayout     = "item.html"
	FeedLayout     = "feed.xml"
	FeedItemLayout = "item.xml"
)

type layouts struct {
	page, post, list, item, feed, feedItem string
}

func loadLayouts(dir string) (layouts, error) {
	var l layouts
	for name, dst := range map[string]*string{
		PageLayout:     &l.page,
		PostLayout:     &l.post,
		ListLayout:     &l.list,
		ItemLayout:     &l.item,
		FeedLayout:     &l.feed,
		FeedItemLayout: &l.feedItem,
	} {
		path := filepath.Join(dir, name)
		text, err := util.ReadText(path)
		if err != nil {
			return layouts{}, ferrors.WrapError(err, ferrors.CategoryConfig, "cannot read layout").
				WithContext("path", path).Build()
		}
		*dst = text
	}

	// Posts and lists are shown inside the page layout. Placeholders the
	// inner layouts leave open are resolved when each page is rendered.
	l.post = Render(l.page, Params{KeyContent: l.post})
	l.list = Render(l.page, Params{KeyContent: l.list})
	return l, nil
}

// Run loads the parameters for cfg, prepares a Generator according to opts
// and builds the site.
func Run(cfg config.SiteConfig, paramsPath string, opts BuildOptions, logger *slog.Logger) (BuildStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine := cfg.Markdown
	if opts.Markdown != "" {
		engine = opts.Markdown
	}
	converter, err := NewConverter(engine, ConverterOptions{Unsafe: opts.Unsafe})
	if err != nil {
		return BuildStats{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid markdown engine").Build()
	}
	params, err := config.ResolveParams(cfg, paramsPath, time.Now())
	if err != nil {
		return BuildStats{}, err
	}
	return BuildSite(NewGenerator(converter, logger), cfg, params)
}

// BuildSite clears the output directory and renders the whole site into it:
// the home page, flat pages, then per section its posts, index list, RSS
// and Atom feeds. Sections without posts get no Atom feed.
func BuildSite(g *Generator, cfg config.SiteConfig, params Params) (BuildStats, error) {
	start := time.Now()
	var stats BuildStats

	if err := util.ClearDir(cfg.OutputDir); err != nil {
		return stats, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot clear output directory").
			WithContext("path", cfg.OutputDir).Build()
	}

	l, err := loadLayouts(cfg.LayoutDir)
	if err != nil {
		return stats, err
	}

	home, err := g.MakePages(
		filepath.Join(cfg.ContentDir, "_index.html"),
		filepath.Join(cfg.OutputDir, "index.html"),
		l.page, params)
	if err != nil {
		return stats, err
	}
	stats.Pages += len(home)

	pages, err := g.MakePages(
		filepath.Join(cfg.ContentDir, "[!_]*.html"),
		filepath.Join(cfg.OutputDir, "{{ slug }}", "index.html"),
		l.page, params)
	if err != nil {
		return stats, err
	}
	stats.Pages += len(pages)

	for _, section := range cfg.Sections {
		posts, lists, err := buildSection(g, cfg, section, l, params)
		if err != nil {
			return stats, err
		}
		stats.Posts += posts
		stats.Lists += lists
	}

	g.logger.Info("Site built",
		logfields.Path(cfg.OutputDir),
		logfields.Count(stats.Total()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return stats, nil
}

// buildSection returns the number of posts and list files it wrote.
func buildSection(g *Generator, cfg config.SiteConfig, section config.Section, l layouts, params Params) (int, int, error) {
	outDir := filepath.Join(cfg.OutputDir, section.Name)
	extra := params.Merge(Params{"blog": section.Name})

	posts, err := g.MakePages(
		filepath.Join(cfg.ContentDir, filepath.FromSlash(section.Glob)),
		filepath.Join(outDir, "{{ slug }}", "index.html"),
		l.post, extra)
	if err != nil {
		return 0, 0, err
	}
	g.logger.Debug("Section rendered", logfields.Section(section.Name), logfields.Count(len(posts)))

	posts = WithSummaries(posts, DefaultSummaryWords)
	listExtra := extra.Merge(Params{titleKey: section.Title})

	if err := g.MakeList(posts, filepath.Join(outDir, "index.html"), l.list, l.item, listExtra); err != nil {
		return 0, 0, err
	}
	if err := g.MakeList(posts, filepath.Join(outDir, "rss.xml"), l.feed, l.feedItem, listExtra); err != nil {
		return 0, 0, err
	}
	if len(posts) == 0 {
		return 0, 2, nil
	}
	feed := FeedOptions{
		Title:     "{{ title }} - {{ subtitle }}",
		Link:      "{{ site_url }}/{{ blog }}/",
		EntryLink: "{{ site_url }}/{{ blog }}/{{ slug }}/",
	}
	if err := g.MakeAtomFeed(posts, filepath.Join(outDir, "atom.xml"), feed, listExtra); err != nil {
		return 0, 0, err
	}
	return len(posts), 3, nil
}
