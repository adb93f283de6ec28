package builder

import (
	"strings"
	"time"

	atom "github.com/thomas11/atomgenerator"

	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
	"makesite/internal/util"
)

// FeedOptions holds the templates an Atom feed is assembled from. Each is
// rendered with extra overlaid by the entry's mapping (feed-level templates
// with extra alone).
type FeedOptions struct {
	Title     string // feed title, e.g. "{{ title }} - {{ subtitle }}"
	Link      string // feed home, e.g. "{{ site_url }}/{{ blog }}/"
	EntryLink string // per entry, e.g. "{{ site_url }}/{{ blog }}/{{ slug }}/"
}

// MakeAtomFeed writes an Atom document for items to dstTemplate rendered with
// extra. Entries keep the given order. The feed date is the newest entry date
// so an unchanged site produces an identical feed.
func (g *Generator) MakeAtomFeed(items []Params, dstTemplate string, opts FeedOptions, extra Params) error {
	dst := Render(dstTemplate, extra)

	feed := atom.Feed{
		Title:   Render(opts.Title, extra),
		Link:    Render(opts.Link, extra),
		PubDate: time.Unix(0, 0).UTC(),
	}
	feed.AddAuthor(atom.Author{
		Name: extra[authorKey],
		Uri:  extra[siteURLKey],
	})

	for _, item := range items {
		entry, err := atomEntry(extra.Merge(item), opts)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "cannot build feed entry").
				WithContext("path", dst).WithContext("slug", item[KeySlug]).Build()
		}
		if entry.PubDate.After(feed.PubDate) {
			feed.PubDate = entry.PubDate
		}
		feed.AddEntry(entry)
	}

	if errs := feed.Validate(); len(errs) > 0 {
		for _, e := range errs {
			g.logger.Warn("Atom feed is not valid", logfields.Path(dst), logfields.Error(e))
		}
		return ferrors.WrapError(errs[0], ferrors.CategoryBuild, "invalid atom feed").
			WithContext("path", dst).Build()
	}

	xml, err := feed.GenXml()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, "cannot generate atom feed").
			WithContext("path", dst).Build()
	}

	g.logger.Info("Rendering feed", logfields.Destination(dst), logfields.Count(len(items)))
	if err := util.WriteText(dst, string(xml)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write feed").
			WithContext("path", dst).Build()
	}
	return nil
}

const (
	titleKey   = "title"
	authorKey  = "author"
	siteURLKey = "site_url"
	tagsKey    = "tags"
)

func atomEntry(params Params, opts FeedOptions) (*atom.Entry, error) {
	date, err := time.Parse(dateLayout, params[KeyDate])
	if err != nil {
		return nil, err
	}
	title := params[titleKey]
	if title == "" {
		title = params[KeySlug]
	}

	e := &atom.Entry{
		Title:       title,
		Description: params[KeySummary],
		Link:        Render(opts.EntryLink, params),
		PubDate:     date,
		Content:     params[KeyContent],
	}
	for _, tag := range strings.Split(params[tagsKey], ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			e.AddCategory(atom.Category{Term: tag})
		}
	}
	return e, nil
}
