package builder

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"

	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
	"makesite/internal/util"
)

// MakePages renders every content file matching srcGlob through layout and
// writes each one to dstTemplate rendered with that file's parameters.
//
// The per-file parameters are extra overlaid with the file's own mapping.
// When the file's render header or extra's render entry is "yes", the body
// itself is rendered with those parameters before anything else uses it.
//
// The returned mappings are sorted newest first; files with equal dates keep
// their match order.
func (g *Generator) MakePages(srcGlob, dstTemplate, layout string, extra Params) ([]Params, error) {
	paths, err := glob(srcGlob)
	if err != nil {
		return nil, err
	}

	items := make([]Params, 0, len(paths))
	for _, src := range paths {
		content, err := g.ReadContent(src)
		if err != nil {
			return nil, err
		}

		page := extra.Merge(content)
		if affirmative(content[KeyRender]) || affirmative(extra[KeyRender]) {
			page[KeyContent] = Render(page[KeyContent], page)
		}

		dst := Render(dstTemplate, page)
		output := Render(layout, page)
		g.logger.Info("Rendering", logfields.Source(src), logfields.Destination(dst))
		if err := util.WriteText(dst, output); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write page").
				WithContext("path", dst).Build()
		}
		items = append(items, page)
	}

	slices.SortStableFunc(items, func(a, b Params) int {
		return cmp.Compare(b[KeyDate], a[KeyDate])
	})
	return items, nil
}

// glob resolves a shell-style pattern. Shell negated classes ([!...]) are
// accepted alongside Go's [^...]. No match is an empty result.
func glob(pattern string) ([]string, error) {
	paths, err := filepath.Glob(strings.ReplaceAll(pattern, "[!", "[^"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "malformed content pattern").
			WithContext("pattern", pattern).Build()
	}
	slices.Sort(paths)
	return paths, nil
}

func affirmative(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "yes")
}
