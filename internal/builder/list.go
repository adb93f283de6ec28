package builder

import (
	"strings"

	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
	"makesite/internal/util"
)

// MakeList renders each item through itemLayout, concatenates the results in
// the given order and renders that through listLayout as content. The
// destination is rendered from extra alone.
func (g *Generator) MakeList(items []Params, dstTemplate, listLayout, itemLayout string, extra Params) error {
	var body strings.Builder
	for _, item := range items {
		body.WriteString(Render(itemLayout, extra.Merge(item)))
	}

	list := extra.Merge(Params{KeyContent: body.String()})
	dst := Render(dstTemplate, extra)
	output := Render(listLayout, list)

	g.logger.Info("Rendering list", logfields.Destination(dst), logfields.Count(len(items)))
	if err := util.WriteText(dst, output); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write list").
			WithContext("path", dst).Build()
	}
	return nil
}
