// internal/config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "makesite/internal/errors"
)

// Section is a named content category that gets its own posts, index list and feeds.
type Section struct {
	Name  string `yaml:"name"`
	Glob  string `yaml:"glob"` // relative to the content directory
	Title string `yaml:"title"`
}

// SiteConfig holds the configuration from the optional site.yaml file.
type SiteConfig struct {
	ContentDir string         `yaml:"content_dir"`
	LayoutDir  string         `yaml:"layout_dir"`
	OutputDir  string         `yaml:"output_dir"`
	Markdown   string         `yaml:"markdown"`
	Sections   []Section      `yaml:"sections"`
	Params     map[string]any `yaml:"params"`
}

// Default returns the conventional makesite tree: content/, layout/ and _site/
// with blog and news sections.
func Default() SiteConfig {
	return SiteConfig{
		ContentDir: "content",
		LayoutDir:  "layout",
		OutputDir:  "_site",
		Markdown:   "goldmark",
		Sections: []Section{
			{Name: "blog", Glob: "blog/*.md", Title: "Blog"},
			{Name: "news", Glob: "news/*.html", Title: "News"},
		},
	}
}

// LoadSiteConfig reads site.yaml. A missing file is not an error: the
// defaults describe a conventional site tree.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := Default()
	// #nosec G304 -- the config path is supplied by the user.
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return SiteConfig{}, ferrors.WrapError(err, ferrors.CategoryConfig, "could not read config file").
			WithContext("path", path).Build()
	}

	loaded := SiteConfig{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return SiteConfig{}, ferrors.WrapError(err, ferrors.CategoryConfig, "could not parse config file").
			WithContext("path", path).Build()
	}
	cfg.merge(loaded)

	for i, s := range cfg.Sections {
		if s.Name == "" || s.Glob == "" {
			return SiteConfig{}, ferrors.ConfigError(fmt.Sprintf("section %d needs a name and a glob", i)).
				WithContext("path", path).Build()
		}
		if s.Title == "" {
			cfg.Sections[i].Title = strings.ToUpper(s.Name[:1]) + s.Name[1:]
		}
	}
	return cfg, nil
}

func (c *SiteConfig) merge(o SiteConfig) {
	if o.ContentDir != "" {
		c.ContentDir = o.ContentDir
	}
	if o.LayoutDir != "" {
		c.LayoutDir = o.LayoutDir
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.Markdown != "" {
		c.Markdown = o.Markdown
	}
	if o.Sections != nil {
		c.Sections = o.Sections
	}
	if o.Params != nil {
		c.Params = o.Params
	}
}

// DefaultParams are the parameters every layout can rely on.
func DefaultParams(now time.Time) map[string]string {
	return map[string]string{
		"base_path":    "",
		"subtitle":     "Lorem Ipsum",
		"author":       "Admin",
		"site_url":     "http://localhost:8000",
		"current_year": strconv.Itoa(now.Year()),
	}
}

// LoadParams reads a flat parameter override file. JSON is expected unless
// the extension says YAML. A missing file yields an empty mapping.
func LoadParams(path string) (map[string]string, error) {
	// #nosec G304 -- the params path is supplied by the user.
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "could not read params file").
			WithContext("path", path).Build()
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "could not parse params file").
			WithContext("path", path).Build()
	}

	params, err := Stringify(raw)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid params file").
			WithContext("path", path).Build()
	}
	return params, nil
}

// Stringify flattens scalar values to strings. Nested objects and lists are
// rejected since layouts only substitute flat strings.
func Stringify(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool, int, int64, uint64, float64:
			out[k] = fmt.Sprint(val)
		default:
			return nil, fmt.Errorf("parameter %q must be a string, number or boolean", k)
		}
	}
	return out, nil
}

// ResolveParams assembles the parameters every page is rendered with:
// defaults, then site.yaml params, then the params file.
func ResolveParams(cfg SiteConfig, paramsPath string, now time.Time) (map[string]string, error) {
	params := DefaultParams(now)

	site, err := Stringify(cfg.Params)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid site params").Build()
	}
	maps.Copy(params, site)

	if paramsPath != "" {
		override, err := LoadParams(paramsPath)
		if err != nil {
			return nil, err
		}
		maps.Copy(params, override)
	}
	return params, nil
}
