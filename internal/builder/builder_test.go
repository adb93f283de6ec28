package builder_test

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"makesite/internal/builder"
	"makesite/internal/config"
	ferrors "makesite/internal/errors"
	"makesite/internal/scaffold"
)

func newSite(t *testing.T) config.SiteConfig {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, scaffold.CreateNewSite(dir, io.Discard))

	cfg := config.Default()
	cfg.ContentDir = filepath.Join(dir, cfg.ContentDir)
	cfg.LayoutDir = filepath.Join(dir, cfg.LayoutDir)
	cfg.OutputDir = filepath.Join(dir, cfg.OutputDir)
	return cfg
}

func buildSite(t *testing.T, cfg config.SiteConfig, paramsPath string) builder.BuildStats {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats, err := builder.Run(cfg, paramsPath, builder.BuildOptions{}, logger)
	require.NoError(t, err)
	return stats
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuildSite_DefaultParams(t *testing.T) {
	cfg := newSite(t)
	stats := buildSite(t, cfg, "")

	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Posts)
	assert.Equal(t, 6, stats.Lists)

	post := read(t, filepath.Join(cfg.OutputDir, "blog", "proin-quam", "index.html"))
	assert.Contains(t, post, `<a href="/">Home</a>`)
	assert.Contains(t, post, `<title>Proin Quam - Lorem Ipsum</title>`)
	assert.Contains(t, post, `Published on 2018-01-01 by <b>Admin</b>`)
	assert.Contains(t, post, `<em>vehicula</em>`)
	assert.Contains(t, post, `href="../vitae-ante/"`)

	rss := read(t, filepath.Join(cfg.OutputDir, "blog", "rss.xml"))
	assert.Contains(t, rss, `<link>http://localhost:8000/</link>`)
	assert.Contains(t, rss, `<link>http://localhost:8000/blog/proin-quam/</link>`)
	assert.Contains(t, rss, `<pubDate>Mon, 01 Jan 2018 00:00:00 +0000</pubDate>`)
	assert.Less(t, strings.Index(rss, "vitae-ante"), strings.Index(rss, "proin-quam"))

	assert.Contains(t, read(t, filepath.Join(cfg.OutputDir, "index.html")), "<title>Home - Lorem Ipsum</title>")
	assert.Contains(t, read(t, filepath.Join(cfg.OutputDir, "about", "index.html")), "maintained by Admin.")
	assert.Contains(t, read(t, filepath.Join(cfg.OutputDir, "blog", "index.html")), "<title>Blog - Lorem Ipsum</title>")
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "blog", "atom.xml"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "news", "site-launch", "index.html"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "_index", "index.html"))
}

func TestBuildSite_ParamsFile(t *testing.T) {
	cfg := newSite(t)
	paramsPath := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(paramsPath, []byte(`{
		"base_path": "/base",
		"subtitle": "Foo",
		"author": "Bar",
		"site_url": "http://localhost/base"
	}`), 0o600))

	buildSite(t, cfg, paramsPath)

	post := read(t, filepath.Join(cfg.OutputDir, "blog", "proin-quam", "index.html"))
	assert.Contains(t, post, `<a href="/base/">Home</a>`)
	assert.Contains(t, post, `<title>Proin Quam - Foo</title>`)
	assert.Contains(t, post, `Published on 2018-01-01 by <b>Bar</b>`)

	rss := read(t, filepath.Join(cfg.OutputDir, "blog", "rss.xml"))
	assert.Contains(t, rss, `<link>http://localhost/base/</link>`)
	assert.Contains(t, rss, `<link>http://localhost/base/blog/proin-quam/</link>`)
}

func TestBuildSite_Idempotent(t *testing.T) {
	cfg := newSite(t)

	buildSite(t, cfg, "")
	first := snapshot(t, cfg.OutputDir)
	buildSite(t, cfg, "")
	second := snapshot(t, cfg.OutputDir)

	assert.Equal(t, first, second)
}

func TestBuildSite_RemovesStaleOutput(t *testing.T) {
	cfg := newSite(t)
	stale := filepath.Join(cfg.OutputDir, "old", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	buildSite(t, cfg, "")

	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "index.html"))
}

func TestBuildSite_EmptySection(t *testing.T) {
	cfg := newSite(t)
	cfg.Sections = append(cfg.Sections, config.Section{Name: "notes", Glob: "notes/*.md", Title: "Notes"})

	stats := buildSite(t, cfg, "")

	assert.Equal(t, 8, stats.Lists)
	assert.Contains(t, read(t, filepath.Join(cfg.OutputDir, "notes", "index.html")), "<h1>Notes</h1>")
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "notes", "rss.xml"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "notes", "atom.xml"))
}

func TestBuildSite_MissingLayout(t *testing.T) {
	cfg := newSite(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.LayoutDir, builder.ItemLayout)))

	_, err := builder.Run(cfg, "", builder.BuildOptions{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestRun_UnknownEngine(t *testing.T) {
	cfg := newSite(t)

	_, err := builder.Run(cfg, "", builder.BuildOptions{Markdown: "pandoc"}, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestRun_WithoutMarkdown(t *testing.T) {
	cfg := newSite(t)
	buildSite(t, cfg, "")

	_, err := builder.Run(cfg, "", builder.BuildOptions{Markdown: builder.EngineNone},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	post := read(t, filepath.Join(cfg.OutputDir, "blog", "proin-quam", "index.html"))
	assert.Contains(t, post, "*vehicula*")
	assert.Contains(t, read(t, filepath.Join(cfg.OutputDir, "blog", "index.html")), "Published on 2018-01-02")
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	require.NoError(t, filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = read(t, path)
		return nil
	}))
	return files
}
