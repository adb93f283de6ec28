package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"makesite/internal/builder"
	"makesite/internal/config"
	"makesite/internal/scaffold"
	"makesite/internal/server"
	"makesite/internal/tasks"
)

// CLI holds the global flags and the commands.
type CLI struct {
	Config   string `short:"c" help:"Site configuration file." default:"site.yaml"`
	Params   string `short:"p" help:"Parameter override file (JSON, or YAML by extension)." default:"params.json"`
	Verbose  bool   `short:"v" help:"Enable verbose logging."`
	Unsafe   bool   `help:"Keep raw HTML in converted markdown."`
	Markdown string `help:"Markdown engine: goldmark, blackfriday or none. Overrides site.yaml."`

	Build BuildCmd `cmd:"" default:"1" help:"Build the site into the output directory."`
	Serve ServeCmd `cmd:"" help:"Build, serve and rebuild the site on changes."`
	Init  InitCmd  `cmd:"" help:"Create a starter site."`
	New   NewCmd   `cmd:"" help:"Create a new content file."`
	Setup SetupCmd `cmd:"" help:"Tidy and download Go module dependencies."`
	Test  TestCmd  `cmd:"" help:"Run the Go test suite."`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (c *CLI) buildOptions() builder.BuildOptions {
	return builder.BuildOptions{Unsafe: c.Unsafe, Markdown: c.Markdown}
}

// build loads site.yaml afresh so edits to it apply on the next run.
func (c *CLI) build() (builder.BuildStats, config.SiteConfig, error) {
	cfg, err := config.LoadSiteConfig(c.Config)
	if err != nil {
		return builder.BuildStats{}, cfg, err
	}
	stats, err := builder.Run(cfg, c.Params, c.buildOptions(), slog.Default())
	return stats, cfg, err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type BuildCmd struct{}

func (b *BuildCmd) Run(cli *CLI) error {
	stats, cfg, err := cli.build()
	if err != nil {
		return err
	}
	fmt.Printf("Built %d pages, %d posts and %d lists into %s\n",
		stats.Pages, stats.Posts, stats.Lists, cfg.OutputDir)
	return nil
}

type ServeCmd struct {
	Port         int  `help:"Port for the preview server." default:"8000"`
	NoLiveReload bool `help:"Do not inject the live-reload script."`
}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.LoadSiteConfig(cli.Config)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	return server.Run(ctx, server.Options{
		Port:       s.Port,
		Dir:        cfg.OutputDir,
		WatchPaths: []string{cfg.ContentDir, cfg.LayoutDir, cli.Config, cli.Params},
		Ignore:     []string{cfg.OutputDir},
		LiveReload: !s.NoLiveReload,
		Build: func() error {
			_, _, err := cli.build()
			return err
		},
		Logger: slog.Default(),
	})
}

type InitCmd struct {
	Dir string `arg:"" help:"Directory to create the site in."`
}

func (i *InitCmd) Run(_ *CLI) error {
	return scaffold.CreateNewSite(i.Dir, os.Stdout)
}

type NewCmd struct {
	Section string `arg:"" help:"Section name from site.yaml, or \"page\" for a flat page."`
	Title   string `arg:"" help:"Title of the new content."`
}

func (n *NewCmd) Run(cli *CLI) error {
	cfg, err := config.LoadSiteConfig(cli.Config)
	if err != nil {
		return err
	}
	p, err := scaffold.CreateNewContent(cfg, ".", n.Section, n.Title, time.Now())
	if err != nil {
		return err
	}
	fmt.Println("Created:", p)
	return nil
}

type SetupCmd struct{}

func (s *SetupCmd) Run(_ *CLI) error {
	ctx, stop := signalContext()
	defer stop()
	return newTasks().Setup(ctx)
}

type TestCmd struct {
	Cov bool `help:"Report test coverage."`
}

func (t *TestCmd) Run(_ *CLI) error {
	ctx, stop := signalContext()
	defer stop()
	return newTasks().Test(ctx, t.Cov)
}

func newTasks() *tasks.Tasks {
	return tasks.New(tasks.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}, ".", slog.Default())
}
