// cmd/makesite/main.go
package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	ferrors "makesite/internal/errors"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("makesite"),
		kong.Description("Build a static site from content files and layouts."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
