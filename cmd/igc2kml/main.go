package main

import (
	"github.com/alecthomas/kong"
	"gitlab.com/tozd/go/cli"
	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/go/zerolog"
)

type App struct {
	zerolog.LoggingConfig

	Version kong.VersionFlag `help:"Show program's version and exit." short:"V" yaml:"-"`

	Convert ConvertCommand `cmd:"" default:"withargs" help:"Convert IGC flight logs to KML files for Google Earth."`
	Sites   SitesCommand   `cmd:""                    help:"List configured launch sites or look up the nearest one."`
}

func main() {
	var app App
	cli.Run(&app, kong.Vars{}, func(ctx *kong.Context) errors.E {
		return errors.WithStack(ctx.Run(app.Logger))
	})
}
