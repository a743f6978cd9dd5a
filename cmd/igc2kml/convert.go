package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/MScherbela/igc2kml"
)

//nolint:lll
type ConvertCommand struct {
	Paths       []string `arg:""                help:"IGC file(s) to convert."                                                               placeholder:"PATH" required:"" type:"existingfile"`
	OutputDir   string   `                      help:"Directory for KML output. Default: next to each input file."             name:"output" placeholder:"PATH"             short:"o" type:"path"`
	SitesFile   string   `                      help:"Launch site list, YAML or JSON. Default: compiled-in list."              name:"sites"  placeholder:"PATH"             short:"s" type:"existingfile"`
	MaxDistance float64  `default:"10"          help:"Maximum distance to attribute a launch site, in km. Default: ${default}."              placeholder:"KM"`
	Strict      bool     `                      help:"Abort on the first malformed fix record instead of skipping it."`
	Force       bool     `                      help:"Overwrite output files which already exist."                                                                          short:"f"`
	Parallel    int      `default:"1"           help:"Number of files converted concurrently. Default: ${default}."                          placeholder:"N"`
}

func (c *ConvertCommand) Run(logger zerolog.Logger) errors.E {
	// We stop the process gracefully on ctrl-c and TERM signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	converter := &igc2kml.Converter{
		Sites:           nil,
		MaxSiteDistance: c.MaxDistance * 1000, //nolint:gomnd
		Strict:          c.Strict,
	}
	if c.SitesFile != "" {
		sites, errE := igc2kml.LoadSites(c.SitesFile)
		if errE != nil {
			return errE
		}
		converter.Sites = sites
	}

	if c.OutputDir != "" {
		err := os.MkdirAll(c.OutputDir, 0o755) //nolint:gomnd
		if err != nil {
			return errors.WithStack(err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Parallel)

	for _, inputPath := range c.Paths {
		inputPath := inputPath
		g.Go(func() error {
			l := logger.With().Str("file", inputPath).Logger()

			errE := c.processFile(l.WithContext(ctx), converter, inputPath)
			if errE != nil {
				if errors.Is(errE, context.Canceled) || errors.Is(errE, context.DeadlineExceeded) {
					return errE
				}
				// A bad input file should not stop the rest of the batch.
				l.Warn().Err(errE).Msg("error converting file")
			}
			return nil
		})
	}

	return errors.WithStack(g.Wait())
}

func (c *ConvertCommand) processFile(ctx context.Context, converter *igc2kml.Converter, inputPath string) errors.E {
	if ctx.Err() != nil {
		return errors.WithStack(ctx.Err())
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return errors.WithStack(err)
	}
	conversion, errE := converter.Convert(ctx, f)
	if err := f.Close(); err != nil && errE == nil {
		errE = errors.WithStack(err)
	}
	if errE != nil {
		return errE
	}

	outputDir := c.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	outputPath := filepath.Join(outputDir, conversion.Filename)

	errE = writeFile(ctx, outputPath, conversion.KML, c.Force)
	if errE != nil {
		return errE
	}

	zerolog.Ctx(ctx).Info().
		Str("site", conversion.Site).
		Int("fixes", len(conversion.Track.Fixes)).
		Int("skipped", conversion.Track.Skipped).
		Str("output", outputPath).
		Msg("converted")

	return nil
}
