package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/MScherbela/igc2kml"
)

//nolint:lll
type SitesCommand struct {
	SitesFile string   `help:"Launch site list, YAML or JSON. Default: compiled-in list." name:"sites" placeholder:"PATH" short:"s" type:"existingfile"`
	Lat       *float64 `help:"Latitude to look up the nearest site for, in decimal degrees."           placeholder:"DEG"`
	Lon       *float64 `help:"Longitude to look up the nearest site for, in decimal degrees."          placeholder:"DEG"`
}

func (c *SitesCommand) Help() string {
	return "Without --lat/--lon it lists the configured sites. With both it prints the site nearest to the given point and the distance to it."
}

func (c *SitesCommand) Run(_ zerolog.Logger) errors.E {
	sites := igc2kml.DefaultSites()
	if c.SitesFile != "" {
		loaded, errE := igc2kml.LoadSites(c.SitesFile)
		if errE != nil {
			return errE
		}
		sites = loaded
	}

	if (c.Lat == nil) != (c.Lon == nil) {
		return errors.New("both --lat and --lon have to be provided")
	}

	if c.Lat != nil {
		site, distance, ok := igc2kml.Nearest(sites, *c.Lat, *c.Lon)
		if !ok {
			return errors.WithStack(igc2kml.ErrNoSites)
		}
		fmt.Printf("%s (%.6f, %.6f) at %.1f km\n", site.Name, site.Lat, site.Lon, distance/1000) //nolint:forbidigo
		return nil
	}

	for _, site := range sites {
		fmt.Printf("%s (%.6f, %.6f)\n", site.Name, site.Lat, site.Lon) //nolint:forbidigo
	}
	return nil
}
