package igc2kml

import (
	"context"
	"io"

	"gitlab.com/tozd/go/errors"
)

// UnknownSiteName labels tracks which launched out of range of every
// configured site, or when no sites are configured at all.
const UnknownSiteName = "Unknown"

// DefaultMaxSiteDistance is how far (in meters) a launch may be from a site
// and still be attributed to it.
const DefaultMaxSiteDistance = 10e3

// Converter turns one IGC document into a KML document. The zero value
// converts with the compiled-in site list and default settings.
type Converter struct {
	// Sites to match the launch position against. DefaultSites() when nil.
	Sites []LaunchSite

	// MaxSiteDistance caps site attribution, in meters. 0 means
	// DefaultMaxSiteDistance; negative disables the cap.
	MaxSiteDistance float64

	// Strict aborts on the first malformed fix record. See Parser.Strict.
	Strict bool
}

// Conversion is the result of converting one IGC document.
type Conversion struct {
	Track *Track

	// Site is the attributed launch site name, UnknownSiteName when the
	// track could not be attributed. Matched tells which; SiteDistance is
	// the distance to the nearest site in meters and is valid only when
	// Matched.
	Site         string
	Matched      bool
	SiteDistance float64

	// Filename is the suggested output filename. KML is the rendered
	// document.
	Filename string
	KML      []byte
}

// Convert parses an IGC document, attributes the nearest launch site, and
// renders the KML. It fails on malformed headers or a track without fixes;
// it never writes anything itself.
func (c *Converter) Convert(ctx context.Context, r io.Reader) (*Conversion, errors.E) {
	track, errE := Parser{Strict: c.Strict}.Parse(ctx, r)
	if errE != nil {
		return nil, errE
	}

	sites := c.Sites
	if sites == nil {
		sites = DefaultSites()
	}

	result := &Conversion{
		Track: track,
		Site:  UnknownSiteName,
	}

	first := track.Fixes[0]
	if site, distance, ok := Nearest(sites, first.Lat, first.Lon); ok {
		maxDistance := c.MaxSiteDistance
		if maxDistance == 0 {
			maxDistance = DefaultMaxSiteDistance
		}
		if maxDistance < 0 || distance <= maxDistance {
			result.Site = site.Name
			result.Matched = true
			result.SiteDistance = distance
		}
	}

	result.KML = KML(track, Derive(track), result.Site)
	result.Filename = OutputName(track, result.Site)

	return result, nil
}
