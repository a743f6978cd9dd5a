package igc2kml

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/go/x"
	"gopkg.in/yaml.v3"
)

// EarthRadius is the mean earth radius in meters used for the spherical
// distance approximation.
const EarthRadius = 6371e3

// LaunchSite is a named takeoff location. The site list is loaded once per
// run and never mutated.
type LaunchSite struct {
	Name string  `json:"name"      yaml:"name"`
	Lat  float64 `json:"latitude"  yaml:"latitude"`
	Lon  float64 `json:"longitude" yaml:"longitude"`
}

// DefaultSites returns the compiled-in launch site list, used when no site
// file is given.
func DefaultSites() []LaunchSite {
	return []LaunchSite{
		{Name: "Sonnwendstein", Lat: 47.622361, Lon: 15.8575},
		{Name: "Hohe Wand", Lat: 47.829167, Lon: 16.041111},
	}
}

// LoadSites reads a launch site list from a YAML (.yaml, .yml) or JSON
// (.json) file. Unknown fields are rejected, as are sites without a name or
// with coordinates outside the valid range.
func LoadSites(path string) ([]LaunchSite, errors.E) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithDetails(err, "path", path)
	}

	var sites []LaunchSite
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&sites); err != nil {
			return nil, errors.WithDetails(err, "path", path)
		}
	case ".json":
		errE := x.UnmarshalWithoutUnknownFields(data, &sites)
		if errE != nil {
			errors.Details(errE)["path"] = path
			return nil, errE
		}
	default:
		errE := errors.WithStack(ErrUnknownFormat)
		errors.Details(errE)["path"] = path
		errors.Details(errE)["extension"] = ext
		return nil, errE
	}

	for i, site := range sites {
		if site.Name == "" {
			errE := errors.New("launch site without a name")
			errors.Details(errE)["path"] = path
			errors.Details(errE)["index"] = i
			return nil, errE
		}
		if site.Lat < -90 || site.Lat > 90 || site.Lon < -180 || site.Lon > 180 {
			errE := errors.New("launch site coordinate out of range")
			errors.Details(errE)["path"] = path
			errors.Details(errE)["site"] = site.Name
			return nil, errE
		}
	}

	return sites, nil
}

// Distance returns the great-circle distance in meters between two points
// given in decimal degrees, on a spherical earth (haversine formula). It is
// exact for identical points (0) and well-defined for antipodal ones.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Nearest returns the launch site closest to the given point and its
// distance in meters. Ties resolve to the first minimal entry in list
// order. ok is false when the list is empty.
func Nearest(sites []LaunchSite, lat, lon float64) (site LaunchSite, distance float64, ok bool) {
	distance = math.Inf(1)
	for _, s := range sites {
		if d := Distance(lat, lon, s.Lat, s.Lon); d < distance {
			site = s
			distance = d
			ok = true
		}
	}
	return site, distance, ok
}
