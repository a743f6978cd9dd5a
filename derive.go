package igc2kml

import "math"

// Derived holds per-fix series used to colorize the emitted track. Both
// slices have the same length as the track's fixes; the last element is
// always zero because the series are forward differences.
type Derived struct {
	// Climb is the GNSS climb rate in m/s.
	Climb []float64
	// Speed is the ground speed in km/h.
	Speed []float64
}

// Derive computes climb rate and ground speed between consecutive fixes.
// Ground distance comes from a planar projection onto a spherical earth,
// which is accurate at track scale. Fixes with equal timestamps produce
// zero for both series.
func Derive(track *Track) Derived {
	const degToRad = math.Pi / 180

	n := len(track.Fixes)
	d := Derived{
		Climb: make([]float64, n),
		Speed: make([]float64, n),
	}
	if n == 0 {
		return d
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, fix := range track.Fixes {
		x[i] = EarthRadius * math.Cos(fix.Lat*degToRad) * math.Cos(fix.Lon*degToRad)
		y[i] = EarthRadius * math.Cos(fix.Lat*degToRad) * math.Sin(fix.Lon*degToRad)
	}

	for i := 0; i < n-1; i++ {
		dt := track.Fixes[i+1].Time.Sub(track.Fixes[i].Time).Seconds()
		if dt <= 0 {
			continue
		}
		d.Climb[i] = (track.Fixes[i+1].GNSSAlt - track.Fixes[i].GNSSAlt) / dt
		d.Speed[i] = 3.6 * math.Hypot(x[i+1]-x[i], y[i+1]-y[i]) / dt
	}

	return d
}
