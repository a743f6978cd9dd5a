package igc2kml

import (
	"fmt"
	"strings"
	"unicode"
)

// lineRamp is a 9-step red-to-green ramp of KML aabbggrr line colors.
var lineRamp = []string{
	"ff2600a5", "ff2e40de", "ff528ef9", "ff81d4fe", "ffbefffe",
	"ff82e9cb", "ff66ca84", "ff54a02a", "ff376800",
}

const lineRampName = "rdgn9"

// Climb and speed ranges mapped onto the color ramp.
const (
	climbRampMin = -4.0
	climbRampMax = 4.0
	speedRampMin = 0.0
	speedRampMax = 60.0
)

// KML renders a track as a complete KML document: a plain flight-path line
// carrying the track metadata, plus per-segment lines colored by climb rate
// and by ground speed. Rendering is fully in memory so callers can write
// the result atomically.
func KML(track *Track, derived Derived, siteName string) []byte {
	var b strings.Builder

	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<kml xmlns=\"http://earth.google.com/kml/2.0\">\n")
	b.WriteString("<Document>\n")
	b.WriteString("<open>1</open>\n")

	for i, color := range lineRamp {
		fmt.Fprintf(&b, "<Style id=\"%s%d\">\n", lineRampName, i)
		b.WriteString("\t<LineStyle>\n")
		fmt.Fprintf(&b, "\t<color>%s</color>\n", color)
		b.WriteString("\t<width>3</width>\n")
		b.WriteString("\t</LineStyle>\n")
		b.WriteString("</Style>\n")
	}

	fmt.Fprintf(&b, "<name>%s: %s</name>\n", xmlEscape(siteName), track.Date.Format("02.01.2006"))

	writeFlightPath(&b, track, siteName)

	b.WriteString("<Folder>\n")
	b.WriteString("<name>Flight track</name>\n")
	b.WriteString("<open>1</open>\n")
	b.WriteString("<Style><ListStyle><listItemType>radioFolder</listItemType></ListStyle></Style>\n")
	writeColoredSegments(&b, track, derived, derived.Climb, climbRampMin, climbRampMax, "Vario [m/s]")
	writeColoredSegments(&b, track, derived, derived.Speed, speedRampMin, speedRampMax, "Speed [km/h]")
	b.WriteString("</Folder>\n")

	b.WriteString("</Document>\n")
	b.WriteString("</kml>\n")

	return []byte(b.String())
}

// writeFlightPath emits a single LineString placemark with the whole track
// and its metadata.
func writeFlightPath(b *strings.Builder, track *Track, siteName string) {
	b.WriteString("<Placemark>\n")
	b.WriteString("<name>Flight path</name>\n")
	b.WriteString("<description>")
	fmt.Fprintf(b, "Date: %s", xmlEscape(track.Date.Format("02.01.2006")))
	if track.Pilot != "" {
		fmt.Fprintf(b, "\nPilot: %s", xmlEscape(track.Pilot))
	}
	if track.Glider != "" {
		fmt.Fprintf(b, "\nGlider: %s", xmlEscape(track.Glider))
	}
	fmt.Fprintf(b, "\nLaunch site: %s", xmlEscape(siteName))
	b.WriteString("</description>\n")
	b.WriteString("<LineString>\n")
	b.WriteString("<altitudeMode>absolute</altitudeMode>\n")
	b.WriteString("<coordinates>\n")
	for _, fix := range track.Fixes {
		fmt.Fprintf(b, "  %.6f,%.6f,%.0f\n", fix.Lon, fix.Lat, fix.GNSSAlt)
	}
	b.WriteString("</coordinates>\n")
	b.WriteString("</LineString>\n")
	b.WriteString("</Placemark>\n")
}

// writeColoredSegments emits one two-point LineString placemark per fix
// pair, styled by mapping colorBy values onto the color ramp.
func writeColoredSegments(b *strings.Builder, track *Track, derived Derived, colorBy []float64, vmin, vmax float64, name string) {
	b.WriteString("<Folder>\n")
	fmt.Fprintf(b, "<name>%s</name>\n", xmlEscape(name))
	for i := 0; i+1 < len(track.Fixes); i++ {
		cur, next := track.Fixes[i], track.Fixes[i+1]

		b.WriteString("<Placemark>\n")
		fmt.Fprintf(b, "\t<styleUrl>#%s%d</styleUrl>\n", lineRampName, rampIndex(colorBy[i], vmin, vmax, len(lineRamp)))
		fmt.Fprintf(b, "\t<name>%s, %.0fm, %.0fkm/h</name>\n",
			cur.Time.Format("15:04:05"), cur.GNSSAlt, derived.Speed[i])
		b.WriteString("\t<LineString>\n")
		b.WriteString("\t<altitudeMode>absolute</altitudeMode>\n")
		b.WriteString("\t<coordinates>\n")
		fmt.Fprintf(b, "  %.6f,%.6f,%.0f\n", cur.Lon, cur.Lat, cur.GNSSAlt)
		fmt.Fprintf(b, "  %.6f,%.6f,%.0f\n", next.Lon, next.Lat, next.GNSSAlt)
		b.WriteString("\t</coordinates>\n")
		b.WriteString("\t</LineString>\n")
		b.WriteString("</Placemark>\n")
	}
	b.WriteString("</Folder>\n")
}

// rampIndex maps a value in [vmin, vmax] onto a ramp index, clamping
// out-of-range values to the ends.
func rampIndex(v, vmin, vmax float64, n int) int {
	i := int(float64(n)*(v-vmin)/(vmax-vmin) + 0.5)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// OutputName derives the suggested output filename from the first fix time
// and the resolved site name, e.g. "2023_08_12_1004_Sonnwendstein.kml".
func OutputName(track *Track, siteName string) string {
	return track.Fixes[0].Time.Format("2006_01_02_1504") + "_" + sanitizeName(siteName) + ".kml"
}

// sanitizeName replaces characters unsafe for filenames with underscores.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, s)
}
