package igc2kml_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/MScherbela/igc2kml"
)

const sampleIGC = `AXCT8A4FD7:1234
HFDTE120823
HFPLTPILOTINCHARGE:Jane Doe
HFGTYGLIDERTYPE:Omega 42
B1004504537360N01611010EA0120001250
B1004514537370N01611020EA0120101260
B1004524537380N01611030EA0120201270
LXXX flight recorder comment
`

func TestParse(t *testing.T) {
	t.Parallel()

	track, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(sampleIGC))
	require.NoError(t, errE, "% -+#.1v", errE)

	require.Len(t, track.Fixes, 3)
	assert.Equal(t, 0, track.Skipped)
	assert.Equal(t, "Jane Doe", track.Pilot)
	assert.Equal(t, "Omega 42", track.Glider)
	assert.Equal(t, "1234", track.Serial)
	assert.Equal(t, time.Date(2023, 8, 12, 0, 0, 0, 0, time.UTC), track.Date)

	first := track.Fixes[0]
	assert.Equal(t, time.Date(2023, 8, 12, 10, 4, 50, 0, time.UTC), first.Time)
	assert.InDelta(t, 45.0+37.360/60, first.Lat, 1e-9)
	assert.InDelta(t, 16.0+11.010/60, first.Lon, 1e-9)
	assert.Equal(t, byte('A'), first.Validity)
	assert.InDelta(t, 1200.0, first.PressureAlt, 1e-9)
	assert.InDelta(t, 1250.0, first.GNSSAlt, 1e-9)

	// Fixes stay in source order with non-decreasing timestamps.
	for i := 1; i < len(track.Fixes); i++ {
		assert.False(t, track.Fixes[i].Time.Before(track.Fixes[i-1].Time))
	}
}

func TestParseHemispheres(t *testing.T) {
	t.Parallel()

	input := "HFDTE120823\n" +
		"B1004504537360S01611010WA0120001250\n"

	track, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, errE, "% -+#.1v", errE)
	require.Len(t, track.Fixes, 1)
	assert.InDelta(t, -(45.0 + 37.360/60), track.Fixes[0].Lat, 1e-9)
	assert.InDelta(t, -(16.0 + 11.010/60), track.Fixes[0].Lon, 1e-9)
}

func TestParseDateHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name   string
		Header string
	}{
		{"short", "HFDTE120823"},
		{"long", "HFDTEDATE:120823,01"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			input := tt.Header + "\nB1004504537360N01611010EA0120001250\n"
			track, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
			require.NoError(t, errE, "% -+#.1v", errE)
			assert.Equal(t, time.Date(2023, 8, 12, 0, 0, 0, 0, time.UTC), track.Date)
		})
	}
}

func TestParseTimezone(t *testing.T) {
	t.Parallel()

	input := "HFDTE120823\n" +
		"HFTZNTIMEZONE:2\n" +
		"B1004504537360N01611010EA0120001250\n"

	track, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, errE, "% -+#.1v", errE)
	assert.Equal(t, time.Date(2023, 8, 12, 12, 4, 50, 0, time.UTC), track.Fixes[0].Time)
}

func TestParseMissingDate(t *testing.T) {
	t.Parallel()

	input := "B1004504537360N01611010EA0120001250\n"

	_, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
	require.Error(t, errE)
	assert.ErrorIs(t, errE, igc2kml.ErrMissingDate)
	assert.Equal(t, "date", errors.Details(errE)["field"])
	assert.Equal(t, 1, errors.Details(errE)["line"])
}

func TestParseNoFixes(t *testing.T) {
	t.Parallel()

	input := "HFDTE120823\nHFPLTPILOTINCHARGE:Jane Doe\n"

	_, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
	require.Error(t, errE)
	assert.ErrorIs(t, errE, igc2kml.ErrNoFixes)
}

func TestParseMalformedFix(t *testing.T) {
	t.Parallel()

	input := "HFDTE120823\n" +
		"B1004504537360N01611010EA0120001250\n" +
		"B100451453736\n" + // truncated
		"B1004524537380N01611030EA0120201270\n"

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		track, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
		require.NoError(t, errE, "% -+#.1v", errE)
		assert.Len(t, track.Fixes, 2)
		assert.Equal(t, 1, track.Skipped)
	})

	t.Run("strict", func(t *testing.T) {
		t.Parallel()

		_, errE := igc2kml.Parser{Strict: true}.Parse(context.Background(), strings.NewReader(input))
		require.Error(t, errE)
		assert.ErrorIs(t, errE, igc2kml.ErrBadRecord)
		assert.Equal(t, 3, errors.Details(errE)["line"])
	})
}

func TestParseMidnightRollover(t *testing.T) {
	t.Parallel()

	input := "HFDTE120823\n" +
		"B2359594537360N01611010EA0120001250\n" +
		"B0000014537370N01611020EA0120101260\n"

	track, errE := igc2kml.Parser{}.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, errE, "% -+#.1v", errE)
	require.Len(t, track.Fixes, 2)
	assert.Equal(t, time.Date(2023, 8, 13, 0, 0, 1, 0, time.UTC), track.Fixes[1].Time)
	assert.True(t, track.Fixes[0].Time.Before(track.Fixes[1].Time))
}
