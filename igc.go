package igc2kml

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// milliminutesInDeg converts the milliminute field of a B record to degrees.
const milliminutesInDeg = 1e-3 / 60

// minBRecordLength covers time, position, validity and both altitudes.
const minBRecordLength = 35

// Fix is a single recorded track point. Coordinates are signed decimal
// degrees, altitudes are meters.
type Fix struct {
	Time        time.Time
	Lat         float64
	Lon         float64
	Validity    byte
	PressureAlt float64
	GNSSAlt     float64
}

// Track is one parsed flight: header metadata plus fixes in source order.
// It is not modified after parsing.
type Track struct {
	// Date is the flight date from the HFDTE header, shifted by the
	// HFTZN timezone offset when present.
	Date   time.Time
	Pilot  string
	Glider string
	Serial string

	// Headers holds all H records as key/value pairs, keyed by the part
	// before the first colon (e.g. "HFGTYGLIDERTYPE").
	Headers map[string]string

	// Fixes are in source order with non-decreasing timestamps.
	Fixes []Fix

	// Skipped counts malformed B records dropped in non-strict mode.
	Skipped int
}

// Parser parses IGC flight logs.
type Parser struct {
	// Strict aborts parsing on the first malformed B record. The default
	// is to skip such records with a warning, salvaging what the flight
	// recorder managed to write.
	Strict bool
}

// Parse reads a complete IGC document. It fails if a B record precedes the
// date header, or if the document contains no B records at all.
func (p Parser) Parse(ctx context.Context, r io.Reader) (*Track, errors.E) {
	logger := zerolog.Ctx(ctx)

	track := &Track{
		Headers: map[string]string{},
	}
	hasDate := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		switch {
		case line[0] == 'B':
			if !hasDate {
				errE := errors.WithStack(ErrMissingDate)
				errors.Details(errE)["field"] = "date"
				errors.Details(errE)["line"] = lineNo
				return nil, errE
			}
			fix, errE := parseBRecord(line, track.Date)
			if errE != nil {
				if p.Strict {
					errors.Details(errE)["line"] = lineNo
					return nil, errE
				}
				logger.Warn().Int("line", lineNo).Err(errE).Msg("skipping malformed fix record")
				track.Skipped++
				continue
			}
			if n := len(track.Fixes); n > 0 && fix.Time.Before(track.Fixes[n-1].Time) {
				// Clock time wrapped at UTC midnight.
				fix.Time = fix.Time.Add(24 * time.Hour)
			}
			track.Fixes = append(track.Fixes, fix)
		case strings.HasPrefix(line, "HFDTE"):
			date, errE := parseDateHeader(line)
			if errE != nil {
				errors.Details(errE)["line"] = lineNo
				return nil, errE
			}
			track.Date = date
			hasDate = true
		case strings.HasPrefix(line, "HFTZNTIMEZONE:"):
			offset, err := strconv.ParseFloat(strings.TrimSpace(line[len("HFTZNTIMEZONE:"):]), 64)
			if err != nil {
				errE := errors.WrapWith(err, ErrBadRecord)
				errors.Details(errE)["record"] = "HFTZN"
				errors.Details(errE)["line"] = lineNo
				return nil, errE
			}
			track.Date = track.Date.Add(time.Duration(offset * float64(time.Hour)))
		case line[0] == 'H':
			key, value, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			track.Headers[key] = value
			switch headerSubject(key) {
			case "PLT":
				track.Pilot = strings.TrimSpace(value)
			case "GTY":
				track.Glider = strings.TrimSpace(value)
			}
		case line[0] == 'A':
			if i := strings.LastIndexByte(line, ':'); i >= 0 {
				track.Serial = strings.TrimSpace(line[i+1:])
			} else {
				track.Serial = strings.TrimSpace(line[1:])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	if len(track.Fixes) == 0 {
		return nil, errors.WithStack(ErrNoFixes)
	}

	return track, nil
}

// headerSubject extracts the three-letter subject code of an H record key,
// e.g. "PLT" from "HFPLTPILOTINCHARGE".
func headerSubject(key string) string {
	if len(key) < 5 {
		return ""
	}
	return key[2:5]
}

// parseDateHeader handles both the short "HFDTEddmmyy" form and the modern
// "HFDTEDATE:ddmmyy,nn" form.
func parseDateHeader(line string) (time.Time, errors.E) {
	value := line[len("HFDTE"):]
	if rest, found := strings.CutPrefix(value, "DATE:"); found {
		value = rest
	}
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	date, err := time.Parse("020106", strings.TrimSpace(value))
	if err != nil {
		errE := errors.WrapWith(err, ErrBadRecord)
		errors.Details(errE)["record"] = "HFDTE"
		return time.Time{}, errE
	}
	return date, nil
}

// parseBRecord parses one fix line. Layout is fixed-width:
//
//	B hhmmss ddmmmmm[NS] dddmmmmm[EW] v ppppp ggggg
func parseBRecord(line string, date time.Time) (Fix, errors.E) {
	if len(line) < minBRecordLength {
		errE := errors.WithStack(ErrBadRecord)
		errors.Details(errE)["length"] = len(line)
		return Fix{}, errE
	}

	hour, err1 := strconv.Atoi(line[1:3])
	minute, err2 := strconv.Atoi(line[3:5])
	second, err3 := strconv.Atoi(line[5:7])

	latDeg, err4 := strconv.Atoi(line[7:9])
	latMMin, err5 := strconv.Atoi(line[9:14])
	lonDeg, err6 := strconv.Atoi(line[15:18])
	lonMMin, err7 := strconv.Atoi(line[18:23])

	pressureAlt, err8 := strconv.Atoi(strings.TrimSpace(line[25:30]))
	gnssAlt, err9 := strconv.Atoi(strings.TrimSpace(line[30:35]))

	for _, err := range []error{err1, err2, err3, err4, err5, err6, err7, err8, err9} {
		if err != nil {
			return Fix{}, errors.WrapWith(err, ErrBadRecord)
		}
	}

	lat := float64(latDeg) + float64(latMMin)*milliminutesInDeg
	switch line[14] {
	case 'S':
		lat = -lat
	case 'N':
	default:
		errE := errors.WithStack(ErrBadRecord)
		errors.Details(errE)["hemisphere"] = string(line[14])
		return Fix{}, errE
	}

	lon := float64(lonDeg) + float64(lonMMin)*milliminutesInDeg
	switch line[23] {
	case 'W':
		lon = -lon
	case 'E':
	default:
		errE := errors.WithStack(ErrBadRecord)
		errors.Details(errE)["hemisphere"] = string(line[23])
		return Fix{}, errE
	}

	return Fix{
		Time:        date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second),
		Lat:         lat,
		Lon:         lon,
		Validity:    line[24],
		PressureAlt: float64(pressureAlt),
		GNSSAlt:     float64(gnssAlt),
	}, nil
}
