package igc2kml

import "gitlab.com/tozd/go/errors"

var (
	ErrNoFixes       = errors.Base("track has no fixes")
	ErrMissingDate   = errors.Base("missing date header")
	ErrBadRecord     = errors.Base("malformed record")
	ErrNoSites       = errors.Base("no launch sites configured")
	ErrUnknownFormat = errors.Base("unknown site list format")
)
