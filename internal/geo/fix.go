// Package geo reconstructs a dense per-second GPS trajectory from
// sparse track fixes and derives per-second velocity from it.
package geo

import "time"

// Fix is one GPS observation. EpochSeconds is the unique key; the
// source sequence must be sorted by it with no duplicates. Speed,
// Gradient and Length come from the logging device when present and
// play no part in velocity computation.
type Fix struct {
	EpochSeconds int64
	Time         time.Time
	Lat          float64
	Lon          float64
	Elevation    float64

	Speed    *float64
	Gradient *float64
	Length   *float64

	// Interpolated marks fixes synthesized by gap filling rather than
	// observed by the device.
	Interpolated bool
}

// TrackPoint is a dense fix joined with its derived velocity.
// VelocityMagnitude is m/s; VelocityDirection is degrees in [0,360)
// with 0 = north, 90 = east.
type TrackPoint struct {
	EpochSeconds      int64
	Time              time.Time
	Lat               float64
	Lon               float64
	VelocityMagnitude float64
	VelocityDirection float64
}
