// Package vibration turns raw tri-axial vibration samples into per-second
// buckets and composite severity scores.
package vibration

import (
	"math"
	"time"
)

// RawSample is a single vibration reading as delivered by ingestion.
// Speeds are in mm/s, displacements in µm. Multiple samples may share
// the same second; sub-second resolution is not guaranteed.
type RawSample struct {
	Time        time.Time
	SpeedX      float64
	SpeedY      float64
	SpeedZ      float64
	DispX       float64
	DispY       float64
	DispZ       float64
	Temperature *float64
}

// VibrationLevel is the RMS magnitude of the three velocity axes.
func (s RawSample) VibrationLevel() float64 {
	return math.Sqrt(s.SpeedX*s.SpeedX + s.SpeedY*s.SpeedY + s.SpeedZ*s.SpeedZ)
}

// DataError reports input that is structurally unusable for aggregation:
// an empty sample set, or a required column that never parsed as
// numeric/time. It aborts the file, not the batch.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string {
	return "vibration: " + e.Msg
}
