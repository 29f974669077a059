// Package units provides shared constants and conversions for the
// measurement units the pipeline handles: track velocity in m/s,
// vibration velocity in mm/s, and displacement in micrometers.
package units

// Speed unit constants for display conversion.
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid speed unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// ConvertSpeed converts a speed from meters per second to the target
// units. Track velocities are computed and stored in m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// MicronsToMillimeters converts a displacement reading from the
// sensor's micrometer scale to millimeters.
func MicronsToMillimeters(um float64) float64 {
	return um / 1000.0
}

// MillimetersPerSecondToMeters converts a vibration velocity reading
// from the sensor's mm/s scale to m/s.
func MillimetersPerSecondToMeters(mmps float64) float64 {
	return mmps / 1000.0
}
