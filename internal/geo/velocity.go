package geo

import "math"

// earthRadiusMeters is the mean Earth radius used for great-circle
// distance, 6371 km.
const earthRadiusMeters = 6371.0 * 1000

// HaversineMeters returns the great-circle distance in meters between
// two coordinates given in degrees.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return c * earthRadiusMeters
}

// bearingDegrees is the heading from the first point to the second,
// degrees in [0,360), 0 = north. atan2 over the raw radian deltas with
// no cos(lat) weighting: a simplified form kept for compatibility with
// the historical track data, not the standard spherical bearing.
func bearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	deg := math.Atan2(dlon, dlat) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// ComputeVelocities derives a TrackPoint for every fix in a dense,
// time-ordered sequence. Each point's velocity comes from the distance
// to its predecessor; a non-positive time delta yields zero magnitude
// and direction. The first point has no predecessor and copies the
// second point's velocity (zero when the series has a single fix).
func ComputeVelocities(fixes []Fix) []TrackPoint {
	points := make([]TrackPoint, len(fixes))
	for i, f := range fixes {
		points[i] = TrackPoint{
			EpochSeconds: f.EpochSeconds,
			Time:         f.Time,
			Lat:          f.Lat,
			Lon:          f.Lon,
		}
		if i == 0 {
			continue
		}

		prev := fixes[i-1]
		dt := f.EpochSeconds - prev.EpochSeconds
		if dt <= 0 {
			continue
		}

		dist := HaversineMeters(prev.Lat, prev.Lon, f.Lat, f.Lon)
		points[i].VelocityMagnitude = dist / float64(dt)
		points[i].VelocityDirection = bearingDegrees(prev.Lat, prev.Lon, f.Lat, f.Lon)
	}

	if len(points) > 1 {
		points[0].VelocityMagnitude = points[1].VelocityMagnitude
		points[0].VelocityDirection = points[1].VelocityDirection
	}
	return points
}
