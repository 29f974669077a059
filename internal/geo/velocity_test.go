package geo

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
		tolerance              float64
	}{
		{"same point", 51.5, -0.12, 51.5, -0.12, 0, 0.001},
		// one degree of latitude on the 6371 km sphere
		{"one degree latitude", 0, 0, 1, 0, 6371000 * math.Pi / 180, 1},
		{"one degree longitude at equator", 0, 0, 0, 1, 6371000 * math.Pi / 180, 1},
		// Paris to London, roughly 344 km
		{"paris to london", 48.8566, 2.3522, 51.5074, -0.1278, 343900, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("HaversineMeters = %v, want %v ± %v", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestBearingDegrees(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
		{"north-east diagonal", 0, 0, 1, 1, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bearingDegrees(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("bearingDegrees = %v, want %v", got, tt.expected)
			}
			if got < 0 || got >= 360 {
				t.Errorf("bearing %v outside [0,360)", got)
			}
		})
	}
}

func TestComputeVelocitiesStationary(t *testing.T) {
	in := []Fix{fixAt(0, 45, 9), fixAt(1, 45, 9)}
	got := ComputeVelocities(in)
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[1].VelocityMagnitude != 0 {
		t.Errorf("stationary magnitude = %v, want 0", got[1].VelocityMagnitude)
	}
}

func TestComputeVelocitiesFirstPointCopiesSecond(t *testing.T) {
	in := []Fix{fixAt(0, 45, 9), fixAt(1, 45.001, 9.001), fixAt(2, 45.002, 9.001)}
	got := ComputeVelocities(in)

	if got[0].VelocityMagnitude != got[1].VelocityMagnitude {
		t.Errorf("first point magnitude %v != second point %v",
			got[0].VelocityMagnitude, got[1].VelocityMagnitude)
	}
	if got[0].VelocityDirection != got[1].VelocityDirection {
		t.Errorf("first point direction %v != second point %v",
			got[0].VelocityDirection, got[1].VelocityDirection)
	}
	if got[1].VelocityMagnitude <= 0 {
		t.Errorf("moving pair should have positive magnitude, got %v", got[1].VelocityMagnitude)
	}
}

func TestComputeVelocitiesSinglePoint(t *testing.T) {
	got := ComputeVelocities([]Fix{fixAt(0, 45, 9)})
	if len(got) != 1 {
		t.Fatalf("got %d points, want 1", len(got))
	}
	if got[0].VelocityMagnitude != 0 || got[0].VelocityDirection != 0 {
		t.Errorf("single point velocity = %v/%v, want 0/0",
			got[0].VelocityMagnitude, got[0].VelocityDirection)
	}
}

func TestComputeVelocitiesNonPositiveDelta(t *testing.T) {
	// duplicate epoch: rate is undefined, velocity clamps to zero
	in := []Fix{fixAt(10, 45, 9), fixAt(10, 46, 10), fixAt(11, 46, 10)}
	got := ComputeVelocities(in)
	if got[1].VelocityMagnitude != 0 || got[1].VelocityDirection != 0 {
		t.Errorf("zero-delta pair velocity = %v/%v, want 0/0",
			got[1].VelocityMagnitude, got[1].VelocityDirection)
	}
}

func TestComputeVelocitiesMagnitude(t *testing.T) {
	// one degree of latitude over 111 195 m in 100 s
	in := []Fix{fixAt(0, 0, 0), fixAt(100, 1, 0)}
	got := ComputeVelocities(in)
	want := 6371000 * math.Pi / 180 / 100
	if math.Abs(got[1].VelocityMagnitude-want) > 0.01 {
		t.Errorf("magnitude = %v, want %v", got[1].VelocityMagnitude, want)
	}
}
