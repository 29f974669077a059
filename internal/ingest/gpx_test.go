package ingest

import (
	"strings"
	"testing"
	"time"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="myTracks"
     xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:mytracks="http://mytracks.stichling.info/myTracksGPX/1/0">
  <trk>
    <name>morning ride</name>
    <trkseg>
      <trkpt lat="31.2304" lon="121.4737">
        <ele>12.5</ele>
        <time>2026-03-14T01:00:00Z</time>
        <extensions>
          <mytracks:speed>3.4</mytracks:speed>
          <mytracks:gradient>0.02</mytracks:gradient>
          <mytracks:length>5.1</mytracks:length>
        </extensions>
      </trkpt>
      <trkpt lat="31.2305" lon="121.4738">
        <ele>12.6</ele>
        <time>2026-03-14T01:00:01Z</time>
      </trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="31.2310" lon="121.4740">
        <ele>13.0</ele>
        <time>2026-03-14T01:05:00Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseGPX(t *testing.T) {
	fixes, err := ParseGPX(strings.NewReader(sampleGPX), DefaultGPXShift)
	if err != nil {
		t.Fatalf("ParseGPX failed: %v", err)
	}
	if len(fixes) != 3 {
		t.Fatalf("got %d fixes, want 3 (segments flattened)", len(fixes))
	}

	first := fixes[0]
	// 01:00 UTC in the file plus the eight hour shift.
	wantTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if !first.Time.Equal(wantTime) {
		t.Errorf("time = %v, want %v", first.Time, wantTime)
	}
	if first.EpochSeconds != wantTime.Unix() {
		t.Errorf("epoch = %d, want %d", first.EpochSeconds, wantTime.Unix())
	}
	if first.Lat != 31.2304 || first.Lon != 121.4737 || first.Elevation != 12.5 {
		t.Errorf("position = (%v, %v, %v)", first.Lat, first.Lon, first.Elevation)
	}
	if first.Speed == nil || *first.Speed != 3.4 {
		t.Errorf("speed = %v, want 3.4", first.Speed)
	}
	if first.Gradient == nil || *first.Gradient != 0.02 {
		t.Errorf("gradient = %v, want 0.02", first.Gradient)
	}
	if first.Length == nil || *first.Length != 5.1 {
		t.Errorf("length = %v, want 5.1", first.Length)
	}

	second := fixes[1]
	if second.Speed != nil || second.Gradient != nil || second.Length != nil {
		t.Error("expected nil extension fields for point without extensions")
	}
}

func TestParseGPXZeroShift(t *testing.T) {
	fixes, err := ParseGPX(strings.NewReader(sampleGPX), 0)
	if err != nil {
		t.Fatalf("ParseGPX failed: %v", err)
	}
	want := time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC)
	if !fixes[0].Time.Equal(want) {
		t.Errorf("time = %v, want %v with zero shift", fixes[0].Time, want)
	}
}

func TestParseGPXMalformed(t *testing.T) {
	if _, err := ParseGPX(strings.NewReader("<gpx><trk>"), 0); err == nil {
		t.Error("expected error for truncated document")
	}
}
