package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ridemetrics/severity.report/internal/geo"
)

// DefaultGPXShift is added to every GPX timestamp. The recorder writes
// local wall time tagged as UTC, eight hours behind the vibration
// logger's clock.
const DefaultGPXShift = 8 * time.Hour

// gpxFile mirrors the subset of GPX 1.1 the track recorder emits,
// including the myTracks extension fields.
type gpxFile struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat        float64       `xml:"lat,attr"`
	Lon        float64       `xml:"lon,attr"`
	Elevation  float64       `xml:"ele"`
	Time       time.Time     `xml:"time"`
	Extensions gpxExtensions `xml:"extensions"`
}

type gpxExtensions struct {
	Speed    *float64 `xml:"speed"`
	Gradient *float64 `xml:"gradient"`
	Length   *float64 `xml:"length"`
}

// ReadGPXFile parses a GPX track file into fixes, shifting every
// timestamp by shift before keying it to an epoch second.
func ReadGPXFile(path string, shift time.Duration) ([]geo.Fix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GPX file: %w", err)
	}
	defer f.Close()

	fixes, err := ParseGPX(f, shift)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fixes, nil
}

// ParseGPX parses GPX data from r. Points from all tracks and segments
// are flattened in document order.
func ParseGPX(r io.Reader, shift time.Duration) ([]geo.Fix, error) {
	var doc gpxFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode GPX: %w", err)
	}

	var fixes []geo.Fix
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				t := p.Time.Add(shift).UTC()
				fixes = append(fixes, geo.Fix{
					EpochSeconds: t.Unix(),
					Time:         t,
					Lat:          p.Lat,
					Lon:          p.Lon,
					Elevation:    p.Elevation,
					Speed:        p.Extensions.Speed,
					Gradient:     p.Extensions.Gradient,
					Length:       p.Extensions.Length,
				})
			}
		}
	}
	return fixes, nil
}
