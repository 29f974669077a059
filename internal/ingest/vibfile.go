// Package ingest parses the two on-disk source formats: tab-delimited
// vibration exports from the sensor logger and GPX 1.1 track files.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ridemetrics/severity.report/internal/monitoring"
	"github.com/ridemetrics/severity.report/internal/vibration"
)

// Column headers as the sensor logger writes them. Temperature is
// optional; everything else must be present.
const (
	colTime  = "time"
	colTemp  = "Temperature(°C)"
	colSpdX  = "SpeedX(mm/s)"
	colSpdY  = "SpeedY(mm/s)"
	colSpdZ  = "SpeedZ(mm/s)"
	colDispX = "DisplacementX(um)"
	colDispY = "DisplacementY(um)"
	colDispZ = "DisplacementZ(um)"
)

// timeLayouts covers the timestamp forms seen in logger exports.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05.999999999",
	"2006/01/02 15:04:05",
}

// ReadVibrationFile parses a tab-delimited vibration export. Rows that
// fail to parse are logged and skipped; a file with no usable samples
// is an error.
func ReadVibrationFile(path string) ([]vibration.RawSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vibration file: %w", err)
	}
	defer f.Close()

	samples, err := ParseVibrationData(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return samples, nil
}

// ParseVibrationData parses tab-delimited sample rows from r.
func ParseVibrationData(r io.Reader) ([]vibration.RawSample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, &vibration.DataError{Msg: "empty data file"}
	}

	cols, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	var samples []vibration.RawSample
	line := 1
	for scanner.Scan() {
		line++
		// Trim line endings only. A blank trailing field (no
		// temperature) keeps its tab, so the row still splits into
		// the full column count.
		text := strings.Trim(scanner.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		sample, err := parseRow(text, cols)
		if err != nil {
			monitoring.Warnf("skipping line %d: %v", line, err)
			continue
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data rows: %w", err)
	}

	if len(samples) == 0 {
		return nil, &vibration.DataError{Msg: "no usable samples in data file"}
	}
	return samples, nil
}

// columnMap holds the index of each known column, -1 when absent.
type columnMap struct {
	time, temp          int
	spdX, spdY, spdZ    int
	dispX, dispY, dispZ int
	fields              int
}

func parseHeader(header string) (columnMap, error) {
	cols := columnMap{time: -1, temp: -1, spdX: -1, spdY: -1, spdZ: -1, dispX: -1, dispY: -1, dispZ: -1}

	names := strings.Split(header, "\t")
	cols.fields = len(names)
	for i, name := range names {
		switch strings.TrimSpace(name) {
		case colTime:
			cols.time = i
		case colTemp:
			cols.temp = i
		case colSpdX:
			cols.spdX = i
		case colSpdY:
			cols.spdY = i
		case colSpdZ:
			cols.spdZ = i
		case colDispX:
			cols.dispX = i
		case colDispY:
			cols.dispY = i
		case colDispZ:
			cols.dispZ = i
		}
	}

	missing := []string{}
	for _, c := range []struct {
		name string
		idx  int
	}{
		{colTime, cols.time},
		{colSpdX, cols.spdX}, {colSpdY, cols.spdY}, {colSpdZ, cols.spdZ},
		{colDispX, cols.dispX}, {colDispY, cols.dispY}, {colDispZ, cols.dispZ},
	} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return cols, &vibration.DataError{Msg: "missing required columns: " + strings.Join(missing, ", ")}
	}
	return cols, nil
}

func parseRow(text string, cols columnMap) (vibration.RawSample, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < cols.fields {
		return vibration.RawSample{}, fmt.Errorf("got %d fields, want %d", len(fields), cols.fields)
	}

	var sample vibration.RawSample
	var err error

	sample.Time, err = parseSampleTime(strings.TrimSpace(fields[cols.time]))
	if err != nil {
		return vibration.RawSample{}, err
	}

	for _, f := range []struct {
		dst *float64
		idx int
	}{
		{&sample.SpeedX, cols.spdX}, {&sample.SpeedY, cols.spdY}, {&sample.SpeedZ, cols.spdZ},
		{&sample.DispX, cols.dispX}, {&sample.DispY, cols.dispY}, {&sample.DispZ, cols.dispZ},
	} {
		*f.dst, err = strconv.ParseFloat(strings.TrimSpace(fields[f.idx]), 64)
		if err != nil {
			return vibration.RawSample{}, fmt.Errorf("bad numeric field: %w", err)
		}
	}

	if cols.temp >= 0 && cols.temp < len(fields) {
		raw := strings.TrimSpace(fields[cols.temp])
		if raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return vibration.RawSample{}, fmt.Errorf("bad temperature field: %w", err)
			}
			sample.Temperature = &v
		}
	}

	return sample, nil
}

func parseSampleTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
