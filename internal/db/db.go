// Package db is the persistent store for the analysis pipeline: raw
// vibration samples, per-second severity results, GPS fixes, and the
// processed track points. All writes are upserts keyed by epoch second,
// so re-running an analysis pass is idempotent, and sqlite serializes
// concurrent upserts to the same key (last writer wins, which is safe
// because a given second's values are deterministic from its source
// file).
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ridemetrics/severity.report/internal/geo"
	"github.com/ridemetrics/severity.report/internal/normalize"
	"github.com/ridemetrics/severity.report/internal/vibration"
)

// timestampLayout is how DATETIME columns are stored, matching the
// historical database so existing files stay readable.
const timestampLayout = "2006-01-02 15:04:05"

type DB struct {
	*sql.DB
}

// Open opens (or creates) the sqlite database at path without touching
// the schema. Use New unless you are running migrations yourself.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 30000;"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &DB{sqldb}, nil
}

// New opens the database and brings the schema up to date using the
// embedded migrations.
func New(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// UpsertRawSample stores one vibration sample keyed by its epoch
// second and returns the key. Samples within the same second collapse
// onto one row; the aggregation layer has already consumed them all.
func (db *DB) UpsertRawSample(fileName string, s vibration.RawSample) (int64, error) {
	epoch := s.Time.Unix()

	var temperature interface{}
	if s.Temperature != nil {
		temperature = *s.Temperature
	}

	_, err := db.Exec(`
		INSERT INTO raw_data (
			epoch_seconds, file_name, timestamp, speed_x, speed_y, speed_z,
			displacement_x, displacement_y, displacement_z, temperature
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(epoch_seconds) DO UPDATE SET
			file_name = excluded.file_name,
			timestamp = excluded.timestamp,
			speed_x = excluded.speed_x,
			speed_y = excluded.speed_y,
			speed_z = excluded.speed_z,
			displacement_x = excluded.displacement_x,
			displacement_y = excluded.displacement_y,
			displacement_z = excluded.displacement_z,
			temperature = excluded.temperature`,
		epoch, fileName, formatTime(s.Time),
		s.SpeedX, s.SpeedY, s.SpeedZ,
		s.DispX, s.DispY, s.DispZ,
		temperature,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert raw sample at %d: %w", epoch, err)
	}
	return epoch, nil
}

// UpsertSeverity stores one per-second severity record.
func (db *DB) UpsertSeverity(fileName string, rec vibration.SeverityRecord) error {
	_, err := db.Exec(`
		INSERT INTO analysis_results (
			epoch_seconds, file_name, velocity_score, mean_displacement, severity_score
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(epoch_seconds) DO UPDATE SET
			file_name = excluded.file_name,
			velocity_score = excluded.velocity_score,
			mean_displacement = excluded.mean_displacement,
			severity_score = excluded.severity_score`,
		rec.EpochSeconds, fileName, rec.VelocityScore, rec.MeanDisplacement, rec.SeverityScore,
	)
	if err != nil {
		return fmt.Errorf("upsert severity at %d: %w", rec.EpochSeconds, err)
	}
	return nil
}

// SeveritySeries returns the stored severity series joined with the raw
// timestamps, ordered by epoch second. An empty fileName selects every
// file.
func (db *DB) SeveritySeries(fileName string) ([]normalize.Record, error) {
	query := `
		SELECT ar.epoch_seconds, ar.severity_score, rd.timestamp
		FROM analysis_results ar
		JOIN raw_data rd ON ar.epoch_seconds = rd.epoch_seconds`
	args := []interface{}{}
	if fileName != "" {
		query += ` WHERE ar.file_name = ?`
		args = append(args, fileName)
	}
	query += ` ORDER BY ar.epoch_seconds`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query severity series: %w", err)
	}
	defer rows.Close()

	var records []normalize.Record
	for rows.Next() {
		var rec normalize.Record
		var ts time.Time
		if err := rows.Scan(&rec.EpochSeconds, &rec.SeverityScore, &ts); err != nil {
			return nil, fmt.Errorf("scan severity record: %w", err)
		}
		rec.Time = ts.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("severity series rows: %w", err)
	}
	return records, nil
}

// FileEpochRange reports the first and last stored epoch for a file.
// ok is false when the file has no rows.
func (db *DB) FileEpochRange(fileName string) (first, last int64, ok bool, err error) {
	var min, max sql.NullInt64
	err = db.QueryRow(
		`SELECT MIN(epoch_seconds), MAX(epoch_seconds) FROM raw_data WHERE file_name = ?`,
		fileName,
	).Scan(&min, &max)
	if err != nil {
		return 0, 0, false, fmt.Errorf("query epoch range for %s: %w", fileName, err)
	}
	if !min.Valid {
		return 0, 0, false, nil
	}
	return min.Int64, max.Int64, true, nil
}

// UpsertGeoFix stores one raw GPS fix keyed by its epoch second.
func (db *DB) UpsertGeoFix(fileName string, f geo.Fix) error {
	var speed, gradient, length interface{}
	if f.Speed != nil {
		speed = *f.Speed
	}
	if f.Gradient != nil {
		gradient = *f.Gradient
	}
	if f.Length != nil {
		length = *f.Length
	}

	_, err := db.Exec(`
		INSERT INTO gps_data (
			epoch_seconds, file_name, timestamp, latitude, longitude, elevation,
			speed, gradient, length
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(epoch_seconds) DO UPDATE SET
			file_name = excluded.file_name,
			timestamp = excluded.timestamp,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			elevation = excluded.elevation,
			speed = excluded.speed,
			gradient = excluded.gradient,
			length = excluded.length`,
		f.EpochSeconds, fileName, formatTime(f.Time),
		f.Lat, f.Lon, f.Elevation,
		speed, gradient, length,
	)
	if err != nil {
		return fmt.Errorf("upsert geo fix at %d: %w", f.EpochSeconds, err)
	}
	return nil
}

// GeoFixes returns every stored fix ordered by epoch second.
func (db *DB) GeoFixes() ([]geo.Fix, error) {
	rows, err := db.Query(`
		SELECT epoch_seconds, timestamp, latitude, longitude, elevation, speed, gradient, length
		FROM gps_data
		ORDER BY epoch_seconds`)
	if err != nil {
		return nil, fmt.Errorf("query geo fixes: %w", err)
	}
	defer rows.Close()

	var fixes []geo.Fix
	for rows.Next() {
		var f geo.Fix
		var ts time.Time
		var speed, gradient, length sql.NullFloat64
		if err := rows.Scan(&f.EpochSeconds, &ts, &f.Lat, &f.Lon, &f.Elevation, &speed, &gradient, &length); err != nil {
			return nil, fmt.Errorf("scan geo fix: %w", err)
		}
		f.Time = ts.UTC()
		if speed.Valid {
			v := speed.Float64
			f.Speed = &v
		}
		if gradient.Valid {
			v := gradient.Float64
			f.Gradient = &v
		}
		if length.Valid {
			v := length.Float64
			f.Length = &v
		}
		fixes = append(fixes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("geo fix rows: %w", err)
	}
	return fixes, nil
}

// HasGeoFile reports whether any fixes from the named source file are
// already stored. Used by ingestion to skip processed files.
func (db *DB) HasGeoFile(fileName string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM gps_data WHERE file_name = ?`, fileName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count geo fixes for %s: %w", fileName, err)
	}
	return count > 0, nil
}

// ClearTrackPoints empties gps_results ahead of a full recompute. The
// GPS pass always rewrites the whole processed series.
func (db *DB) ClearTrackPoints() error {
	if _, err := db.Exec(`DELETE FROM gps_results`); err != nil {
		return fmt.Errorf("clear track points: %w", err)
	}
	return nil
}

// UpsertTrackPoint stores one processed track point.
func (db *DB) UpsertTrackPoint(p geo.TrackPoint) error {
	_, err := db.Exec(`
		INSERT INTO gps_results (
			epoch_seconds, timestamp, latitude, longitude, velocity_magnitude, velocity_direction
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(epoch_seconds) DO UPDATE SET
			timestamp = excluded.timestamp,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			velocity_magnitude = excluded.velocity_magnitude,
			velocity_direction = excluded.velocity_direction`,
		p.EpochSeconds, formatTime(p.Time), p.Lat, p.Lon, p.VelocityMagnitude, p.VelocityDirection,
	)
	if err != nil {
		return fmt.Errorf("upsert track point at %d: %w", p.EpochSeconds, err)
	}
	return nil
}

// TrackPoints returns the processed track ordered by epoch second.
func (db *DB) TrackPoints() ([]geo.TrackPoint, error) {
	rows, err := db.Query(`
		SELECT epoch_seconds, timestamp, latitude, longitude, velocity_magnitude, velocity_direction
		FROM gps_results
		ORDER BY epoch_seconds`)
	if err != nil {
		return nil, fmt.Errorf("query track points: %w", err)
	}
	defer rows.Close()

	var points []geo.TrackPoint
	for rows.Next() {
		var p geo.TrackPoint
		var ts time.Time
		if err := rows.Scan(&p.EpochSeconds, &ts, &p.Lat, &p.Lon, &p.VelocityMagnitude, &p.VelocityDirection); err != nil {
			return nil, fmt.Errorf("scan track point: %w", err)
		}
		p.Time = ts.UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("track point rows: %w", err)
	}
	return points, nil
}

// CombinedPoint is a track point joined with its second's severity,
// the record shape the map layer consumes.
type CombinedPoint struct {
	EpochSeconds  int64
	Lat           float64
	Lon           float64
	SeverityScore float64
}

// CombinedSeverityTrack joins the processed track with the severity
// series on epoch second. Seconds present on only one side are dropped;
// the two sensors are not guaranteed to cover the same span.
func (db *DB) CombinedSeverityTrack() ([]CombinedPoint, error) {
	rows, err := db.Query(`
		SELECT gr.epoch_seconds, gr.latitude, gr.longitude, ar.severity_score
		FROM gps_results gr
		JOIN analysis_results ar ON gr.epoch_seconds = ar.epoch_seconds
		ORDER BY gr.epoch_seconds`)
	if err != nil {
		return nil, fmt.Errorf("query combined track: %w", err)
	}
	defer rows.Close()

	var points []CombinedPoint
	for rows.Next() {
		var p CombinedPoint
		if err := rows.Scan(&p.EpochSeconds, &p.Lat, &p.Lon, &p.SeverityScore); err != nil {
			return nil, fmt.Errorf("scan combined point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("combined track rows: %w", err)
	}
	return points, nil
}
