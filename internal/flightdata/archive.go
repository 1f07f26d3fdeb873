package flightdata

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// FlightRecord is one persisted flight summary row.
type FlightRecord struct {
	FlightID     string
	VehicleIndex int
	StartedAt    time.Time
	Duration     float64
	NumSamples   int
	Aborted      bool
	Stats        Statistics
	CSVPath      string
	CreatedAt    int64
}

// Archive persists per-flight summaries in a local sqlite database so runs
// can be compared across sessions without reparsing every CSV.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (creating if necessary) the archive database at path and
// applies any pending schema migrations.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open flight archive: %w", err)
	}

	// Single writer; sqlite returns SQLITE_BUSY under concurrent writes
	// otherwise.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Archive{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Note: we don't close m because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// RecordFlight inserts a flight summary. If FlightID is empty, a UUID is
// generated. Returns the flight ID.
func (a *Archive) RecordFlight(rec *FlightRecord) (string, error) {
	if rec.FlightID == "" {
		rec.FlightID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	_, err := a.db.Exec(`
		INSERT INTO flights (
			flight_id, vehicle_index, started_at, duration_seconds, num_samples, aborted,
			rms_x, rms_y, rms_z, mean_x, mean_y, mean_z, max_x, max_y, max_z,
			csv_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FlightID, rec.VehicleIndex, rec.StartedAt.UnixNano(), rec.Duration, rec.NumSamples, rec.Aborted,
		rec.Stats.RMSError[0], rec.Stats.RMSError[1], rec.Stats.RMSError[2],
		rec.Stats.MeanError[0], rec.Stats.MeanError[1], rec.Stats.MeanError[2],
		rec.Stats.MaxError[0], rec.Stats.MaxError[1], rec.Stats.MaxError[2],
		rec.CSVPath, rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert flight: %w", err)
	}
	return rec.FlightID, nil
}

// ListFlights returns all stored flight summaries, most recent first.
func (a *Archive) ListFlights() ([]*FlightRecord, error) {
	rows, err := a.db.Query(`
		SELECT flight_id, vehicle_index, started_at, duration_seconds, num_samples, aborted,
		       rms_x, rms_y, rms_z, mean_x, mean_y, mean_z, max_x, max_y, max_z,
		       csv_path, created_at
		FROM flights
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	var recs []*FlightRecord
	for rows.Next() {
		r, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// GetFlight returns a single flight summary by ID.
func (a *Archive) GetFlight(flightID string) (*FlightRecord, error) {
	rows, err := a.db.Query(`
		SELECT flight_id, vehicle_index, started_at, duration_seconds, num_samples, aborted,
		       rms_x, rms_y, rms_z, mean_x, mean_y, mean_z, max_x, max_y, max_z,
		       csv_path, created_at
		FROM flights
		WHERE flight_id = ?`, flightID)
	if err != nil {
		return nil, fmt.Errorf("query flight: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("flight %s not found", flightID)
	}
	return scanFlight(rows)
}

func scanFlight(rows *sql.Rows) (*FlightRecord, error) {
	var r FlightRecord
	var startedAt int64
	var csvPath sql.NullString
	err := rows.Scan(
		&r.FlightID, &r.VehicleIndex, &startedAt, &r.Duration, &r.NumSamples, &r.Aborted,
		&r.Stats.RMSError[0], &r.Stats.RMSError[1], &r.Stats.RMSError[2],
		&r.Stats.MeanError[0], &r.Stats.MeanError[1], &r.Stats.MeanError[2],
		&r.Stats.MaxError[0], &r.Stats.MaxError[1], &r.Stats.MaxError[2],
		&csvPath, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan flight: %w", err)
	}
	r.StartedAt = time.Unix(0, startedAt)
	r.CSVPath = csvPath.String
	r.Stats.TotalTime = r.Duration
	r.Stats.NumSamples = r.NumSamples
	return &r, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}
