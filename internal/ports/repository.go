package ports

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/stations"
)

// Repository handles persistence for user-configured ports
type Repository struct {
	dbPath string
}

// NewRepository creates a port repository on the station database
func NewRepository(dbPath string) *Repository {
	return &Repository{dbPath: dbPath}
}

func (r *Repository) db() (*sql.DB, error) {
	db, err := stations.GetDB(r.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// SavePort saves a port, replacing any port of the same name
func (r *Repository) SavePort(port *models.Port) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	if port.CreatedAt.IsZero() {
		port.CreatedAt = time.Now()
	}

	_, err = db.Exec(`
		INSERT INTO user_ports (name, location, state, city, zipcode, station_id, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			location = excluded.location,
			state = excluded.state,
			city = excluded.city,
			zipcode = excluded.zipcode,
			station_id = excluded.station_id,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			created_at = excluded.created_at
	`,
		port.Name,
		port.Location,
		port.State,
		port.City,
		port.Zipcode,
		port.StationID,
		port.Latitude,
		port.Longitude,
		port.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving port: %w", err)
	}
	return nil
}

const portColumns = "name, location, state, city, zipcode, station_id, latitude, longitude, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanPort(s scanner) (models.Port, error) {
	var p models.Port
	var state, city, zipcode sql.NullString // Handle potential nulls
	if err := s.Scan(&p.Name, &p.Location, &state, &city, &zipcode, &p.StationID, &p.Latitude, &p.Longitude, &p.CreatedAt); err != nil {
		return models.Port{}, err
	}
	p.State = state.String
	p.City = city.String
	p.Zipcode = zipcode.String
	return p, nil
}

// GetPort retrieves one port by name
func (r *Repository) GetPort(name string) (*models.Port, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	p, err := scanPort(db.QueryRow("SELECT "+portColumns+" FROM user_ports WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying port: %w", err)
	}
	return &p, nil
}

// ListPorts retrieves all saved user ports
func (r *Repository) ListPorts() ([]models.Port, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT " + portColumns + " FROM user_ports ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying ports: %w", err)
	}
	defer rows.Close()

	var ports []models.Port
	for rows.Next() {
		p, err := scanPort(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning port: %w", err)
		}
		ports = append(ports, p)
	}
	return ports, rows.Err()
}

// DeletePort removes a port by name
func (r *Repository) DeletePort(name string) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM user_ports WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting port: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return nil
}
