package stations

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var provisionMu sync.Mutex

// NeedsProvisioning checks if the station database has no stations yet.
// Opening the store creates it, so a missing file reports true.
func NeedsProvisioning(dbPath string) (bool, error) {
	db, err := GetDB(dbPath)
	if err != nil {
		return false, fmt.Errorf("opening database: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM stations").Scan(&count); err != nil {
		return false, fmt.Errorf("counting stations: %w", err)
	}
	return count == 0, nil
}

// Save stores station definitions, replacing any with the same id.
func Save(dbPath string, defs ...Definition) error {
	return ProvisionStationsDatabase(dbPath, defs, nil)
}

// ProvisionStationsDatabase validates defs and writes them to the store in a
// single transaction. Progress messages go to progressChan when it is set
// and to the global logger otherwise.
func ProvisionStationsDatabase(dbPath string, defs []Definition, progressChan chan<- string) error {
	provisionMu.Lock()
	defer provisionMu.Unlock()

	sendProgress := func(msg string) {
		if progressChan != nil {
			progressChan <- msg
		} else {
			zap.L().Info(msg)
		}
	}

	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			return fmt.Errorf("validating definitions: %w", err)
		}
	}

	db, err := GetDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	sendProgress(fmt.Sprintf("Importing %d stations into %s...", len(defs), dbPath))
	if err := buildStationsDatabase(db, defs, sendProgress); err != nil {
		return fmt.Errorf("building database: %w", err)
	}
	sendProgress(fmt.Sprintf("Successfully imported %d stations", len(defs)))
	return nil
}

// buildStationsDatabase inserts station rows with their constituents and offsets
func buildStationsDatabase(db *sql.DB, defs []Definition, progress func(string)) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on error

	stationStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO stations
			(id, name, timezone, latitude, longitude, units, datum, mark_level, reference_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stationStmt.Close()

	constStmt, err := tx.Prepare(`
		INSERT INTO constituents
			(station_id, position, name, speed, amplitude, phase, first_year, node_factors, equilibrium_args)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer constStmt.Close()

	for n, d := range defs {
		if _, err := stationStmt.Exec(d.ID, d.Name, nullString(d.Timezone), d.Latitude, d.Longitude,
			d.Units, d.Datum, d.MarkLevel, nullString(d.Reference)); err != nil {
			return fmt.Errorf("inserting station %s: %w", d.ID, err)
		}

		if _, err := tx.Exec("DELETE FROM constituents WHERE station_id = ?", d.ID); err != nil {
			return fmt.Errorf("clearing constituents of %s: %w", d.ID, err)
		}
		for i, c := range d.Constituents {
			nodes, err := encodeTable(c.NodeFactors)
			if err != nil {
				return fmt.Errorf("encoding node factors of %s/%s: %w", d.ID, c.Name, err)
			}
			args, err := encodeTable(c.EquilibriumArgs)
			if err != nil {
				return fmt.Errorf("encoding equilibrium args of %s/%s: %w", d.ID, c.Name, err)
			}
			if _, err := constStmt.Exec(d.ID, i, c.Name, c.Speed, c.Amplitude, c.Phase, c.FirstYear, nodes, args); err != nil {
				return fmt.Errorf("inserting constituent %s/%s: %w", d.ID, c.Name, err)
			}
		}

		if _, err := tx.Exec("DELETE FROM station_offsets WHERE station_id = ?", d.ID); err != nil {
			return fmt.Errorf("clearing offsets of %s: %w", d.ID, err)
		}
		if o := d.Offsets; o != nil {
			_, err := tx.Exec(`
				INSERT INTO station_offsets
					(station_id, max_time_add, min_time_add, flood_begins, ebb_begins,
					 max_level_multiply, min_level_multiply, max_level_add, min_level_add)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, d.ID, int64(o.MaxTimeAdd.Seconds()), int64(o.MinTimeAdd.Seconds()),
				seconds(o.FloodBegins), seconds(o.EbbBegins),
				o.MaxLevelMultiply, o.MinLevelMultiply, o.MaxLevelAdd, o.MinLevelAdd)
			if err != nil {
				return fmt.Errorf("inserting offsets of %s: %w", d.ID, err)
			}
		}

		if (n+1)%500 == 0 {
			progress(fmt.Sprintf("Inserted %d stations...", n+1))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func seconds(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(d.Seconds()), Valid: true}
}
