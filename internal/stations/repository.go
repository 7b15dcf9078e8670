package stations

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ngmaloney/tidecast/internal/database"
	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/tides"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a station id is not in the store.
var ErrNotFound = errors.New("station not found")

// ErrNoStations is returned when the store holds no stations at all.
var ErrNoStations = fmt.Errorf("no stations stored: %w", ErrNotFound)

// StationInfo represents a stored station with its distance from a point
type StationInfo struct {
	ID        string
	Name      string
	Units     string
	Reference string
	Latitude  *float64
	Longitude *float64
	Distance  float64 // Distance in miles
}

var (
	db      *sql.DB
	once    sync.Once
	initErr error

	// GetDB is a function variable to allow mocking in tests
	GetDB = func(dbPath string) (*sql.DB, error) {
		once.Do(func() {
			db, initErr = database.Open(dbPath)
		})
		return db, initErr
	}
)

const earthRadiusMiles = 3959.0

// HaversineDistance calculates the distance between two points on Earth in miles
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// FindNearbyStations finds located stations near the given coordinates within a max distance.
func FindNearbyStations(dbPath string, lat, lon float64, maxDistanceMiles float64) ([]StationInfo, error) {
	db, err := GetDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A rough bounding box first: 1 degree is about 69 miles.
	latDelta := (maxDistanceMiles / 69.0) * 1.5
	lonDelta := (maxDistanceMiles / (69.0 * math.Max(math.Cos(lat*math.Pi/180), 0.01))) * 1.5

	rows, err := db.Query(`
		SELECT id, name, units, COALESCE(reference_id, ''), latitude, longitude
		FROM stations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, lat-latDelta, lat+latDelta, lon-lonDelta, lon+lonDelta)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var nearby []StationInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		info.Distance = HaversineDistance(lat, lon, *info.Latitude, *info.Longitude)
		if info.Distance <= maxDistanceMiles {
			nearby = append(nearby, info)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}

	if len(nearby) == 0 {
		return nil, fmt.Errorf("no stations found near %.4f, %.4f within %.1f miles: %w", lat, lon, maxDistanceMiles, ErrNotFound)
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby, nil
}

// List returns every stored station ordered by id.
func List(dbPath string) ([]StationInfo, error) {
	db, err := GetDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rows, err := db.Query(`
		SELECT id, name, units, COALESCE(reference_id, ''), latitude, longitude
		FROM stations ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var all []StationInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		all = append(all, info)
	}
	return all, rows.Err()
}

func scanInfo(rows *sql.Rows) (StationInfo, error) {
	var info StationInfo
	var lat, lon sql.NullFloat64
	if err := rows.Scan(&info.ID, &info.Name, &info.Units, &info.Reference, &lat, &lon); err != nil {
		return info, err
	}
	info.Latitude = floatPtr(lat)
	info.Longitude = floatPtr(lon)
	return info, nil
}

// GetDefinition loads one stored station definition.
func GetDefinition(dbPath, stationID string) (*Definition, error) {
	db, err := GetDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	def := &Definition{}
	var tz, ref sql.NullString
	var lat, lon, mark sql.NullFloat64
	err = db.QueryRow(`
		SELECT id, name, timezone, latitude, longitude, units, datum, mark_level, reference_id
		FROM stations WHERE id = ?
	`, stationID).Scan(&def.ID, &def.Name, &tz, &lat, &lon, &def.Units, &def.Datum, &mark, &ref)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("station %s: %w", stationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying station by ID: %w", err)
	}
	def.Timezone = tz.String
	def.Reference = ref.String
	def.Latitude = floatPtr(lat)
	def.Longitude = floatPtr(lon)
	def.MarkLevel = floatPtr(mark)

	if def.Constituents, err = loadConstituents(db, def.ID); err != nil {
		return nil, err
	}
	if def.IsSubordinate() {
		if def.Offsets, err = loadOffsets(db, def.ID); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// Load returns the prediction station for stationID, resolving the
// reference station of subordinate stations.
func Load(dbPath, stationID string) (*tides.Station, error) {
	def, err := GetDefinition(dbPath, stationID)
	if err != nil {
		return nil, err
	}
	var ref *Definition
	if def.IsSubordinate() {
		if ref, err = GetDefinition(dbPath, def.Reference); err != nil {
			return nil, fmt.Errorf("loading reference of %s: %w", stationID, err)
		}
	}
	return def.Station(ref)
}

// UpdateLocation sets the coordinates of a stored station.
func UpdateLocation(dbPath, stationID string, lat, lon float64) error {
	db, err := GetDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	res, err := db.Exec("UPDATE stations SET latitude = ?, longitude = ? WHERE id = ?", lat, lon, stationID)
	if err != nil {
		return fmt.Errorf("updating station %s: %w", stationID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("station %s: %w", stationID, ErrNotFound)
	}
	return nil
}

func loadConstituents(db *sql.DB, stationID string) ([]harmonics.Constituent, error) {
	rows, err := db.Query(`
		SELECT name, speed, amplitude, phase, first_year, node_factors, equilibrium_args
		FROM constituents WHERE station_id = ? ORDER BY position
	`, stationID)
	if err != nil {
		return nil, fmt.Errorf("querying constituents: %w", err)
	}
	defer rows.Close()

	var out []harmonics.Constituent
	for rows.Next() {
		var c harmonics.Constituent
		var nodes, args sql.NullString
		if err := rows.Scan(&c.Name, &c.Speed, &c.Amplitude, &c.Phase, &c.FirstYear, &nodes, &args); err != nil {
			return nil, fmt.Errorf("scanning constituent: %w", err)
		}
		if c.NodeFactors, err = decodeTable(nodes); err != nil {
			return nil, fmt.Errorf("constituent %s node factors: %w", c.Name, err)
		}
		if c.EquilibriumArgs, err = decodeTable(args); err != nil {
			return nil, fmt.Errorf("constituent %s equilibrium args: %w", c.Name, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadOffsets(db *sql.DB, stationID string) (*tides.Offsets, error) {
	var maxAdd, minAdd int64
	var flood, ebb sql.NullInt64
	o := &tides.Offsets{}
	err := db.QueryRow(`
		SELECT max_time_add, min_time_add, flood_begins, ebb_begins,
		       max_level_multiply, min_level_multiply, max_level_add, min_level_add
		FROM station_offsets WHERE station_id = ?
	`, stationID).Scan(&maxAdd, &minAdd, &flood, &ebb,
		&o.MaxLevelMultiply, &o.MinLevelMultiply, &o.MaxLevelAdd, &o.MinLevelAdd)
	if err == sql.ErrNoRows {
		return o, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying offsets: %w", err)
	}
	o.MaxTimeAdd = time.Duration(maxAdd) * time.Second
	o.MinTimeAdd = time.Duration(minAdd) * time.Second
	o.FloodBegins = durationPtr(flood)
	o.EbbBegins = durationPtr(ebb)
	return o, nil
}

func decodeTable(s sql.NullString) ([]float64, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func encodeTable(v []float64) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func durationPtr(v sql.NullInt64) *time.Duration {
	if !v.Valid {
		return nil
	}
	d := time.Duration(v.Int64) * time.Second
	return &d
}
