// Package locations reads station coordinates from point shapefiles and
// applies them to the station store.
package locations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/ngmaloney/tidecast/internal/stations"
	"go.uber.org/zap"
)

// Point is one located station read from a shapefile.
type Point struct {
	StationID string
	Latitude  float64
	Longitude float64
}

// ReadPoints returns every point record of the shapefile at path. idField
// names the DBF column holding the station id; empty means the first
// column. Non-point shapes and records without an id are skipped.
func ReadPoints(path, idField string) ([]Point, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	col, err := fieldIndex(shape.Fields(), idField)
	if err != nil {
		return nil, err
	}

	var points []Point
	for shape.Next() {
		n, p := shape.Shape()

		var x, y float64
		switch pt := p.(type) {
		case *shp.Point:
			x, y = pt.X, pt.Y
		case *shp.PointZ:
			x, y = pt.X, pt.Y
		case *shp.PointM:
			x, y = pt.X, pt.Y
		default:
			continue
		}

		id := strings.TrimRight(shape.ReadAttribute(n, col), "\x00 ")
		if id == "" {
			continue
		}
		points = append(points, Point{StationID: id, Latitude: y, Longitude: x})
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile: %w", err)
	}
	return points, nil
}

func fieldIndex(fields []shp.Field, name string) (int, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("shapefile has no attribute table")
	}
	if name == "" {
		return 0, nil
	}
	for i, f := range fields {
		if strings.EqualFold(f.String(), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("shapefile has no field %q", name)
}

// Result summarises one import run.
type Result struct {
	Updated int
	Unknown []string
}

// Import reads src (a .shp file, a .zip holding one, or an http(s) URL of
// either) and updates the coordinates of every known station in the store.
// Points naming stations the store does not hold are reported in
// Result.Unknown.
func Import(dbPath, src, idField string, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	workDir, err := os.MkdirTemp("", "tidecast-locations")
	if err != nil {
		return Result{}, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	shapefilePath, err := fetch(src, workDir, logger)
	if err != nil {
		return Result{}, err
	}

	points, err := ReadPoints(shapefilePath, idField)
	if err != nil {
		return Result{}, err
	}
	logger.Info("read station locations", zap.String("source", src), zap.Int("points", len(points)))

	var res Result
	for _, p := range points {
		err := stations.UpdateLocation(dbPath, p.StationID, p.Latitude, p.Longitude)
		if errors.Is(err, stations.ErrNotFound) {
			logger.Warn("location for unknown station", zap.String("station", p.StationID))
			res.Unknown = append(res.Unknown, p.StationID)
			continue
		}
		if err != nil {
			return res, err
		}
		res.Updated++
	}
	return res, nil
}

// fetch resolves src to a local .shp path, downloading and extracting into
// workDir as needed.
func fetch(src, workDir string, logger *zap.Logger) (string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		local := filepath.Join(workDir, filepath.Base(src))
		logger.Info("downloading station locations", zap.String("url", src))
		if err := downloadFile(local, src); err != nil {
			return "", fmt.Errorf("downloading shapefile: %w", err)
		}
		src = local
	}

	if !strings.EqualFold(filepath.Ext(src), ".zip") {
		return src, nil
	}

	extractDir := filepath.Join(workDir, "extract")
	if err := unzipFile(src, extractDir); err != nil {
		return "", fmt.Errorf("extracting shapefile: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(extractDir, "*.shp"))
	if err != nil {
		return "", err
	}
	if len(matches) != 1 {
		return "", fmt.Errorf("expected one .shp in %s, found %d", filepath.Base(src), len(matches))
	}
	return matches[0], nil
}
