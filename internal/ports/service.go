package ports

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/stations"
)

// DefaultRadius is how far, in miles, CreatePort looks for a station.
const DefaultRadius = 50.0

// Service orchestrates port operations
type Service struct {
	dbPath   string
	repo     *Repository
	geocoder Geocoder
}

// NewService creates a port service on the station database
func NewService(dbPath string, geocoder Geocoder) *Service {
	return &Service{
		dbPath:   dbPath,
		repo:     NewRepository(dbPath),
		geocoder: geocoder,
	}
}

// CreatePort geocodes location, binds it to the nearest station within
// radius miles and saves it under name.
func (s *Service) CreatePort(ctx context.Context, name, location string, radius float64) (*models.Port, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("port name cannot be empty")
	}

	// 1. Geocode the location to get Lat/Lon
	loc, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("geocoding location: %w", err)
	}

	// 2. Find the nearest tide station
	nearby, err := stations.FindNearbyStations(s.dbPath, loc.Latitude, loc.Longitude, radius)
	if err != nil {
		return nil, fmt.Errorf("finding tide stations: %w", err)
	}
	nearest := nearby[0]

	// 3. Construct the Port object
	port := &models.Port{
		Name:      name,
		Location:  strings.TrimSpace(location),
		StationID: nearest.ID,
		Distance:  nearest.Distance,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
	populateLocationFields(port, location)

	// 4. Save to database
	if err := s.repo.SavePort(port); err != nil {
		return nil, err
	}
	return port, nil
}

// GetPort retrieves a saved port
func (s *Service) GetPort(name string) (*models.Port, error) {
	return s.repo.GetPort(name)
}

// ListPorts retrieves all saved ports
func (s *Service) ListPorts() ([]models.Port, error) {
	return s.repo.ListPorts()
}

// DeletePort removes a saved port
func (s *Service) DeletePort(name string) error {
	return s.repo.DeletePort(name)
}

var zipRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// populateLocationFields parses the input string to set City, State, or Zipcode
func populateLocationFields(port *models.Port, input string) {
	input = strings.TrimSpace(input)

	if zipRegex.MatchString(input) {
		port.Zipcode = input
		return
	}

	// Assuming "City, State" format
	if city, state, ok := strings.Cut(input, ","); ok {
		port.City = strings.TrimSpace(city)
		port.State = strings.TrimSpace(state)
		return
	}
	port.City = input
}
