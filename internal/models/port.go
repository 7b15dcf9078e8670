package models

import "time"

// Port is a user-named place bound to its nearest tide station, so the
// place name can stand in for a station id.
type Port struct {
	Name      string    `json:"name"`       // User-friendly name
	Location  string    `json:"location"`   // What the user typed, e.g. "Chatham, MA"
	State     string    `json:"state"`      // State (e.g. "MA")
	City      string    `json:"city"`       // City (e.g. "Chatham")
	Zipcode   string    `json:"zipcode"`    // Zipcode (e.g. "02633")
	StationID string    `json:"station_id"` // Nearest station (e.g. "8447435")
	Distance  float64   `json:"distance"`   // Miles to the station, not stored
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}
