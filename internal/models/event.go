package models

import (
	"fmt"
	"time"
)

// EventType identifies what happened at an event instant
type EventType string

const (
	EventMax          EventType = "max"
	EventMin          EventType = "min"
	EventSlackRise    EventType = "slackrise"
	EventSlackFall    EventType = "slackfall"
	EventMarkRise     EventType = "markrise"
	EventMarkFall     EventType = "markfall"
	EventSunrise      EventType = "sunrise"
	EventSunset       EventType = "sunset"
	EventMoonrise     EventType = "moonrise"
	EventMoonset      EventType = "moonset"
	EventNewMoon      EventType = "newmoon"
	EventFirstQuarter EventType = "firstquarter"
	EventFullMoon     EventType = "fullmoon"
	EventLastQuarter  EventType = "lastquarter"
	EventRawSample    EventType = "rawsample"
)

// Category groups event types for filtering and rendering
type Category int

const (
	CategoryTide Category = iota
	CategoryCelestial
	CategoryRaw
)

// Event is a single predicted occurrence at a station.
//
// Level is nil for sun and moon events. Uncorrected carries the instant the
// reference model produced before subordinate-station offsets were applied,
// and is nil for reference stations, interpolated events and sun/moon events.
type Event struct {
	Time             time.Time  `json:"time"`
	Type             EventType  `json:"type"`
	Level            *float64   `json:"level,omitempty"`
	Uncorrected      *time.Time `json:"uncorrected_time,omitempty"`
	UncorrectedLevel *float64   `json:"uncorrected_level,omitempty"`
	IsCurrent        bool       `json:"is_current,omitempty"`
}

// Category returns the broad class of the event
func (e Event) Category() Category {
	switch {
	case e.Type == EventRawSample:
		return CategoryRaw
	case e.IsSunMoon():
		return CategoryCelestial
	default:
		return CategoryTide
	}
}

// IsSunMoon reports whether the event is a sun, moon or lunar phase event
func (e Event) IsSunMoon() bool {
	switch e.Type {
	case EventSunrise, EventSunset, EventMoonrise, EventMoonset,
		EventNewMoon, EventFirstQuarter, EventFullMoon, EventLastQuarter:
		return true
	}
	return false
}

// IsMaxMin reports whether the event is a level extremum
func (e Event) IsMaxMin() bool {
	return e.Type == EventMax || e.Type == EventMin
}

// IsMinCurrent reports whether the event is the weakest point of a tidal
// current: a maximum that stays in ebb or a minimum that stays in flood.
func (e Event) IsMinCurrent() bool {
	if !e.IsCurrent || e.Level == nil {
		return false
	}
	switch e.Type {
	case EventMax:
		return *e.Level < 0
	case EventMin:
		return *e.Level > 0
	}
	return false
}

// LevelValue returns the level or 0 when the event has none
func (e Event) LevelValue() float64 {
	if e.Level == nil {
		return 0
	}
	return *e.Level
}

// Description returns the human label used by every renderer
func (e Event) Description() string {
	level := e.LevelValue()
	switch e.Type {
	case EventMax:
		if e.IsCurrent {
			if level >= 0 {
				return "Max Flood"
			}
			return "Min Ebb"
		}
		return "High Tide"
	case EventMin:
		if e.IsCurrent {
			if level <= 0 {
				return "Max Ebb"
			}
			return "Min Flood"
		}
		return "Low Tide"
	case EventSlackRise:
		return "Slack, Flood Begins"
	case EventSlackFall:
		return "Slack, Ebb Begins"
	case EventMarkRise:
		if e.IsCurrent {
			switch {
			case level < 0:
				return "Mark, Ebb Decreasing"
			case level > 0:
				return "Mark, Flood Increasing"
			default:
				return "Mark, Flood Begins"
			}
		}
		return "Mark Rising"
	case EventMarkFall:
		if e.IsCurrent {
			switch {
			case level < 0:
				return "Mark, Ebb Increasing"
			case level > 0:
				return "Mark, Flood Decreasing"
			default:
				return "Mark, Ebb Begins"
			}
		}
		return "Mark Falling"
	case EventSunrise:
		return "Sunrise"
	case EventSunset:
		return "Sunset"
	case EventMoonrise:
		return "Moonrise"
	case EventMoonset:
		return "Moonset"
	case EventNewMoon:
		return "New Moon"
	case EventFirstQuarter:
		return "First Quarter"
	case EventFullMoon:
		return "Full Moon"
	case EventLastQuarter:
		return "Last Quarter"
	case EventRawSample:
		return "Raw"
	}
	return fmt.Sprintf("Event(%s)", string(e.Type))
}

// Float returns a pointer to v, for filling optional event fields
func Float(v float64) *float64 {
	return &v
}

// Instant returns a pointer to t, for filling optional event fields
func Instant(t time.Time) *time.Time {
	return &t
}

// Coordinates is a geographic position in decimal degrees, east positive
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Prediction is the result of one prediction request for a station
type Prediction struct {
	RequestID   string    `json:"request_id"`
	StationID   string    `json:"station_id"`
	StationName string    `json:"station_name"`
	Units       string    `json:"units"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Events      []Event   `json:"events"` // Ordered by time
	GeneratedAt time.Time `json:"generated_at"`
}
