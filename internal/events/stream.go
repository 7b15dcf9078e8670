// Package events holds time-ordered collections of predicted events.
package events

import (
	"fmt"
	"sort"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
)

// Filter narrows what a Source produces.
type Filter int

const (
	// AllEvents includes tide, mark, slack and sun/moon events.
	AllEvents Filter = iota
	// KnownTideEvents includes extrema and the slacks that carry an
	// uncorrected instant; no marks and no sun/moon events.
	KnownTideEvents
	// MaxMinOnly includes only extrema.
	MaxMinOnly
)

func (f Filter) String() string {
	switch f {
	case AllEvents:
		return "all"
	case KnownTideEvents:
		return "known"
	case MaxMinOnly:
		return "maxmin"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// Direction selects which end of a stream Extend grows.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Source produces the events whose instants fall in [start, end).
type Source func(start, end time.Time, filter Filter, emit func(models.Event))

// Stream is a time-ordered multi-map of events. Events with equal instants
// keep their insertion order. A Stream is not safe for concurrent use.
type Stream struct {
	source Source
	margin time.Duration
	filter Filter
	events []models.Event
}

// New returns an empty stream fed by source. Two events of the same type
// closer than margin are treated as duplicates.
func New(source Source, margin time.Duration) *Stream {
	return &Stream{source: source, margin: margin}
}

// Add inserts e unless an event of the same type already lies within the
// safety margin of it. It reports whether e was inserted.
func (s *Stream) Add(e models.Event) bool {
	lo := s.LowerBound(e.Time.Add(-s.margin))
	for i := lo; i < len(s.events) && s.events[i].Time.Sub(e.Time) < s.margin; i++ {
		if s.events[i].Type != e.Type {
			continue
		}
		if d := s.events[i].Time.Sub(e.Time); d > -s.margin && d < s.margin {
			return false
		}
	}

	i := s.UpperBound(e.Time)
	s.events = append(s.events, models.Event{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = e
	return true
}

// Len returns the number of events.
func (s *Stream) Len() int { return len(s.events) }

// At returns the i-th event in time order.
func (s *Stream) At(i int) models.Event { return s.events[i] }

// All returns a copy of every event in time order.
func (s *Stream) All() []models.Event {
	return append([]models.Event(nil), s.events...)
}

// LowerBound returns the index of the first event not before t.
func (s *Stream) LowerBound(t time.Time) int {
	return sort.Search(len(s.events), func(i int) bool {
		return !s.events[i].Time.Before(t)
	})
}

// UpperBound returns the index of the first event after t.
func (s *Stream) UpperBound(t time.Time) int {
	return sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Time.After(t)
	})
}

// RangeFrom returns the events with start <= Time < end.
func (s *Stream) RangeFrom(start, end time.Time) []models.Event {
	lo, hi := s.LowerBound(start), s.LowerBound(end)
	if lo >= hi {
		return nil
	}
	return append([]models.Event(nil), s.events[lo:hi]...)
}

// First returns the earliest event.
func (s *Stream) First() (models.Event, bool) {
	if len(s.events) == 0 {
		return models.Event{}, false
	}
	return s.events[0], true
}

// Last returns the latest event.
func (s *Stream) Last() (models.Event, bool) {
	if len(s.events) == 0 {
		return models.Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// Populate asks the source for [start, end) and adds what it emits. The
// filter is remembered for later calls to Extend.
func (s *Stream) Populate(start, end time.Time, filter Filter) {
	s.filter = filter
	if !start.Before(end) {
		return
	}
	s.source(start, end, filter, func(e models.Event) { s.Add(e) })
}

// Extend grows the stream by amount past its last event (Forward) or before
// its first event (Backward). The requested range overlaps the existing end
// by the safety margin so nothing on the seam is lost; duplicates produced
// there are suppressed by Add. Extend panics on an empty stream or a
// non-positive amount.
func (s *Stream) Extend(direction Direction, amount time.Duration) {
	if amount <= 0 {
		panic(fmt.Sprintf("events: non-positive extension %v", amount))
	}
	if len(s.events) == 0 {
		panic("events: cannot extend an empty stream")
	}

	var start, end time.Time
	if direction == Forward {
		start = s.events[len(s.events)-1].Time
		end = start.Add(amount)
		start = start.Add(-s.margin)
	} else {
		end = s.events[0].Time
		start = end.Add(-amount)
		end = end.Add(s.margin)
	}
	s.source(start, end, s.filter, func(e models.Event) { s.Add(e) })
}
