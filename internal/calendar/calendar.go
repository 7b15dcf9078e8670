// Package calendar groups predicted events by local calendar day.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
)

// Date is a local calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Before reports whether d falls on an earlier day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Zone maps an instant to the local calendar day it falls on. Local dates
// need not be monotonic in the instant.
type Zone interface {
	LocalDate(t time.Time) Date
}

// LocationZone resolves local days with the time package's zone rules.
type LocationZone struct {
	Location *time.Location
}

// LocalDate implements Zone.
func (z LocationZone) LocalDate(t time.Time) Date {
	loc := z.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(t.In(loc))
}

// ZoneFunc adapts a plain function to Zone.
type ZoneFunc func(t time.Time) Date

// LocalDate implements Zone.
func (f ZoneFunc) LocalDate(t time.Time) Date { return f(t) }

// Day holds the events that fall on one local date, in display order.
type Day struct {
	Date   Date
	Events []models.Event
}

// Buckets assigns every event to the local day of its corrected instant and
// returns the days in date order. Each event lands in exactly one day.
//
// Events must be given in corrected-instant order. With plain set, each
// day keeps that order. Otherwise extrema and slacks that carry an
// uncorrected instant are ordered by it, and merged with the remaining
// events by corrected instant, so anomalous offsets do not scramble a day.
func Buckets(events []models.Event, zone Zone, plain bool) []Day {
	corrected := make(map[Date][]models.Event)
	uncorrected := make(map[Date][]models.Event)
	for _, e := range events {
		date := zone.LocalDate(e.Time)
		if plain || e.Uncorrected == nil {
			corrected[date] = append(corrected[date], e)
		} else {
			uncorrected[date] = append(uncorrected[date], e)
		}
	}

	dates := make([]Date, 0, len(corrected)+len(uncorrected))
	for d := range corrected {
		dates = append(dates, d)
	}
	for d := range uncorrected {
		if _, ok := corrected[d]; !ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, Day{Date: d, Events: merge(uncorrected[d], corrected[d])})
	}
	return days
}

// merge sorts u by uncorrected instant and interleaves it with c, taking
// whichever head has the earlier corrected instant.
func merge(u, c []models.Event) []models.Event {
	if len(u) == 0 {
		return c
	}
	sort.SliceStable(u, func(i, j int) bool { return u[i].Uncorrected.Before(*u[j].Uncorrected) })

	out := make([]models.Event, 0, len(u)+len(c))
	i, j := 0, 0
	for i < len(u) || j < len(c) {
		switch {
		case i == len(u):
			out = append(out, c[j])
			j++
		case j == len(c):
			out = append(out, u[i])
			i++
		case u[i].Time.Before(c[j].Time):
			out = append(out, u[i])
			i++
		default:
			out = append(out, c[j])
			j++
		}
	}
	return out
}

// Find returns the day for date, if any events fall on it.
func Find(days []Day, date Date) (Day, bool) {
	i := sort.Search(len(days), func(i int) bool { return !days[i].Date.Before(date) })
	if i < len(days) && days[i].Date == date {
		return days[i], true
	}
	return Day{Date: date}, false
}
