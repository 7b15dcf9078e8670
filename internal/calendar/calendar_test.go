package calendar

import (
	"sort"
	"testing"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func ev(typ models.EventType, t time.Time) models.Event {
	return models.Event{Time: t, Type: typ}
}

func corr(typ models.EventType, t, uncorrected time.Time) models.Event {
	e := ev(typ, t)
	e.Uncorrected = models.Instant(uncorrected)
	return e
}

func flatten(days []Day) []models.Event {
	var out []models.Event
	for _, d := range days {
		out = append(out, d.Events...)
	}
	return out
}

func utc() Zone { return LocationZone{Location: time.UTC} }

func TestDate(t *testing.T) {
	d := Date{2025, time.February, 28}
	assert.Equal(t, Date{2025, time.March, 1}, d.AddDays(1))
	assert.Equal(t, Date{2024, time.December, 31}, Date{2025, time.January, 1}.AddDays(-1))
	assert.True(t, d.Before(Date{2025, time.March, 1}))
	assert.False(t, d.Before(d))
	assert.Equal(t, "2025-02-28", d.String())
	assert.Equal(t, time.Friday, d.Weekday())
}

func TestBucketsReferenceStationIsPlainSort(t *testing.T) {
	events := []models.Event{
		ev(models.EventMax, at(3, 10)),
		ev(models.EventSunrise, at(5, 40)),
		ev(models.EventMin, at(9, 25)),
		ev(models.EventMax, at(15, 30)),
		ev(models.EventMin, at(21, 50)),
		ev(models.EventMax, at(27, 55)),
		ev(models.EventSunset, at(44, 5)),
	}
	want := append([]models.Event(nil), events...)
	sort.SliceStable(want, func(i, j int) bool { return want[i].Time.Before(want[j].Time) })

	for _, plain := range []bool{false, true} {
		days := Buckets(events, utc(), plain)
		require.Len(t, days, 2)
		assert.Equal(t, DateOf(base), days[0].Date)
		assert.Equal(t, want, flatten(days))
	}
}

func TestBucketsMergesUncorrectedOrder(t *testing.T) {
	// A weak minimum whose offset places it before the preceding maximum.
	b := corr(models.EventMin, at(9, 30), at(9, 40))
	c := ev(models.EventSunrise, at(9, 45))
	a := corr(models.EventMax, at(10, 0), at(9, 0))
	events := []models.Event{b, c, a}

	tests := []struct {
		name  string
		plain bool
		want  []models.Event
	}{
		{"merged", false, []models.Event{c, a, b}},
		{"plain", true, []models.Event{b, c, a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := Buckets(events, utc(), tt.plain)
			require.Len(t, days, 1)
			assert.Equal(t, tt.want, days[0].Events)
		})
	}
}

func TestBucketsTwoSunsetsInOneDay(t *testing.T) {
	// Local clocks fall back 2 hours at 23:00 UTC, so the local day is 26
	// hours long and catches two sunsets.
	shift := at(23, 0)
	zone := ZoneFunc(func(t time.Time) Date {
		if t.Before(shift) {
			return DateOf(t)
		}
		return DateOf(t.Add(-2 * time.Hour))
	})

	first := ev(models.EventSunset, at(0, 30))
	second := ev(models.EventSunset, at(24, 40))
	rise := ev(models.EventSunrise, at(12, 0))
	days := Buckets([]models.Event{first, rise, second}, zone, false)

	require.Len(t, days, 1)
	var sunsets []models.Event
	for _, e := range days[0].Events {
		if e.Type == models.EventSunset {
			sunsets = append(sunsets, e)
		}
	}
	require.Len(t, sunsets, 2)
	assert.True(t, sunsets[0].Time.Before(sunsets[1].Time))
}

func TestBucketsRepeatedLocalDay(t *testing.T) {
	// At 12:00 UTC on the second day local time jumps back a full day, so
	// the local date of that day occurs twice.
	jump := at(36, 0)
	zone := ZoneFunc(func(t time.Time) Date {
		if t.Before(jump) {
			return DateOf(t)
		}
		return DateOf(t.Add(-24 * time.Hour))
	})

	var events []models.Event
	for h := 0; h < 96; h++ {
		typ := models.EventMax
		if h%2 == 1 {
			typ = models.EventMin
		}
		e := ev(typ, at(h, 0))
		if h%3 == 0 {
			e.Uncorrected = models.Instant(e.Time.Add(-20 * time.Minute))
		}
		events = append(events, e)
	}

	for _, plain := range []bool{false, true} {
		days := Buckets(events, zone, plain)
		seen := make(map[time.Time]int)
		for i, d := range days {
			if i > 0 {
				assert.True(t, days[i-1].Date.Before(d.Date))
			}
			for _, e := range d.Events {
				assert.Equal(t, d.Date, zone.LocalDate(e.Time))
				seen[e.Time]++
			}
		}
		assert.Len(t, seen, len(events))
		for tm, n := range seen {
			assert.Equalf(t, 1, n, "event at %s bucketed %d times", tm, n)
		}
	}
}

func TestBucketsDSTFallBack(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone unavailable: %v", err)
	}
	start := time.Date(2025, 11, 2, 0, 0, 0, 0, loc)
	var events []models.Event
	for tm := start; tm.Before(start.Add(48 * time.Hour)); tm = tm.Add(time.Hour) {
		events = append(events, ev(models.EventRawSample, tm))
	}

	days := Buckets(events, LocationZone{Location: loc}, true)
	require.Len(t, days, 2)
	assert.Len(t, days[0].Events, 25)
	assert.Len(t, days[1].Events, 23)
}

func TestFind(t *testing.T) {
	days := Buckets([]models.Event{
		ev(models.EventMax, at(1, 0)),
		ev(models.EventMax, at(49, 0)),
	}, utc(), false)

	d, ok := Find(days, DateOf(base).AddDays(2))
	assert.True(t, ok)
	assert.Len(t, d.Events, 1)

	d, ok = Find(days, DateOf(base).AddDays(1))
	assert.False(t, ok)
	assert.Empty(t, d.Events)
}
