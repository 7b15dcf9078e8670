// Package render writes predictions as text, CSV or JSON. It relies only on
// the capabilities an event exposes, never on how it was produced.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/tidecast/internal/calendar"
	"github.com/ngmaloney/tidecast/internal/models"
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat accepts text, csv or json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, CSV, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorMuted   = lipgloss.Color("#6C757D")
	colorSun     = lipgloss.Color("#FFD93D")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMuted)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	skyStyle   = lipgloss.NewStyle().Foreground(colorSun)
)

// Renderer formats events for one local timezone.
type Renderer struct {
	// Location is the zone instants are shown in; nil means UTC.
	Location *time.Location
	// Styled enables terminal colours in text output.
	Styled bool
}

func (r Renderer) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Renderer) style(s lipgloss.Style, text string) string {
	if !r.Styled {
		return text
	}
	return s.Render(text)
}

// Events writes a prediction as a flat event list.
func (r Renderer) Events(w io.Writer, pred models.Prediction, format Format) error {
	switch format {
	case JSON:
		return writeJSON(w, pred)
	case CSV:
		return r.writeCSV(w, pred, []calendar.Day{{Events: pred.Events}}, false)
	}

	var b strings.Builder
	b.WriteString(r.header(pred))
	if len(pred.Events) == 0 {
		b.WriteString(r.style(mutedStyle, "No events in range") + "\n")
	}
	for _, e := range pred.Events {
		b.WriteString(r.line(e, pred.Units, "2006-01-02 15:04 MST") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Calendar writes events grouped by local day.
func (r Renderer) Calendar(w io.Writer, pred models.Prediction, days []calendar.Day, format Format) error {
	switch format {
	case JSON:
		return writeJSON(w, calendarDoc(pred, days))
	case CSV:
		return r.writeCSV(w, pred, days, true)
	}

	var b strings.Builder
	b.WriteString(r.header(pred))
	for _, d := range days {
		label := time.Date(d.Date.Year, d.Date.Month, d.Date.Day, 12, 0, 0, 0, time.UTC).Format("Monday Jan 2, 2006")
		b.WriteString("\n" + r.style(labelStyle, label) + "\n")
		for _, e := range d.Events {
			b.WriteString("  " + r.line(e, pred.Units, "15:04 MST") + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r Renderer) header(pred models.Prediction) string {
	title := pred.StationName
	if pred.StationID != "" {
		title = fmt.Sprintf("%s (%s)", title, pred.StationID)
	}
	return r.style(titleStyle, title) + "\n"
}

func (r Renderer) line(e models.Event, units, layout string) string {
	when := e.Time.In(r.loc()).Format(layout)
	desc := fmt.Sprintf("%-22s", e.Description())
	if e.Category() == models.CategoryCelestial {
		return fmt.Sprintf("%s  %s", when, r.style(skyStyle, strings.TrimRight(desc, " ")))
	}
	return fmt.Sprintf("%s  %s %s", when, desc, FormatLevel(e, units))
}

// FormatLevel renders an event's level with its units, or "" when the event
// has none.
func FormatLevel(e models.Event, units string) string {
	if e.Level == nil {
		return ""
	}
	return fmt.Sprintf("%6.2f %s", *e.Level, units)
}

var csvHeader = []string{"station", "date", "time", "type", "description", "level", "units"}

func (r Renderer) writeCSV(w io.Writer, pred models.Prediction, days []calendar.Day, byDay bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, d := range days {
		for _, e := range d.Events {
			local := e.Time.In(r.loc())
			date := local.Format("2006-01-02")
			if byDay {
				date = d.Date.String()
			}
			level, units := "", ""
			if e.Level != nil {
				level = strconv.FormatFloat(*e.Level, 'f', 3, 64)
				units = pred.Units
			}
			rec := []string{pred.StationID, date, local.Format("15:04:05 MST"), string(e.Type), e.Description(), level, units}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type dayDoc struct {
	Date   string         `json:"date"`
	Events []models.Event `json:"events"`
}

type calendarJSON struct {
	RequestID   string    `json:"request_id"`
	StationID   string    `json:"station_id"`
	StationName string    `json:"station_name"`
	Units       string    `json:"units"`
	Days        []dayDoc  `json:"days"`
	GeneratedAt time.Time `json:"generated_at"`
}

func calendarDoc(pred models.Prediction, days []calendar.Day) calendarJSON {
	doc := calendarJSON{
		RequestID:   pred.RequestID,
		StationID:   pred.StationID,
		StationName: pred.StationName,
		Units:       pred.Units,
		Days:        make([]dayDoc, 0, len(days)),
		GeneratedAt: pred.GeneratedAt,
	}
	for _, d := range days {
		doc.Days = append(doc.Days, dayDoc{Date: d.Date.String(), Events: d.Events})
	}
	return doc
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
