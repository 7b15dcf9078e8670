package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ngmaloney/tidecast/internal/calendar"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/render"
)

// monthGrid renders the displayed month, weeks starting on Sunday.
func (m Model) monthGrid() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s %d", m.month.Month, m.month.Year)))
	b.WriteString("\n")
	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%4s", wd)))
	}
	b.WriteString("\n")

	today := calendar.DateOf(m.now().In(m.loc))
	d := m.month.AddDays(-int(m.month.Weekday()))
	for week := 0; week < 6; week++ {
		for i := 0; i < 7; i++ {
			b.WriteString(m.dayCell(d, today))
			d = d.AddDays(1)
		}
		b.WriteString("\n")
		if d.Month != m.month.Month {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) dayCell(d, today calendar.Date) string {
	text := fmt.Sprintf("%d", d.Day)
	switch {
	case d == m.selected:
		return selectedDayStyle.Render(text)
	case d.Month != m.month.Month:
		return outsideDayStyle.Render(text)
	case d == today:
		return todayStyle.Render(text)
	}
	return dayStyle.Render(text)
}

// dayContent lists the events of the selected day.
func (m Model) dayContent() string {
	label := time.Date(m.selected.Year, m.selected.Month, m.selected.Day, 12, 0, 0, 0, time.UTC).Format("Monday, Jan 2")
	lines := []string{labelStyle.Render(label), ""}

	day, ok := calendar.Find(m.days, m.selected)
	if !ok || len(day.Events) == 0 {
		lines = append(lines, mutedStyle.Render("No events"))
		return strings.Join(lines, "\n")
	}
	for _, e := range day.Events {
		lines = append(lines, m.eventLine(e))
	}
	return strings.Join(lines, "\n")
}

func (m Model) eventLine(e models.Event) string {
	when := valueStyle.Render(e.Time.In(m.loc).Format("3:04 PM"))
	desc := fmt.Sprintf("%-20s", e.Description())
	switch {
	case e.Category() == models.CategoryCelestial:
		return fmt.Sprintf("%8s  %s", when, skyStyle.Render(strings.TrimRight(desc, " ")))
	case e.Type == models.EventMax:
		desc = highStyle.Render(desc)
	case e.Type == models.EventMin:
		desc = lowStyle.Render(desc)
	}
	line := fmt.Sprintf("%8s  %s %s", when, desc, render.FormatLevel(e, m.pred.Units))
	if up, ok := m.predictor.Daylight(e.Time); ok {
		marker := "night"
		if up {
			marker = "day"
		}
		line += "  " + mutedStyle.Render(marker)
	}
	return line
}
