package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/tidecast/internal/calendar"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/models"
)

// monthLoadedMsg is sent when the events of a month have been predicted
type monthLoadedMsg struct {
	month calendar.Date
	pred  models.Prediction
	days  []calendar.Day
}

// loadMonth predicts the whole local month containing first.
func loadMonth(p Predictor, loc *time.Location, first calendar.Date, plain bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Date(first.Year, first.Month, 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0)
		pred := p.Predict(start, end, events.AllEvents)
		return monthLoadedMsg{
			month: first,
			pred:  pred,
			days:  calendar.Buckets(pred.Events, calendar.LocationZone{Location: loc}, plain),
		}
	}
}
