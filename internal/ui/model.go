// Package ui is the interactive month calendar of one station.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/tidecast/internal/calendar"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/models"
)

// Predictor produces the events shown in the calendar.
type Predictor interface {
	Predict(start, end time.Time, filter events.Filter) models.Prediction
	Daylight(t time.Time) (up, ok bool)
}

// AppState represents the current state of the application
type AppState int

const (
	StateLoading AppState = iota // Predicting the displayed month
	StateDisplay                 // Month grid and day events
)

const (
	gridWidth    = 7*4 + 2
	minDayHeight = 5
)

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int

	predictor Predictor
	loc       *time.Location
	plain     bool
	now       func() time.Time

	month    calendar.Date // first of the displayed month
	selected calendar.Date
	pred     models.Prediction
	days     []calendar.Day

	spinner  spinner.Model
	viewport viewport.Model
	keys     keyMap
	help     help.Model
}

// NewModel creates a calendar opened on the month of start. plain keeps
// subordinate station events in corrected time order.
func NewModel(p Predictor, loc *time.Location, start time.Time, plain bool) Model {
	if loc == nil {
		loc = time.UTC
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	selected := calendar.DateOf(start.In(loc))
	return Model{
		state:     StateLoading,
		predictor: p,
		loc:       loc,
		plain:     plain,
		now:       time.Now,
		month:     firstOfMonth(selected),
		selected:  selected,
		spinner:   s,
		viewport:  viewport.New(gridWidth, minDayHeight),
		keys:      keys,
		help:      help.New(),
	}
}

func firstOfMonth(d calendar.Date) calendar.Date {
	return calendar.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// Init starts predicting the first month
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadMonth(m.predictor, m.loc, m.month, m.plain))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeViewport()
		return m, nil

	case monthLoadedMsg:
		// Ignore results for a month we have already left.
		if msg.month != m.month {
			return m, nil
		}
		m.pred = msg.pred
		m.days = msg.days
		m.state = StateDisplay
		m.refreshDay()
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeViewport()
		return m, nil
	case key.Matches(msg, m.keys.PrevDay):
		return m.selectDate(m.selected.AddDays(-1))
	case key.Matches(msg, m.keys.NextDay):
		return m.selectDate(m.selected.AddDays(1))
	case key.Matches(msg, m.keys.PrevWeek):
		return m.selectDate(m.selected.AddDays(-7))
	case key.Matches(msg, m.keys.NextWeek):
		return m.selectDate(m.selected.AddDays(7))
	case key.Matches(msg, m.keys.PrevMonth):
		return m.selectDate(addMonths(m.selected, -1))
	case key.Matches(msg, m.keys.NextMonth):
		return m.selectDate(addMonths(m.selected, 1))
	case key.Matches(msg, m.keys.Today):
		return m.selectDate(calendar.DateOf(m.now().In(m.loc)))
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDn):
		m.viewport.LineDown(1)
		return m, nil
	}
	return m, nil
}

// addMonths moves n months, clamping the day to the target month's length.
func addMonths(d calendar.Date, n int) calendar.Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 12, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day
	if day > last {
		day = last
	}
	return calendar.Date{Year: first.Year(), Month: first.Month(), Day: day}
}

// selectDate moves the selection, loading a new month when it leaves the
// displayed one.
func (m Model) selectDate(d calendar.Date) (tea.Model, tea.Cmd) {
	m.selected = d
	if first := firstOfMonth(d); first != m.month {
		m.month = first
		m.state = StateLoading
		m.days = nil
		return m, tea.Batch(m.spinner.Tick, loadMonth(m.predictor, m.loc, m.month, m.plain))
	}
	m.refreshDay()
	return m, nil
}

func (m *Model) resizeViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.viewport.Width = max(m.width-gridWidth-8, gridWidth)
	// title, blank line, pane border and help
	h := m.height - 4 - lipgloss.Height(m.help.View(m.keys))
	m.viewport.Height = max(h, minDayHeight)
}

func (m *Model) refreshDay() {
	m.viewport.SetContent(m.dayContent())
	m.viewport.GotoTop()
}

// View renders the program's UI
func (m Model) View() string {
	var b strings.Builder

	title := m.pred.StationName
	if m.pred.StationID != "" {
		title = fmt.Sprintf("%s (%s)", title, m.pred.StationID)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if m.state == StateLoading {
		b.WriteString(fmt.Sprintf("%s Predicting %s %d...\n", m.spinner.View(), m.month.Month, m.month.Year))
	} else {
		grid := paneStyle.Render(m.monthGrid())
		detail := paneStyle.Render(m.viewport.View())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, detail))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
