// Package tui provides the interactive terminal preview for generated
// feedback files.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultTableHeight = 20
	// chromeHeight is the number of lines outside the table: title,
	// status, detail and help.
	chromeHeight = 8
)

// filters is the cycle order for the sentiment filter. The empty value
// shows every record.
var filters = []model.Sentiment{"", model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative}

// PreviewModel is a bubbletea model that browses feedback records in a table.
type PreviewModel struct {
	theme   themes.Theme
	keys    KeyMap
	help    help.Model
	title   string
	records []model.Record
	visible []model.Record
	table   table.Model
	filter  int
	width   int
	height  int
	quit    bool
}

// NewPreview creates a preview over records. Title is shown above the table.
func NewPreview(title string, records []model.Record) PreviewModel {
	theme := themes.Default

	styles := table.DefaultStyles()
	styles.Header = theme.Header
	styles.Selected = theme.Selected

	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
		table.WithStyles(styles),
	)

	m := PreviewModel{
		theme:   theme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		title:   title,
		records: records,
		table:   t,
	}
	m.applyFilter()
	return m
}

func columns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Customer", Width: 20},
		{Title: "Product", Width: 18},
		{Title: "Sentiment", Width: 9},
		{Title: "Rating", Width: 6},
		{Title: "Date", Width: 10},
		{Title: "Location", Width: 16},
		{Title: "Feedback", Width: 40},
	}
}

func row(r model.Record) table.Row {
	return table.Row{
		strconv.Itoa(r.FeedbackID),
		r.CustomerName,
		r.Product,
		r.Sentiment.String(),
		strconv.Itoa(r.Rating),
		r.PurchaseDate.Format(model.DateLayout),
		r.Location,
		r.FeedbackText,
	}
}

func (m *PreviewModel) applyFilter() {
	want := filters[m.filter]
	m.visible = make([]model.Record, 0, len(m.records))
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		if want != "" && r.Sentiment != want {
			continue
		}
		m.visible = append(m.visible, r)
		rows = append(rows, row(r))
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Init implements tea.Model.
func (m PreviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		if h := msg.Height - chromeHeight; h > 0 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Filter):
			m.filter = (m.filter + 1) % len(filters)
			m.applyFilter()
			return m, nil
		case key.Matches(msg, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m PreviewModel) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.theme.Status.Render(m.status()))
	b.WriteString("\n")
	if r, ok := m.Selected(); ok {
		b.WriteString(m.detail(r))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m PreviewModel) status() string {
	name := "all"
	if f := filters[m.filter]; f != "" {
		name = f.String()
	}
	return fmt.Sprintf("Filter: %s  Showing %d of %d records", name, len(m.visible), len(m.records))
}

func (m PreviewModel) detail(r model.Record) string {
	style := m.theme.Neutral
	switch r.Sentiment {
	case model.SentimentPositive:
		style = m.theme.Positive
	case model.SentimentNegative:
		style = m.theme.Negative
	}
	text := fmt.Sprintf("%s <%s> order %d: %s", r.CustomerName, r.CustomerEmail, r.OrderID, style.Render(r.FeedbackText))
	if m.width > 0 {
		return lipgloss.NewStyle().Width(m.width).Render(text)
	}
	return text
}

// Filter returns the active sentiment filter. The empty value means all.
func (m PreviewModel) Filter() model.Sentiment {
	return filters[m.filter]
}

// Visible returns the records that pass the active filter.
func (m PreviewModel) Visible() []model.Record {
	out := make([]model.Record, len(m.visible))
	copy(out, m.visible)
	return out
}

// Selected returns the record under the cursor.
func (m PreviewModel) Selected() (model.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.Record{}, false
	}
	return m.visible[i], true
}

// RunPreview opens the interactive preview and blocks until the user quits.
func RunPreview(title string, records []model.Record) error {
	p := tea.NewProgram(NewPreview(title, records), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
