package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/h0rv/catalog/internal/domain"
)

// Layout constants
const (
	headerHeight = 2
	footerHeight = 1
	borderSize   = 2 // Top + bottom border
)

// Attributes that may hold an image or page worth opening in the browser.
var linkKeys = []string{"portrait", "icon", "imageUrl", "photo", "url"}

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	recordNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

// DetailModel shows every attribute of one entity in a scrollable panel.
type DetailModel struct {
	collection domain.Collection
	entity     domain.Entity

	viewport viewport.Model
	status   string

	// View dimensions
	width  int
	height int
}

// NewDetailModel creates a detail view for e.
func NewDetailModel(c domain.Collection, e domain.Entity) DetailModel {
	vp := viewport.New(40, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		collection: c,
		entity:     e,
		viewport:   vp,
	}
	m.updateViewportContent()
	return m
}

// Init requests the window size so the panel can be laid out.
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resizeComponents fits the viewport into the bordered panel.
func (m *DetailModel) resizeComponents() {
	contentHeight := m.height - headerHeight - footerHeight - borderSize
	if contentHeight < 5 {
		contentHeight = 5
	}
	width := m.width - borderSize - 2
	if width < 20 {
		width = 20
	}

	m.viewport.Width = width
	m.viewport.Height = contentHeight
	m.updateViewportContent()
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc", "backspace":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		link := m.Link()
		if link == "" {
			m.status = "Nothing to open"
			return m, nil
		}
		if err := browser.OpenURL(link); err != nil {
			m.status = fmt.Sprintf("Failed to open %s: %v", link, err)
			return m, nil
		}
		m.status = "Opened " + link
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// Link returns the first web link among the entity's media attributes.
func (m DetailModel) Link() string {
	for _, k := range linkKeys {
		v := strings.TrimSpace(m.entity.Attr(k))
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return v
		}
	}
	return ""
}

// View renders the detail panel
func (m DetailModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	header := m.renderHeader(width)
	panel := panelBorderStyle.
		Width(width - borderSize).
		Render(m.viewport.View())
	footer := m.renderFooter(width)

	return lipgloss.JoinVertical(lipgloss.Left, header, panel, footer)
}

func (m DetailModel) renderHeader(width int) string {
	title := wordwrap.String(entityLabel(m.entity), width)
	help := "[q]back [j/k]scroll [g/G]top/bottom"
	if m.Link() != "" {
		help += " [o]open image"
	}
	return detailTitleStyle.Render(title) + "\n" + dimStyle.Render(help)
}

func (m DetailModel) renderFooter(width int) string {
	left := m.status
	right := ""
	if m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			right = "TOP ↓"
		case m.viewport.AtBottom():
			right = "END ↑"
		default:
			right = fmt.Sprintf("%d%% ↕", int(m.viewport.ScrollPercent()*100))
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return dimStyle.Render(left) + strings.Repeat(" ", padding) + scrollIndicatorStyle.Render(right)
}

// updateViewportContent formats every attribute for the viewport.
func (m *DetailModel) updateViewportContent() {
	m.viewport.SetContent(renderEntity(m.entity, m.viewport.Width-2))
}

// renderEntity lays out the attributes of e as labelled blocks. Lists become
// bullets and lists of objects become "name: description" lines.
func renderEntity(e domain.Entity, width int) string {
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, k := range e.Keys() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(detailLabelStyle.Render(attrLabel(k)))
		b.WriteString("\n")

		switch {
		case len(e.Records(k)) > 0:
			for j, r := range e.Records(k) {
				if j > 0 {
					b.WriteString("\n")
				}
				name := r.Attr("name")
				if name == "" {
					name = fmt.Sprintf("#%d", j+1)
				}
				b.WriteString("• " + recordNameStyle.Render(name))
				if d := r.Attr("description"); d != "" {
					b.WriteString(": " + detailValueStyle.Render(wordwrap.String(d, width-4)))
				}
			}
		case e.List(k) != nil:
			list := e.List(k)
			if len(list) == 0 {
				b.WriteString(dimStyle.Render("(none)"))
			}
			for j, v := range list {
				if j > 0 {
					b.WriteString("\n")
				}
				b.WriteString("• " + detailValueStyle.Render(wordwrap.String(v, width-2)))
			}
		case k == "date":
			b.WriteString(detailValueStyle.Render(e.Attr(k)))
			if ago := formatTimeAgo(e.Attr(k), time.Now()); ago != e.Attr(k) {
				b.WriteString(" " + dimStyle.Render("("+ago+")"))
			}
		default:
			v := e.Attr(k)
			if v == "" {
				b.WriteString(dimStyle.Render("(empty)"))
				continue
			}
			b.WriteString(detailValueStyle.Render(wordwrap.String(v, width)))
		}
	}
	return b.String()
}

// attrLabel turns an attribute name such as "averageRating" into "Average Rating".
func attrLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		if r == '_' {
			r = ' '
		}
		b.WriteRune(r)
	}
	if key == domain.IDKey {
		return "ID"
	}
	return cases.Title(language.English).String(b.String())
}

// formatTimeAgo converts an RFC 3339 timestamp or a plain date to relative time.
// Unparseable values are returned unchanged.
func formatTimeAgo(timestamp string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		t, err = time.Parse(time.DateOnly, timestamp)
		if err != nil {
			return timestamp
		}
	}

	duration := now.Sub(t)

	switch {
	case duration < 0:
		return timestamp
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	case duration < 365*24*time.Hour:
		return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
	default:
		return fmt.Sprintf("%dy ago", int(duration.Hours()/24/365))
	}
}
