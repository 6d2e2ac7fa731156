package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/catalog/internal/domain"
)

var (
	// HelpOverlayStyle defines the style for the help overlay container.
	HelpOverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		MarginTop(1)
)

// HelpModel lists the key bindings that apply to one collection.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
	title  string
}

// NewHelpModel creates the help overlay for c. Actions the collection does not
// support are left out.
func NewHelpModel(keymap KeyMap, c domain.Collection) HelpModel {
	h := help.New()
	h.ShowAll = true

	if c.FilterKey == "" {
		keymap.Filter.SetEnabled(false)
	}
	if c.Form == domain.FormNone {
		keymap.Add.SetEnabled(false)
	}

	title := c.Title
	if title == "" {
		title = c.Name
	}
	return HelpModel{
		help:   h,
		keymap: keymap,
		title:  title + " keys",
	}
}

// View renders the help overlay.
func (m HelpModel) View(width int) string {
	m.help.Width = width - 8 // Account for padding and border
	body := TitleStyle.Render(m.title) + "\n" + m.help.View(m.keymap)
	return HelpOverlayStyle.Render(body)
}
