package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/store"
)

// filterItem is one selectable filter value.
type filterItem struct {
	value   string
	count   int
	current bool
}

func (i filterItem) FilterValue() string {
	return i.value
}

func (i filterItem) Title() string {
	if i.current {
		return i.value + " (current)"
	}
	return i.value
}

func (i filterItem) Description() string {
	if i.count == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", i.count)
}

// filterDelegate renders filter values with their match counts.
type filterDelegate struct{}

func (d filterDelegate) Height() int                             { return 2 }
func (d filterDelegate) Spacing() int                            { return 0 }
func (d filterDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d filterDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(filterItem)
	if !ok {
		return
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+i.Title()))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(i.Description()))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+i.Title()))
		fmt.Fprint(w, "\n  "+DescriptionStyle.Render(i.Description()))
	}
}

// FilterPickerModel lists the values of a collection's filter attribute.
// "All" is always first; each value shows how many loaded entries match.
type FilterPickerModel struct {
	list list.Model
}

// NewFilterPickerModel creates a picker over options with current selected.
func NewFilterPickerModel(c domain.Collection, options []string, current string, data []domain.Entity) FilterPickerModel {
	items := make([]list.Item, len(options))
	selected := 0
	for i, v := range options {
		items[i] = filterItem{
			value:   v,
			count:   len(store.Apply(data, c.FilterKey, v)),
			current: v == current,
		}
		if v == current {
			selected = i
		}
	}

	l := list.New(items, filterDelegate{}, 60, 16)
	l.Title = "Filter by " + attrLabel(c.FilterKey)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle
	l.Select(selected)

	return FilterPickerModel{list: l}
}

// Init initializes the model.
func (m FilterPickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m FilterPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return closeFilterPickerMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(filterItem); ok {
				return m, func() tea.Msg { return FilterSelectedMsg{Value: item.value} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m FilterPickerModel) View() string {
	return m.list.View()
}
