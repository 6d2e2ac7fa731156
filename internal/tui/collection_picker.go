package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/catalog/internal/domain"
)

// collectionItem wraps a domain.Collection for use in bubbles/list.
type collectionItem struct {
	collection domain.Collection
}

func (i collectionItem) FilterValue() string {
	return i.collection.Title
}

func (i collectionItem) Title() string {
	return i.collection.Title
}

func (i collectionItem) Description() string {
	desc := "/" + i.collection.Path
	if i.collection.FilterKey != "" {
		desc += fmt.Sprintf(", filter by %s", i.collection.FilterKey)
	}
	if i.collection.Form != domain.FormNone {
		desc += ", editable"
	}
	return desc
}

// collectionDelegate is a custom item delegate for collection items.
type collectionDelegate struct{}

func (d collectionDelegate) Height() int                             { return 2 }
func (d collectionDelegate) Spacing() int                            { return 1 }
func (d collectionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d collectionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(collectionItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	desc := i.Description()

	if index == m.Index() {
		// Selected item
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		// Normal item
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+DescriptionStyle.Render(desc))
	}
}

// CollectionPickerModel displays the configured collections for the user to select.
type CollectionPickerModel struct {
	list list.Model
}

// NewCollectionPickerModel creates a new CollectionPickerModel with active preselected.
func NewCollectionPickerModel(collections []domain.Collection, active int) CollectionPickerModel {
	items := make([]list.Item, len(collections))
	for i, c := range collections {
		items[i] = collectionItem{collection: c}
	}

	l := list.New(items, collectionDelegate{}, 80, 20)
	l.Title = "Select a Collection"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	if active >= 0 && active < len(items) {
		l.Select(active)
	}

	return CollectionPickerModel{
		list: l,
	}
}

// Init initializes the model.
func (m CollectionPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m CollectionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q":
			return m, func() tea.Msg { return QuitMsg{} }
		case "esc":
			return m, func() tea.Msg { return closePickerMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(collectionItem); ok {
				return m, func() tea.Msg {
					return CollectionSelectedMsg{Collection: item.collection}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m CollectionPickerModel) View() string {
	return m.list.View()
}
