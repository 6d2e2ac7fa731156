package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/catalog/internal/domain"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenCatalog AppScreen = iota
	ScreenCollectionPicker
	ScreenDetail
)

// tabBarHeight is the number of rows taken by the collection tabs.
const tabBarHeight = 1

// AppModel is the root Bubble Tea model. It owns the mounted catalog view and
// switches between it, the collection picker and the detail screen.
type AppModel struct {
	// Dependencies
	ctx         context.Context
	deps        Deps
	collections []domain.Collection
	keymap      KeyMap

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model // Picker or detail, nil on the catalog screen
	catalog       *CatalogModel
	active        int
	err           error

	width  int
	height int
}

// NewAppModel creates the root model and mounts the start collection, or the
// first configured one when start is empty.
func NewAppModel(ctx context.Context, deps Deps, collections []domain.Collection, start string) (AppModel, error) {
	if len(collections) == 0 {
		return AppModel{}, errors.New("no collections configured")
	}

	active := 0
	if start != "" {
		active = -1
		for i, c := range collections {
			if c.Name == start {
				active = i
				break
			}
		}
		if active < 0 {
			return AppModel{}, fmt.Errorf("unknown collection %q", start)
		}
	}

	m := AppModel{
		ctx:         ctx,
		deps:        deps,
		collections: collections,
		keymap:      DefaultKeyMap(),
	}
	catalog, err := NewCatalogModel(ctx, deps, collections[active])
	if err != nil {
		return AppModel{}, err
	}
	m.catalog = &catalog
	m.active = active
	return m, nil
}

// Active returns the mounted collection.
func (m AppModel) Active() domain.Collection {
	return m.collections[m.active]
}

// Screen returns the screen currently shown.
func (m AppModel) Screen() AppScreen {
	return m.currentScreen
}

// Close unmounts the catalog view.
func (m AppModel) Close() {
	if m.catalog != nil {
		m.catalog.Close()
	}
}

// Init starts the mounted catalog.
func (m AppModel) Init() tea.Cmd {
	return m.catalog.Init()
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - tabBarHeight}
		cmd := m.updateCatalog(inner)
		if m.currentModel != nil {
			var screenCmd tea.Cmd
			m.currentModel, screenCmd = m.currentModel.Update(inner)
			cmd = tea.Batch(cmd, screenCmd)
		}
		return m, cmd

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		m.Close()
		return m, tea.Quit

	// Results addressed to the catalog arrive whichever screen is shown.
	case fetchResultMsg, revealMsg, createResultMsg, deleteResultMsg, spinner.TickMsg:
		return m, m.updateCatalog(msg)

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detailModel := NewDetailModel(msg.collection, msg.entity)
		m.currentModel = detailModel
		return m, detailModel.Init()

	case closeDetailMsg, closePickerMsg:
		m.currentScreen = ScreenCatalog
		m.currentModel = nil
		return m, tea.WindowSize()

	case CollectionSelectedMsg:
		m.currentScreen = ScreenCatalog
		m.currentModel = nil
		for i, c := range m.collections {
			if c.Name == msg.Collection.Name {
				if i == m.active {
					return m, tea.WindowSize()
				}
				return m.mount(i)
			}
		}
		err := fmt.Errorf("unknown collection %q", msg.Collection.Name)
		return m, func() tea.Msg { return ErrorMsg{Err: err} }

	case tea.KeyMsg:
		if m.err != nil {
			switch msg.String() {
			case "ctrl+c", "q":
				m.Close()
				return m, tea.Quit
			case "esc":
				m.err = nil
				return m, tea.WindowSize()
			}
			return m, nil
		}
		if m.currentScreen == ScreenCatalog && !m.catalog.Capturing() {
			n := len(m.collections)
			switch {
			case key.Matches(msg, m.keymap.NextTab):
				return m.mount((m.active + 1) % n)
			case key.Matches(msg, m.keymap.PrevTab):
				return m.mount((m.active - 1 + n) % n)
			case key.Matches(msg, m.keymap.Collections):
				m.currentScreen = ScreenCollectionPicker
				picker := NewCollectionPickerModel(m.collections, m.active)
				m.currentModel = picker
				return m, picker.Init()
			}
		}
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		return m, cmd
	}
	return m, m.updateCatalog(msg)
}

// mount replaces the catalog view with one for collections[i]. The old view
// is closed so its timers and pending results are discarded. When the new view
// cannot be built the old one stays mounted and an ErrorMsg is emitted.
func (m AppModel) mount(i int) (tea.Model, tea.Cmd) {
	if i == m.active && m.catalog != nil {
		return m, nil
	}
	catalog, err := NewCatalogModel(m.ctx, m.deps, m.collections[i])
	if err != nil {
		return m, func() tea.Msg { return ErrorMsg{Err: err} }
	}
	m.Close()
	m.catalog = &catalog
	m.active = i
	m.currentScreen = ScreenCatalog
	m.currentModel = nil

	if m.width > 0 {
		m.updateCatalog(tea.WindowSizeMsg{Width: m.width, Height: m.height - tabBarHeight})
	}
	return m, m.catalog.Init()
}

func (m *AppModel) updateCatalog(msg tea.Msg) tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	updated, cmd := m.catalog.Update(msg)
	c := updated.(CatalogModel)
	m.catalog = &c
	return cmd
}

// View renders the tab bar and the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to go back or q to quit", m.err))
	}

	var body string
	switch {
	case m.currentModel != nil:
		body = m.currentModel.View()
	case m.catalog != nil:
		body = m.catalog.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), body)
}

func (m AppModel) renderTabs() string {
	tabs := make([]string, len(m.collections))
	for i, c := range m.collections {
		title := c.Title
		if title == "" {
			title = c.Name
		}
		if i == m.active {
			tabs[i] = ActiveTabStyle.Render(title)
		} else {
			tabs[i] = TabStyle.Render(title)
		}
	}
	return strings.Join(tabs, " ")
}
