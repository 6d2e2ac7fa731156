package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/h0rv/catalog/internal/api"
	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/kv"
	"github.com/h0rv/catalog/internal/store"
)

// Deps are the collaborators shared by every mounted catalog view.
type Deps struct {
	Lister  api.Lister
	Mutator api.Mutator
	KV      *kv.Store
	Clock   store.Clock

	RevealBase    time.Duration
	RevealStagger time.Duration
	DraftDebounce time.Duration
}

// revealBuffer bounds the reveals queued between timer goroutines and Update.
const revealBuffer = 64

// Styles for the catalog view
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	// Rows wait in this style until their entrance reveal fires.
	hiddenRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	currentPageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Padding(0, 1)

	pageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	confirmStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("196")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)
)

// CatalogModel is one mounted list view: fetch, filter, pagination, entrance
// animation, creation form and deletes for a single collection.
type CatalogModel struct {
	// Dependencies
	ctx        context.Context
	deps       Deps
	collection domain.Collection

	// Instance state shared by every copy of the model
	id        string
	view      *store.View
	gateway   *store.Gateway
	reveals   chan store.Reveal
	done      chan struct{}
	closeOnce *sync.Once

	// UI components
	keymap  KeyMap
	help    HelpModel
	spinner spinner.Model
	picker  *FilterPickerModel
	form    FormModel

	// View state
	width         int
	height        int
	cursor        int
	showHelp      bool
	confirmDelete string
	toast         string
	toastIsError  bool
}

// NewCatalogModel mounts a view for c. The persisted filter of the collection
// is restored; the page always starts at 1.
func NewCatalogModel(ctx context.Context, deps Deps, c domain.Collection) (CatalogModel, error) {
	reveals := make(chan store.Reveal, revealBuffer)
	done := make(chan struct{})
	notify := func(r store.Reveal) {
		select {
		case reveals <- r:
		case <-done:
		}
	}

	view, err := store.NewView(c, store.NewAnimator(deps.Clock, deps.RevealBase, deps.RevealStagger, notify))
	if err != nil {
		return CatalogModel{}, fmt.Errorf("mount %s: %w", c.Name, err)
	}
	if deps.KV != nil {
		view.SetFilter(kv.Get(deps.KV, filterKey(c), domain.AllValue))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return CatalogModel{
		ctx:        ctx,
		deps:       deps,
		collection: c,
		id:         uuid.NewString(),
		view:       view,
		gateway:    store.NewGateway(deps.Mutator, c.Path),
		reveals:    reveals,
		done:       done,
		closeOnce:  &sync.Once{},
		keymap:     DefaultKeyMap(),
		help:       NewHelpModel(DefaultKeyMap(), c),
		spinner:    sp,
		form:       NewFormModel(c, deps.KV, store.NewDebouncer(deps.Clock, deps.DraftDebounce)),
	}, nil
}

func filterKey(c domain.Collection) string { return "filter:" + c.Name }

// Collection returns the mounted collection.
func (m CatalogModel) Collection() domain.Collection {
	return m.collection
}

// Init starts the first load and the reveal listener.
func (m CatalogModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(), m.waitForReveal())
}

// Close unmounts the view: pending reveals are cancelled and the draft is
// saved right away. It is safe to call more than once.
func (m CatalogModel) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.view.Close()
		m.form.Flush()
	})
}

// Capturing reports whether the view consumes every key (an overlay, a
// prompt or the help screen is up).
func (m CatalogModel) Capturing() bool {
	return m.form.IsOpen() || m.picker != nil || m.confirmDelete != "" || m.showHelp
}

// Update handles messages
func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.SetWidth(msg.Width)
		if m.picker != nil {
			picker, _ := m.picker.Update(msg)
			p := picker.(FilterPickerModel)
			m.picker = &p
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchResultMsg:
		if msg.view != m.id {
			return m, nil
		}
		if m.view.Commit(msg.result) {
			m.clampCursor()
		}
		return m, nil

	case revealMsg:
		if msg.view != m.id {
			return m, nil
		}
		m.view.Reveal(msg.reveal)
		return m, m.waitForReveal()

	case createResultMsg:
		if msg.view != m.id {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrInFlight) {
				return m, nil
			}
			m.form.SetSubmitting(false)
			m.form.SetError(msg.err)
			m.setToast(fmt.Sprintf("Create failed: %v", msg.err), true)
			return m, nil
		}
		m.form.Reset()
		closeCmd := m.form.Close()
		m.setToast("Added "+entityLabel(msg.created), false)
		return m, tea.Batch(closeCmd, m.fetch())

	case deleteResultMsg:
		if msg.view != m.id {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrInFlight) {
				return m, nil
			}
			m.setToast(fmt.Sprintf("Delete failed: %v", msg.err), true)
			return m, nil
		}
		m.setToast("Deleted", false)
		return m, m.fetch()

	case FilterSelectedMsg:
		m.picker = nil
		m.applyFilter(msg.Value)
		return m, nil

	case closeFilterPickerMsg:
		m.picker = nil
		return m, nil

	case submitFormMsg:
		m.form.SetSubmitting(true)
		return m, m.create(msg.payload)

	case formClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	// Cursor blink and other component ticks
	if m.form.IsOpen() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m CatalogModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.form.IsOpen() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	if m.picker != nil {
		picker, cmd := m.picker.Update(msg)
		p := picker.(FilterPickerModel)
		m.picker = &p
		return m, cmd
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Quit) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Delete prompt
	if m.confirmDelete != "" {
		id := m.confirmDelete
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			m.confirmDelete = ""
			return m, m.delete(id)
		case key.Matches(msg, m.keymap.Cancel):
			m.confirmDelete = ""
		}
		return m, nil
	}

	m.toast = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keymap.NextPage):
		m.pageMoved(m.view.NextPage())
	case key.Matches(msg, m.keymap.PrevPage):
		m.pageMoved(m.view.PrevPage())
	case key.Matches(msg, m.keymap.First):
		m.pageMoved(m.view.GoToPage(1))
	case key.Matches(msg, m.keymap.Last):
		m.pageMoved(m.view.GoToPage(m.view.TotalPages()))
	case key.Matches(msg, m.keymap.GoPage):
		m.pageMoved(m.view.GoToPage(int(msg.Runes[0] - '0')))
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.fetch()
	case key.Matches(msg, m.keymap.Filter):
		if m.collection.FilterKey != "" {
			p := NewFilterPickerModel(m.collection, m.view.FilterOptions(), m.view.FilterValue(), m.view.State().Data)
			if m.width > 0 {
				updated, _ := p.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
				p = updated.(FilterPickerModel)
			}
			m.picker = &p
		}
	case key.Matches(msg, m.keymap.Add):
		if m.collection.Form == domain.FormNone {
			m.setToast("This collection has no form", true)
			return m, nil
		}
		return m, m.form.Toggle()
	case key.Matches(msg, m.keymap.Delete):
		if e := m.selected(); e != nil {
			if m.gateway.IsDeleting(e.ID()) {
				return m, nil
			}
			m.confirmDelete = e.ID()
		}
	case key.Matches(msg, m.keymap.Open):
		if e := m.selected(); e != nil {
			c := m.collection
			return m, func() tea.Msg { return openDetailMsg{collection: c, entity: e} }
		}
	}

	return m, nil
}

// applyFilter sets the filter, returns to the top of page 1 and remembers the
// choice for the next session.
func (m *CatalogModel) applyFilter(value string) {
	if !m.view.SetFilter(value) {
		return
	}
	m.cursor = 0
	if m.deps.KV != nil {
		kv.Set(m.deps.KV, filterKey(m.collection), m.view.FilterValue())
	}
}

// pageMoved scrolls back to the top after a page change.
func (m *CatalogModel) pageMoved(moved bool) {
	if moved {
		m.cursor = 0
	}
}

func (m *CatalogModel) moveCursor(delta int) {
	items := m.view.PageItems()
	if len(items) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
}

func (m *CatalogModel) clampCursor() {
	n := len(m.view.PageItems())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *CatalogModel) setToast(text string, isError bool) {
	m.toast = text
	m.toastIsError = isError
}

func (m CatalogModel) selected() domain.Entity {
	items := m.view.PageItems()
	if m.cursor < 0 || m.cursor >= len(items) {
		return nil
	}
	return items[m.cursor]
}

// fetch begins a load and returns the command performing it.
func (m CatalogModel) fetch() tea.Cmd {
	run := m.view.Fetcher().Load(m.ctx, m.deps.Lister)
	id := m.id
	return func() tea.Msg {
		return fetchResultMsg{view: id, result: run()}
	}
}

// waitForReveal delivers the next entrance reveal. It returns nil once the
// view is unmounted.
func (m CatalogModel) waitForReveal() tea.Cmd {
	reveals, done, id := m.reveals, m.done, m.id
	return func() tea.Msg {
		select {
		case r := <-reveals:
			return revealMsg{view: id, reveal: r}
		case <-done:
			return nil
		}
	}
}

func (m CatalogModel) create(payload map[string]any) tea.Cmd {
	gw, ctx, id := m.gateway, m.ctx, m.id
	return func() tea.Msg {
		created, err := gw.Create(ctx, payload)
		return createResultMsg{view: id, created: created, err: err}
	}
}

func (m CatalogModel) delete(entityID string) tea.Cmd {
	gw, ctx, id := m.gateway, m.ctx, m.id
	return func() tea.Msg {
		return deleteResultMsg{view: id, id: entityID, err: gw.Delete(ctx, entityID)}
	}
}

// View renders the catalog
func (m CatalogModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	sections := []string{m.renderHeader(width)}
	bodyHeight := height - 3 // header, page controls, status line
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	switch {
	case m.showHelp:
		sections = append(sections, m.help.View(width))
	case m.form.IsOpen():
		sections = append(sections, lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Top, m.form.View()))
	case m.picker != nil:
		sections = append(sections, m.picker.View())
	default:
		sections = append(sections, m.renderBody(width, bodyHeight))
		if controls := m.renderPageControls(); controls != "" {
			sections = append(sections, controls)
		}
	}

	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the collection title with the item count and filter.
func (m CatalogModel) renderHeader(width int) string {
	title := m.collection.Title
	if title == "" {
		title = m.collection.Name
	}

	var status []string
	state := m.view.State()
	if state.Loading {
		status = append(status, m.spinner.View()+"loading")
	}
	if m.gateway.IsLoading() {
		status = append(status, "saving...")
	}
	status = append(status, fmt.Sprintf("%d entries", len(m.view.Filtered())))
	if m.collection.FilterKey != "" {
		status = append(status, fmt.Sprintf("%s: %s", attrLabel(m.collection.FilterKey), m.view.FilterValue()))
	}
	status = append(status, "[?]help")
	right := strings.Join(status, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return headerStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// renderBody renders the loading, error, empty or list state.
func (m CatalogModel) renderBody(width, height int) string {
	state := m.view.State()

	switch state.Status() {
	case domain.StatusLoading:
		if len(state.Data) == 0 {
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading...")
		}
	case domain.StatusError:
		if len(state.Data) == 0 {
			msg := errorStyle.Render(state.Err.Error()) + "\n\n" + dimStyle.Render("Press r to retry")
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
		}
	}

	items := m.view.PageItems()
	if len(items) == 0 {
		empty := "No entries."
		if m.collection.FilterKey != "" && m.view.FilterValue() != domain.AllValue {
			empty = fmt.Sprintf("No entries with %s %q. Press f to change the filter.", attrLabel(m.collection.FilterKey), m.view.FilterValue())
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dimStyle.Render(empty))
	}

	offset := (m.view.CurrentPage() - 1) * m.collection.PageSize
	lines := make([]string, 0, len(items))
	for i, e := range items {
		lines = append(lines, m.renderRow(e, offset+i+1, i, width))
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(lines, "\n"))
}

func (m CatalogModel) renderRow(e domain.Entity, number, index, width int) string {
	text := fmt.Sprintf("%3d. %s", number, entityLabel(e))
	var suffix string
	if m.collection.FilterKey != "" && e.Has(m.collection.FilterKey) {
		suffix = e.Attr(m.collection.FilterKey)
	}
	if m.gateway.IsDeleting(e.ID()) {
		suffix = "deleting..."
	}

	maxText := width - len(suffix) - 5
	if maxText > 3 && lipgloss.Width(text) > maxText {
		text = truncate(text, maxText)
	}
	padding := width - lipgloss.Width(text) - lipgloss.Width(suffix) - 4
	if padding < 1 {
		padding = 1
	}
	line := text + strings.Repeat(" ", padding) + suffix

	switch {
	case index == m.cursor:
		return selectedRowStyle.Render("> " + line)
	case !m.view.IsRevealed(index):
		return hiddenRowStyle.Render("  " + line)
	default:
		return rowStyle.Render("  " + line)
	}
}

// renderPageControls renders prev, the page numbers and next. Nothing is
// shown for a single page.
func (m CatalogModel) renderPageControls() string {
	total := m.view.TotalPages()
	if total <= 1 {
		return ""
	}
	current := m.view.CurrentPage()

	parts := make([]string, 0, 9)
	prev := "‹ prev"
	if current <= 1 {
		parts = append(parts, dimStyle.Render(prev))
	} else {
		parts = append(parts, rowStyle.Render(prev))
	}
	for _, mark := range m.view.PageNumbers() {
		switch {
		case mark.Ellipsis:
			parts = append(parts, dimStyle.Render("…"))
		case mark.Page == current:
			parts = append(parts, currentPageStyle.Render(fmt.Sprint(mark.Page)))
		default:
			parts = append(parts, pageStyle.Render(fmt.Sprint(mark.Page)))
		}
	}
	next := "next ›"
	if current >= total {
		parts = append(parts, dimStyle.Render(next))
	} else {
		parts = append(parts, rowStyle.Render(next))
	}
	return strings.Join(parts, " ")
}

// renderStatus renders the prompt, the toast, the last failed mutation or the
// refetch error.
func (m CatalogModel) renderStatus() string {
	if m.confirmDelete != "" {
		label := m.confirmDelete
		if e, ok := m.view.Find(m.confirmDelete); ok {
			label = entityLabel(e)
		}
		return confirmStyle.Render("DELETE") + fmt.Sprintf(" %s? y to confirm, n to cancel", label)
	}
	if m.toast != "" {
		if m.toastIsError {
			return errorStyle.Render("✗ " + m.toast)
		}
		return toastStyle.Render("✓ " + m.toast)
	}
	if err := m.gateway.Err(); err != nil {
		return errorStyle.Render("Last change failed: "+err.Error()) + dimStyle.Render(" (a to add, d to delete)")
	}
	state := m.view.State()
	if state.Err != nil && len(state.Data) > 0 {
		return errorStyle.Render(state.Err.Error()) + dimStyle.Render(" (showing last loaded data, r to retry)")
	}
	return dimStyle.Render("j/k:move h/l:page f:filter a:add d:delete enter:view tab:collection")
}

// entityLabel picks the human name of an entity.
func entityLabel(e domain.Entity) string {
	for _, k := range []string{"name", "title"} {
		if v := strings.TrimSpace(e.Attr(k)); v != "" {
			return v
		}
	}
	if id := e.ID(); id != "" {
		return "#" + id
	}
	return "(unnamed)"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
