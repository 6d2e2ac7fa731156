package tui

import (
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/form"
	"github.com/h0rv/catalog/internal/kv"
	"github.com/h0rv/catalog/internal/store"
)

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(16)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(16)
)

// FormModel is the creation modal of a collection. Edits are autosaved as a
// draft after a quiet period and the draft is restored on the next mount.
type FormModel struct {
	collection domain.Collection
	kv         *kv.Store
	debouncer  *store.Debouncer

	draft  form.Draft
	fields []form.Field
	focus  int
	input  textinput.Model

	open       bool
	submitting bool
	err        error
	width      int
}

// NewFormModel creates the (closed) form for c, restoring a saved draft.
func NewFormModel(c domain.Collection, kvs *kv.Store, debouncer *store.Debouncer) FormModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 2048

	m := FormModel{
		collection: c,
		kv:         kvs,
		debouncer:  debouncer,
		draft:      restoreDraft(c, kvs),
		input:      ti,
		width:      60,
	}
	if m.draft != nil {
		m.fields = m.draft.Fields()
	}
	return m
}

func draftKey(c domain.Collection) string { return "draft:" + c.Name }

func restoreDraft(c domain.Collection, kvs *kv.Store) form.Draft {
	if c.Form == domain.FormNone {
		return nil
	}
	if kvs == nil {
		return form.New(c.Form)
	}
	raw := kv.Get[json.RawMessage](kvs, draftKey(c), nil)
	if len(raw) == 0 {
		return form.New(c.Form)
	}
	d, err := form.Decode(c.Form, raw)
	if err != nil {
		log.Printf("restore draft for %s: %v", c.Name, err)
		return form.New(c.Form)
	}
	return d
}

// IsOpen reports whether the modal is shown.
func (m FormModel) IsOpen() bool {
	return m.open
}

// Draft returns the current draft.
func (m FormModel) Draft() form.Draft {
	return m.draft
}

// Open shows the modal with the first field focused.
func (m *FormModel) Open() tea.Cmd {
	if m.draft == nil {
		return nil
	}
	m.open = true
	m.err = nil
	m.focusField(0)
	return textinput.Blink
}

// Close hides the modal. The draft is kept.
func (m *FormModel) Close() tea.Cmd {
	if !m.open {
		return nil
	}
	m.open = false
	m.submitting = false
	m.input.Blur()
	return func() tea.Msg { return formClosedMsg{} }
}

// Toggle opens a closed modal and closes an open one.
func (m *FormModel) Toggle() tea.Cmd {
	if m.open {
		return m.Close()
	}
	return m.Open()
}

// Reset clears the draft after a successful submit.
func (m *FormModel) Reset() {
	if m.draft == nil {
		return
	}
	m.debouncer.Stop()
	m.draft = form.New(m.collection.Form)
	m.fields = m.draft.Fields()
	m.submitting = false
	m.err = nil
	m.focusField(0)
	if m.kv != nil {
		m.kv.Delete(draftKey(m.collection))
	}
}

// Flush saves the draft now and cancels a pending autosave.
func (m FormModel) Flush() {
	m.debouncer.Stop()
	if m.kv != nil && m.draft != nil {
		kv.Set(m.kv, draftKey(m.collection), m.draft)
	}
}

// SetSubmitting marks a create as running.
func (m *FormModel) SetSubmitting(v bool) {
	m.submitting = v
}

// SetError shows a submit failure inside the modal.
func (m *FormModel) SetError(err error) {
	m.err = err
}

// SetWidth sizes the modal for a terminal of width w.
func (m *FormModel) SetWidth(w int) {
	width := w - 10
	if width > 72 {
		width = 72
	}
	if width < 30 {
		width = 30
	}
	m.width = width
	m.input.Width = width - 22
}

// Update handles keys while the modal is open
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, m.Close()
	case "tab", "down":
		m.focusField(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusField(m.focus - 1)
		return m, nil
	case "ctrl+n":
		m.setDraft(m.draft.Add())
		return m, nil
	case "ctrl+x":
		if i, ok := form.EntryIndex(m.focused().Key); ok {
			m.setDraft(m.draft.Remove(i))
		}
		return m, nil
	case "ctrl+s", "enter":
		if keyMsg.String() == "enter" && m.focus < len(m.fields)-1 {
			m.focusField(m.focus + 1)
			return m, nil
		}
		return m, m.submit()
	}

	field := m.focused()
	if len(field.Options) > 0 {
		switch keyMsg.String() {
		case "left", "h":
			m.setDraft(m.draft.Set(field.Key, cycle(field.Options, field.Value, -1)))
		case "right", "l", " ":
			m.setDraft(m.draft.Set(field.Key, cycle(field.Options, field.Value, 1)))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != field.Value {
		m.setDraft(m.draft.Set(field.Key, m.input.Value()))
	}
	return m, cmd
}

// submit validates the draft and hands the payload to the catalog view.
func (m *FormModel) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	if err := m.draft.Validate(); err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	payload := m.draft.Payload()
	return func() tea.Msg { return submitFormMsg{payload: payload} }
}

func (m *FormModel) setDraft(d form.Draft) {
	m.draft = d
	m.fields = d.Fields()
	if m.focus >= len(m.fields) {
		m.focusField(len(m.fields) - 1)
	}
	m.scheduleSave()
}

func (m *FormModel) scheduleSave() {
	if m.kv == nil {
		return
	}
	kvs, key, d := m.kv, draftKey(m.collection), m.draft
	m.debouncer.Trigger(func() { kv.Set(kvs, key, d) })
}

func (m *FormModel) focusField(i int) {
	if len(m.fields) == 0 {
		return
	}
	if i < 0 {
		i = len(m.fields) - 1
	}
	if i >= len(m.fields) {
		i = 0
	}
	m.focus = i
	m.input.SetValue(m.fields[i].Value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m FormModel) focused() form.Field {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return form.Field{}
	}
	return m.fields[m.focus]
}

// cycle returns the option delta steps away from current.
func cycle(options []string, current string, delta int) string {
	i := slices.Index(options, current)
	if i < 0 {
		if delta > 0 {
			return options[0]
		}
		return options[len(options)-1]
	}
	n := len(options)
	return options[((i+delta)%n+n)%n]
}

// View renders the modal
func (m FormModel) View() string {
	if !m.open || m.draft == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Add to " + m.collection.Title))
	b.WriteString("\n")

	for i, f := range m.fields {
		label := f.Label
		if f.Optional {
			label += "?"
		}
		labelStyle := fieldLabelStyle
		if i == m.focus {
			labelStyle = focusedLabelStyle
		}

		var value string
		switch {
		case len(f.Options) > 0:
			v := f.Value
			if v == "" {
				v = "(choose)"
			}
			value = "‹ " + v + " ›"
			if i != m.focus {
				value = dimStyle.Render(value)
			}
		case i == m.focus:
			value = m.input.View()
		default:
			value = truncate(strings.ReplaceAll(f.Value, "\n", " "), m.width-22)
		}
		b.WriteString(labelStyle.Render(label) + " " + value + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(dimStyle.Render("Saving..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	default:
		b.WriteString(dimStyle.Render(m.hints()))
	}

	return modalStyle.Width(m.width).Render(b.String())
}

func (m FormModel) hints() string {
	hints := []string{"tab:next", "ctrl+s:save", "esc:close"}
	if _, ok := form.EntryIndex(m.focused().Key); ok {
		hints = append(hints, "ctrl+n:add entry", "ctrl+x:remove entry")
	}
	return strings.Join(hints, " ") + fmt.Sprintf("  (%d/%d)", m.focus+1, len(m.fields))
}
