package tui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/form"
	"github.com/h0rv/catalog/internal/kv"
	"github.com/h0rv/catalog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openForm(t *testing.T, c domain.Collection, kvs *kv.Store) FormModel {
	t.Helper()
	m := NewFormModel(c, kvs, store.NewDebouncer(store.RealClock{}, 5*time.Millisecond))
	t.Cleanup(m.debouncer.Stop)
	require.NotNil(t, m.Open())
	require.True(t, m.IsOpen())
	return m
}

func TestFormModel_TypingUpdatesDraft(t *testing.T) {
	m := openForm(t, forumCollection(), kv.New(nil))

	m, _ = m.Update(runes("Patch notes"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("New heroes"))

	p, ok := m.Draft().(form.Post)
	require.True(t, ok)
	assert.Equal(t, "Patch notes", p.Title)
	assert.Equal(t, "New heroes", p.Content)
}

func TestFormModel_CyclesOptions(t *testing.T) {
	m := openForm(t, forumCollection(), kv.New(nil))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "category", m.focused().Key)

	m, _ = m.Update(runes("l"))
	assert.Equal(t, "Updates", m.Draft().(form.Post).Category, "wraps past the last option")

	m, _ = m.Update(runes("h"))
	assert.Equal(t, "Discussions", m.Draft().(form.Post).Category)
}

func TestFormModel_Submit(t *testing.T) {
	m := openForm(t, forumCollection(), kv.New(nil))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, form.ErrInvalid)

	m, _ = m.Update(runes("Patch notes"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("New heroes"))

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.NoError(t, m.err)

	msg, ok := cmd().(submitFormMsg)
	require.True(t, ok)
	assert.Equal(t, "Patch notes", msg.payload["title"])
	assert.Equal(t, form.DefaultAuthor, msg.payload["author"])

	m.SetSubmitting(true)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd, "no second submit while one is running")
}

func TestFormModel_AddAndRemoveEntries(t *testing.T) {
	m := openForm(t, heroesCollection(), kv.New(nil))
	before := len(m.fields)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Len(t, m.fields, before+2)
	assert.Len(t, m.Draft().(form.Hero).Abilities, 5)

	// Focus the first ability name and remove that ability.
	for m.focused().Key != "abilities.0.name" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Len(t, m.Draft().(form.Hero).Abilities, 4)
}

func TestFormModel_AutosavesAndRestoresDraft(t *testing.T) {
	kvs := kv.New(nil)
	m := openForm(t, forumCollection(), kvs)

	m, _ = m.Update(runes("Patch notes"))

	require.Eventually(t, func() bool {
		raw := kv.Get[json.RawMessage](kvs, "draft:forum", nil)
		return strings.Contains(string(raw), "Patch notes")
	}, time.Second, 5*time.Millisecond)

	restored := NewFormModel(forumCollection(), kvs, store.NewDebouncer(store.RealClock{}, time.Hour))
	assert.Equal(t, "Patch notes", restored.Draft().(form.Post).Title)
	assert.False(t, restored.IsOpen())

	m.Reset()
	assert.Empty(t, m.Draft().(form.Post).Title)
	assert.Nil(t, kv.Get[json.RawMessage](kvs, "draft:forum", nil))
}

func TestFormModel_EscCloses(t *testing.T) {
	m := openForm(t, forumCollection(), kv.New(nil))
	m, _ = m.Update(runes("Draft title"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, formClosedMsg{}, cmd())
	assert.False(t, m.IsOpen())
	assert.Equal(t, "Draft title", m.Draft().(form.Post).Title, "closing keeps the draft")
}

func TestFormModel_Toggle(t *testing.T) {
	m := NewFormModel(forumCollection(), kv.New(nil), store.NewDebouncer(store.RealClock{}, time.Hour))
	t.Cleanup(m.debouncer.Stop)

	assert.NotNil(t, m.Toggle())
	assert.True(t, m.IsOpen())

	cmd := m.Toggle()
	require.NotNil(t, cmd)
	assert.IsType(t, formClosedMsg{}, cmd())
	assert.False(t, m.IsOpen())
}
