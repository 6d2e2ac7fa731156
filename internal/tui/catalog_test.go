package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/kv"
	"github.com/h0rv/catalog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves one in-memory collection per resource.
type fakeBackend struct {
	mu      sync.Mutex
	data    map[string][]domain.Entity
	listErr error
	// mutateErr fails Create and Delete; hold blocks them until closed.
	mutateErr error
	hold      chan struct{}
	created   []any
	deleted   []string
	nextID    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]domain.Entity)}
}

func (b *fakeBackend) wait() {
	b.mu.Lock()
	hold := b.hold
	b.mu.Unlock()
	if hold != nil {
		<-hold
	}
}

func (b *fakeBackend) List(_ context.Context, resource string) ([]domain.Entity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]domain.Entity(nil), b.data[resource]...), nil
}

func (b *fakeBackend) Create(_ context.Context, resource string, payload any) (domain.Entity, error) {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mutateErr != nil {
		return nil, b.mutateErr
	}
	b.created = append(b.created, payload)
	b.nextID++
	e := domain.Entity{"id": fmt.Sprintf("new%d", b.nextID)}
	if m, ok := payload.(map[string]any); ok {
		for k, v := range m {
			e[k] = v
		}
	}
	b.data[resource] = append(b.data[resource], e)
	return e, nil
}

func (b *fakeBackend) Delete(_ context.Context, resource string, id string) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mutateErr != nil {
		return b.mutateErr
	}
	b.deleted = append(b.deleted, id)
	kept := b.data[resource][:0]
	for _, e := range b.data[resource] {
		if e.ID() != id {
			kept = append(kept, e)
		}
	}
	b.data[resource] = kept
	return nil
}

func heroesCollection() domain.Collection {
	return domain.Collection{
		Name:         "heroes",
		Title:        "Heroes",
		Path:         "heroes",
		FilterKey:    "role",
		FilterValues: []string{"Carry", "Support"},
		PageSize:     9,
		Form:         domain.FormHero,
	}
}

func forumCollection() domain.Collection {
	return domain.Collection{
		Name:      "forum",
		Title:     "Forum",
		Path:      "posts",
		FilterKey: "category",
		PageSize:  9,
		Form:      domain.FormPost,
	}
}

// createTestHeroes returns n heroes alternating between Carry and Support.
func createTestHeroes(n int) []domain.Entity {
	out := make([]domain.Entity, n)
	for i := range out {
		role := "Carry"
		if i%2 == 1 {
			role = "Support"
		}
		out[i] = domain.Entity{"id": fmt.Sprintf("h%d", i+1), "name": fmt.Sprintf("Hero %d", i+1), "role": role}
	}
	return out
}

// testDeps keeps reveal timers far in the future so tests never race them.
func testDeps(b *fakeBackend, kvs *kv.Store) Deps {
	return Deps{
		Lister:        b,
		Mutator:       b,
		KV:            kvs,
		Clock:         store.RealClock{},
		RevealBase:    time.Hour,
		RevealStagger: time.Hour,
		DraftDebounce: 5 * time.Millisecond,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m CatalogModel, msg tea.Msg) (CatalogModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	c, ok := updated.(CatalogModel)
	require.True(t, ok)
	return c, cmd
}

// run executes cmd and feeds every resulting message back into m. Follow-up
// commands are dropped.
func run(t *testing.T, m CatalogModel, cmd tea.Cmd) CatalogModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = run(t, m, c)
		}
		return m
	}
	if msg == nil {
		return m
	}
	m, _ = update(t, m, msg)
	return m
}

// mountLoaded mounts c and completes its first load.
func mountLoaded(t *testing.T, deps Deps, c domain.Collection) CatalogModel {
	t.Helper()
	m, err := NewCatalogModel(context.Background(), deps, c)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return run(t, m, m.fetch())
}

func TestCatalogModel_RendersFirstPage(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(23)

	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	view := m.View()
	assert.Contains(t, view, "Hero 1")
	assert.Contains(t, view, "Hero 9")
	assert.NotContains(t, view, "Hero 10")
	assert.Contains(t, view, "23 entries")
	assert.Contains(t, view, "‹ prev")
	assert.Contains(t, view, "next ›")
	assert.Equal(t, 3, m.view.TotalPages())
}

func TestCatalogModel_PageKeys(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(23)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor)

	m, _ = update(t, m, runes("l"))
	assert.Equal(t, 2, m.view.CurrentPage())
	assert.Equal(t, 0, m.cursor, "page change scrolls to the top")
	assert.Contains(t, m.View(), "Hero 10")

	m, _ = update(t, m, runes("G"))
	assert.Equal(t, 3, m.view.CurrentPage())

	m, _ = update(t, m, runes("l"))
	assert.Equal(t, 3, m.view.CurrentPage(), "no page after the last")

	m, _ = update(t, m, runes("1"))
	assert.Equal(t, 1, m.view.CurrentPage())

	m, _ = update(t, m, runes("9"))
	assert.Equal(t, 1, m.view.CurrentPage(), "out of range page is ignored")
}

func TestCatalogModel_SinglePageHidesControls(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(5)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	view := m.View()
	assert.Contains(t, view, "Hero 5")
	assert.NotContains(t, view, "next ›")
	assert.NotContains(t, view, "‹ prev")
}

func TestCatalogModel_FilterResetsPageAndPersists(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(23)
	kvs := kv.New(nil)
	deps := testDeps(b, kvs)

	m := mountLoaded(t, deps, heroesCollection())
	m, _ = update(t, m, runes("l"))
	require.Equal(t, 2, m.view.CurrentPage())

	m, _ = update(t, m, FilterSelectedMsg{Value: "Support"})
	assert.Equal(t, "Support", m.view.FilterValue())
	assert.Equal(t, 1, m.view.CurrentPage())
	assert.Len(t, m.view.Filtered(), 11)
	assert.Equal(t, "Support", kv.Get(kvs, "filter:heroes", domain.AllValue))

	// A new mount of the same collection starts from the saved filter.
	again := mountLoaded(t, deps, heroesCollection())
	assert.Equal(t, "Support", again.view.FilterValue())
	assert.Len(t, again.view.Filtered(), 11)
}

func TestCatalogModel_FilterPicker(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(4)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	m, _ = update(t, m, runes("f"))
	require.NotNil(t, m.picker)
	assert.True(t, m.Capturing())
	assert.Contains(t, m.View(), "Filter by Role")

	// Move from "All" to "Carry" and pick it.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = run(t, m, cmd)

	assert.Nil(t, m.picker)
	assert.Equal(t, "Carry", m.view.FilterValue())
	assert.Len(t, m.view.Filtered(), 2)
}

func TestCatalogModel_DeleteFlow(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(3)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	m, _ = update(t, m, runes("d"))
	assert.Equal(t, "h1", m.confirmDelete)
	assert.Contains(t, m.View(), "DELETE")

	m, _ = update(t, m, runes("n"))
	assert.Empty(t, m.confirmDelete)
	assert.Empty(t, b.deleted)

	m, _ = update(t, m, runes("d"))
	m, cmd := update(t, m, runes("y"))
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, deleteResultMsg{}, msg)
	m, refetch := update(t, m, msg)
	assert.Equal(t, []string{"h1"}, b.deleted)
	assert.Contains(t, m.View(), "Deleted")

	m = run(t, m, refetch)
	_, found := m.view.Find("h1")
	assert.False(t, found)
	assert.Len(t, m.view.State().Data, 2)
}

func TestCatalogModel_FailedDeleteStaysInStatus(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(3)
	b.mutateErr = errors.New("server unavailable")
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	m, _ = update(t, m, runes("d"))
	m, cmd := update(t, m, runes("y"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "Delete failed")

	// The toast goes away on the next key; the failure stays visible.
	m, _ = update(t, m, runes("j"))
	assert.NotContains(t, m.View(), "Delete failed")
	assert.Contains(t, m.View(), "Last change failed: server unavailable")
	assert.Len(t, m.view.State().Data, 3)
}

func TestCatalogModel_HeaderShowsSaving(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(3)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())
	assert.NotContains(t, m.View(), "saving...")

	b.mu.Lock()
	b.hold = make(chan struct{})
	b.mu.Unlock()

	m, _ = update(t, m, runes("d"))
	m, cmd := update(t, m, runes("y"))
	require.NotNil(t, cmd)

	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	require.Eventually(t, m.gateway.IsLoading, time.Second, time.Millisecond)
	assert.Contains(t, m.View(), "saving...")

	close(b.hold)
	m, _ = update(t, m, <-result)
	assert.NotContains(t, m.View(), "saving...")
	assert.Equal(t, []string{"h1"}, b.deleted)
}

func TestCatalogModel_CreateFlow(t *testing.T) {
	b := newFakeBackend()
	kvs := kv.New(nil)
	m := mountLoaded(t, testDeps(b, kvs), forumCollection())

	m, _ = update(t, m, runes("a"))
	require.True(t, m.form.IsOpen())

	payload := map[string]any{"title": "Patch notes", "content": "New heroes", "category": "Updates"}
	m, cmd := update(t, m, submitFormMsg{payload: payload})
	require.NotNil(t, cmd)
	assert.True(t, m.form.submitting)

	msg := cmd()
	require.IsType(t, createResultMsg{}, msg)
	m, follow := update(t, m, msg)
	assert.False(t, m.form.IsOpen())
	assert.Contains(t, m.View(), "Added Patch notes")

	m = run(t, m, follow)
	assert.Len(t, b.created, 1)
	assert.Len(t, m.view.State().Data, 1)
	assert.Contains(t, m.View(), "Patch notes")
}

func TestCatalogModel_AddWithoutForm(t *testing.T) {
	b := newFakeBackend()
	c := heroesCollection()
	c.Form = domain.FormNone
	m := mountLoaded(t, testDeps(b, kv.New(nil)), c)

	m, cmd := update(t, m, runes("a"))
	assert.Nil(t, cmd)
	assert.False(t, m.form.IsOpen())
	assert.Contains(t, m.View(), "no form")
}

func TestCatalogModel_ErrorState(t *testing.T) {
	b := newFakeBackend()
	b.listErr = errors.New("connection refused")
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	view := m.View()
	assert.Contains(t, view, "failed to load data")
	assert.Contains(t, view, "Press r to retry")
}

func TestCatalogModel_RefetchErrorKeepsData(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(3)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	b.listErr = errors.New("boom")
	m, cmd := update(t, m, runes("r"))
	m = run(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Hero 1")
	assert.Contains(t, view, "showing last loaded data")
}

func TestCatalogModel_IgnoresForeignResults(t *testing.T) {
	b := newFakeBackend()
	b.data["heroes"] = createTestHeroes(3)
	m := mountLoaded(t, testDeps(b, kv.New(nil)), heroesCollection())

	foreign := fetchResultMsg{
		view:   "another-view",
		result: store.Result{Ticket: m.view.Fetcher().Latest(), Data: nil},
	}
	m, _ = update(t, m, foreign)
	assert.Len(t, m.view.State().Data, 3)

	m, _ = update(t, m, deleteResultMsg{view: "another-view", id: "h1"})
	assert.Empty(t, m.toast)
}

func TestCatalogModel_CloseStopsRevealListener(t *testing.T) {
	b := newFakeBackend()
	m, err := NewCatalogModel(context.Background(), testDeps(b, kv.New(nil)), heroesCollection())
	require.NoError(t, err)

	wait := m.waitForReveal()
	m.Close()
	m.Close()

	assert.Nil(t, wait())
}

func TestEntityLabel(t *testing.T) {
	assert.Equal(t, "Axe", entityLabel(domain.Entity{"id": 1.0, "name": "Axe"}))
	assert.Equal(t, "Patch", entityLabel(domain.Entity{"id": "p", "title": "Patch"}))
	assert.Equal(t, "#7", entityLabel(domain.Entity{"id": 7.0}))
	assert.Equal(t, "(unnamed)", entityLabel(domain.Entity{}))
}
