package store

import (
	"context"
	"errors"
	"testing"

	"github.com/h0rv/catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context, resource string) ([]domain.Entity, error)

func (f listerFunc) List(ctx context.Context, resource string) ([]domain.Entity, error) {
	return f(ctx, resource)
}

func TestFetcher_InitialState(t *testing.T) {
	f := NewFetcher("heroes")
	state := f.State()

	assert.True(t, state.Loading)
	assert.Empty(t, state.Data)
	assert.NoError(t, state.Err)
	assert.Equal(t, domain.StatusLoading, state.Status())
}

func TestFetcher_CommitSuccess(t *testing.T) {
	f := NewFetcher("heroes")
	ticket := f.Begin()

	data := createTestHeroes()
	require.True(t, f.Commit(Result{Ticket: ticket, Data: data}))

	state := f.State()
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.Equal(t, data, state.Data)
	assert.Equal(t, domain.StatusReady, state.Status())
}

func TestFetcher_CommitFailure(t *testing.T) {
	t.Run("first load leaves data empty", func(t *testing.T) {
		f := NewFetcher("heroes")
		ticket := f.Begin()

		require.True(t, f.Commit(Result{Ticket: ticket, Err: errors.New("connection refused")}))

		state := f.State()
		assert.False(t, state.Loading)
		assert.Empty(t, state.Data)
		assert.ErrorIs(t, state.Err, ErrLoadFailed)
		assert.Equal(t, domain.StatusError, state.Status())
	})

	t.Run("refetch failure keeps last good data", func(t *testing.T) {
		f := NewFetcher("heroes")
		data := createTestHeroes()
		f.Commit(Result{Ticket: f.Begin(), Data: data})

		ticket := f.Refetch()
		assert.True(t, f.State().Loading)
		assert.Equal(t, data, f.State().Data, "loading keeps the last loaded collection")

		f.Commit(Result{Ticket: ticket, Err: errors.New("boom")})
		assert.Equal(t, data, f.State().Data)
		assert.Error(t, f.State().Err)
	})

	t.Run("begin clears error", func(t *testing.T) {
		f := NewFetcher("heroes")
		f.Commit(Result{Ticket: f.Begin(), Err: errors.New("boom")})
		require.Error(t, f.State().Err)

		f.Begin()
		assert.NoError(t, f.State().Err)
		assert.True(t, f.State().Loading)
	})
}

func TestFetcher_LastInitiatedWins(t *testing.T) {
	f := NewFetcher("heroes")
	first := f.Begin()
	second := f.Refetch()

	fresh := []domain.Entity{{"id": "2", "role": "Support"}}
	stale := []domain.Entity{{"id": "1", "role": "Carry"}}

	// The second load completes first, then the superseded one resolves.
	require.True(t, f.Commit(Result{Ticket: second, Data: fresh}))
	assert.False(t, f.Commit(Result{Ticket: first, Data: stale}))

	assert.Equal(t, fresh, f.State().Data)
	assert.False(t, f.State().Loading)
}

func TestFetcher_StaleWhileLoading(t *testing.T) {
	f := NewFetcher("heroes")
	first := f.Begin()
	f.Refetch()

	assert.False(t, f.Commit(Result{Ticket: first, Data: createTestHeroes()}))
	assert.True(t, f.State().Loading, "a stale result must not end the newer load")
	assert.Empty(t, f.State().Data)
}

func TestFetcher_SetResource(t *testing.T) {
	f := NewFetcher("heroes")
	old := f.Begin()
	f.Commit(Result{Ticket: old, Data: createTestHeroes()})

	ticket := f.SetResource("items")
	assert.Equal(t, "items", ticket.Resource)
	assert.Empty(t, f.State().Data)

	// A late result for the old resource with a matching sequence is still stale.
	assert.False(t, f.Commit(Result{Ticket: Ticket{Resource: "heroes", Seq: ticket.Seq}}))
	assert.True(t, f.Commit(Result{Ticket: ticket, Data: []domain.Entity{{"id": "i1"}}}))
}

func TestFetcher_Load(t *testing.T) {
	var gotResource string
	lister := listerFunc(func(_ context.Context, resource string) ([]domain.Entity, error) {
		gotResource = resource
		return createTestHeroes(), nil
	})

	f := NewFetcher("heroes")
	run := f.Load(context.Background(), lister)
	assert.True(t, f.State().Loading)

	result := run()
	assert.Equal(t, "heroes", gotResource)
	require.True(t, f.Commit(result))
	assert.Len(t, f.State().Data, 3)
}
