package store

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/h0rv/catalog/internal/api"
	"github.com/h0rv/catalog/internal/domain"
)

// ErrInFlight is returned when the same mutation is already running.
var ErrInFlight = errors.New("operation already in flight")

// Gateway performs create and delete calls against one resource. It keeps an
// in-flight guard for the create control and one per deleted id so that a
// repeated trigger is suppressed. Methods block and are safe to call from
// command goroutines.
type Gateway struct {
	client   api.Mutator
	resource string

	mu       sync.Mutex
	creating bool
	deleting map[string]bool
	lastErr  error
}

// NewGateway creates a gateway for resource.
func NewGateway(client api.Mutator, resource string) *Gateway {
	return &Gateway{
		client:   client,
		resource: resource,
		deleting: make(map[string]bool),
	}
}

// Create submits payload as a new entity. On success the caller clears its
// form, closes the modal and refetches.
func (g *Gateway) Create(ctx context.Context, payload any) (domain.Entity, error) {
	g.mu.Lock()
	if g.creating {
		g.mu.Unlock()
		return nil, ErrInFlight
	}
	g.creating = true
	g.lastErr = nil
	g.mu.Unlock()

	created, err := g.client.Create(ctx, g.resource, payload)

	g.mu.Lock()
	g.creating = false
	g.lastErr = err
	g.mu.Unlock()

	if err != nil {
		log.Printf("create in %s failed: %v", g.resource, err)
		return nil, err
	}
	return created, nil
}

// Delete removes the entity with id. On success the caller refetches; the
// local collection is never spliced.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	if g.deleting[id] {
		g.mu.Unlock()
		return ErrInFlight
	}
	g.deleting[id] = true
	g.lastErr = nil
	g.mu.Unlock()

	err := g.client.Delete(ctx, g.resource, id)

	g.mu.Lock()
	delete(g.deleting, id)
	g.lastErr = err
	g.mu.Unlock()

	if err != nil {
		log.Printf("delete %s/%s failed: %v", g.resource, id, err)
	}
	return err
}

// IsLoading reports whether any mutation is in flight.
func (g *Gateway) IsLoading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creating || len(g.deleting) > 0
}

// IsDeleting reports whether a delete for id is in flight.
func (g *Gateway) IsDeleting(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deleting[id]
}

// Err returns the failure of the last finished mutation, nil on success.
func (g *Gateway) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}
