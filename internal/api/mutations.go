package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/h0rv/catalog/internal/domain"
)

// Create posts a new entity (without id) to the collection.
// The server assigns the id and returns the created entity.
func (c *Client) Create(ctx context.Context, resource string, payload any) (domain.Entity, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	var created domain.Entity
	if err := c.do(ctx, http.MethodPost, c.resolve(resource), payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create in %s: %w", resource, err)
	}
	return created, nil
}

// Delete removes the entity with the given id. No response body is required.
func (c *Client) Delete(ctx context.Context, resource string, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete from %s: id is empty", resource)
	}

	if err := c.do(ctx, http.MethodDelete, c.resolve(resource, id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", resource, id, err)
	}
	return nil
}
