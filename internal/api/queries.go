package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/h0rv/catalog/internal/domain"
)

// List fetches the whole collection at resource. The server defines the order;
// it is returned untouched.
func (c *Client) List(ctx context.Context, resource string) ([]domain.Entity, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	var entities []domain.Entity
	if err := c.do(ctx, http.MethodGet, c.resolve(resource), nil, &entities); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	if entities == nil {
		entities = []domain.Entity{}
	}
	return entities, nil
}
