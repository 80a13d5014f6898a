package sdk

import (
	"context"
	"net/http"
	"net/url"
)

// UpsertCollection creates the collection schema, or replaces it when the
// collection already exists.
func (c *Client) UpsertCollection(ctx context.Context, name string, fields []FieldDefinition) (Collection, error) {
	req := struct {
		Fields []FieldDefinition `json:"fields"`
	}{Fields: fields}

	var col Collection
	err := c.do(ctx, http.MethodPut, c.collectionPath(name), req, &col)
	return col, err
}

// GetCollection fetches one collection schema with its document count.
func (c *Client) GetCollection(ctx context.Context, name string) (Collection, error) {
	var col Collection
	err := c.do(ctx, http.MethodGet, c.collectionPath(name), nil, &col)
	return col, err
}

// ListCollections returns all collection schemas.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var resp struct {
		Items []Collection `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DeleteCollection removes a collection schema.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.collectionPath(name), nil, nil)
}

func (c *Client) collectionPath(name string) string {
	return "/api/v1/collections/" + url.PathEscape(name)
}
