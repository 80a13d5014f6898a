package sdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CreateDocument stores a new document under a server-generated identifier.
func (c *Client) CreateDocument(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	req := struct {
		Fields map[string]any `json:"fields"`
	}{Fields: fields}

	var doc Document
	err := c.do(ctx, http.MethodPost, c.documentsPath(collection), req, &doc)
	return doc, err
}

// UpsertDocument stores a document under the given identifier, replacing
// any previous revision.
func (c *Client) UpsertDocument(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	req := struct {
		Fields map[string]any `json:"fields"`
	}{Fields: fields}

	var doc Document
	err := c.do(ctx, http.MethodPut, c.documentPath(collection, id), req, &doc)
	return doc, err
}

// GetDocument fetches one document.
func (c *Client) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := c.do(ctx, http.MethodGet, c.documentPath(collection, id), nil, &doc)
	return doc, err
}

// ListDocuments returns one page of documents. Pass the previous page's
// NextCursor to continue; an empty cursor starts from the beginning.
func (c *Client) ListDocuments(ctx context.Context, collection, cursor string, limit int) (DocumentPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := c.documentsPath(collection)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page DocumentPage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

// PatchDocument merges fields into a document. A JSON null value removes
// the field.
func (c *Client) PatchDocument(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	req := struct {
		Fields map[string]any `json:"fields"`
	}{Fields: fields}

	var doc Document
	err := c.do(ctx, http.MethodPatch, c.documentPath(collection, id), req, &doc)
	return doc, err
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.documentPath(collection, id), nil, nil)
}

// BatchUpsert stores up to the server's batch limit of documents,
// reporting a per-item outcome.
func (c *Client) BatchUpsert(ctx context.Context, collection string, items []BatchItem) (BatchOutcome, error) {
	req := struct {
		Documents []BatchItem `json:"documents"`
	}{Documents: items}

	var out BatchOutcome
	err := c.do(ctx, http.MethodPost, c.documentsPath(collection)+"/batch", req, &out)
	return out, err
}

// BatchDelete removes documents by identifier, reporting a per-item outcome.
func (c *Client) BatchDelete(ctx context.Context, collection string, ids []string) (BatchOutcome, error) {
	req := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}

	var out BatchOutcome
	err := c.do(ctx, http.MethodDelete, c.documentsPath(collection)+"/batch", req, &out)
	return out, err
}

func (c *Client) documentsPath(collection string) string {
	return c.collectionPath(collection) + "/documents"
}

func (c *Client) documentPath(collection, id string) string {
	return c.documentsPath(collection) + "/" + url.PathEscape(id)
}
