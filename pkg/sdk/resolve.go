package sdk

import (
	"context"
	"net/http"
)

// Resolve fetches the named documents and substitutes their reference
// fields per the given specs. Dangling references resolve to null; ids
// that do not exist are omitted from the result.
func (c *Client) Resolve(ctx context.Context, collection string, ids []string, specs []Spec) ([]Document, error) {
	req := struct {
		IDs   []string `json:"ids"`
		Specs []Spec   `json:"specs"`
	}{IDs: ids, Specs: specs}

	var resp struct {
		Items []Document `json:"items"`
	}
	err := c.do(ctx, http.MethodPost, c.collectionPath(collection)+"/resolve", req, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ResolveOne resolves the reference fields of a single document.
func (c *Client) ResolveOne(ctx context.Context, collection, id string, specs []Spec) (Document, error) {
	req := struct {
		Specs []Spec `json:"specs"`
	}{Specs: specs}

	var doc Document
	err := c.do(ctx, http.MethodPost, c.documentPath(collection, id)+"/resolve", req, &doc)
	return doc, err
}
