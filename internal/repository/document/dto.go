package document

import (
	"encoding/json"
	"fmt"

	domdoc "github.com/patchwell/docref/internal/domain/document"
)

// docRow is the JSON-serializable storage representation of a document.
type docRow struct {
	Fields   map[string]any `json:"fields"`
	Revision int            `json:"revision"`
}

// buildPayload converts a domain Document into its raw JSON storage form.
func buildPayload(doc *domdoc.Document) ([]byte, error) {
	row := docRow{Fields: doc.Fields(), Revision: doc.Revision()}
	if row.Fields == nil {
		row.Fields = map[string]any{}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// parsePayload hydrates a domain Document from its raw JSON storage form.
func parsePayload(id string, data []byte) (domdoc.Document, error) {
	var row docRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal document %s: %w", id, err)
	}
	revision := row.Revision
	if revision <= 0 {
		revision = 1
	}
	return domdoc.Reconstruct(id, row.Fields, revision), nil
}
