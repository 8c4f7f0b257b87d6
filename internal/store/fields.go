package store

import (
	"encoding/json"
	"fmt"
)

// Encode converts a typed record into schemaless Fields via its JSON
// tags. The id is stripped: ids live on the Document, not in its body.
func Encode(v any) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	delete(f, "id")
	return f, nil
}

// Decode fills a typed record from a document, injecting the document id
// under the "id" key so record structs carry their storage identifier.
// Unknown fields are ignored and missing fields keep their zero value,
// so malformed documents never fail a read.
func Decode(d Document, out any) error {
	merged := make(Fields, len(d.Fields)+1)
	for k, v := range d.Fields {
		merged[k] = v
	}
	merged["id"] = d.ID
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}
