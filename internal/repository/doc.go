package repository

import (
	"encoding/json"
	"fmt"

	"github.com/sumire/collab/internal/docstore"
)

// encodeDoc converts a domain value into a schemaless document using its JSON
// tags, which are the stored wire contract.
func encodeDoc(v any) (docstore.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// decodeDoc fills a domain value from a stored document.
func decodeDoc(doc docstore.Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
