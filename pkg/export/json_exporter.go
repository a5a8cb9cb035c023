package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter serialises records into a downloadable JSON document.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render marshals the records with indentation. A nil or empty slice
// renders as a valid empty JSON array.
func (e *JSONExporter) Render(records interface{}) ([]byte, error) {
	if records == nil {
		return []byte("[]"), nil
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json export: %w", err)
	}
	return out, nil
}
