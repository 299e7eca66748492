package storage

import (
	"encoding/json"
	"io"

	"github.com/raj-open/herz-sub000/internal/pipeline"
)

// ExportData is the full JSON rendering of an analysed series.
type ExportData struct {
	Source   string                   `json:"source"`
	Quantity string                   `json:"quantity"`
	Windows  []*pipeline.WindowResult `json:"windows"`
	Errors   map[int]string           `json:"errors,omitempty"`
}

func ExportJSON(w io.Writer, source, quantity string, results []*pipeline.WindowResult) error {
	data := ExportData{
		Source:   source,
		Quantity: quantity,
		Windows:  results,
	}
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if data.Errors == nil {
			data.Errors = make(map[int]string)
		}
		data.Errors[r.Index] = r.Err.Error()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
