package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Columns []string    `json:"columns"`
	Times   []float64   `json:"times"`
	Values  [][]float64 `json:"values"`
}

// ExportJSON writes a run's metadata and recorded frames as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	columns, frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Columns:     columns,
		Times:       make([]float64, len(frames)),
		Values:      make([][]float64, len(frames)),
	}
	for i, fr := range frames {
		data.Times[i] = fr.Time
		data.Values[i] = fr.Values
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
