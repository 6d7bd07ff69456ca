package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/Ryneqq/nbody/internal/sim"
)

type ExportData struct {
	Run   RunMetadata `json:"run"`
	Stats []sim.Stats `json:"stats"`
}

// Export bundles a stored run's metadata and statistics into one JSON
// document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	stats, err := s.LoadStats(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Stats: stats}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
