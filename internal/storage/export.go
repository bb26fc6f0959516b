package storage

import (
	"encoding/csv"
	"io"

	"github.com/san-kum/ccdsim/internal/sim"
	"github.com/segmentio/encoding/json"
)

type ExportData struct {
	Metadata RunMetadata       `json:"metadata"`
	Frames   []sim.Frame       `json:"frames"`
	Events   []sim.EventRecord `json:"events"`
}

// ExportJSON writes a run's metadata, frames and events as one document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes a run's frames in the archive's CSV layout.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := WriteFrames(cw, frames); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *Store) exportData(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Metadata: *meta, Frames: frames, Events: events}, nil
}
