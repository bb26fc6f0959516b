package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/ccdsim/internal/sim"
	"github.com/segmentio/encoding/json"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	eventsFile   = "events.csv"
)

// Store archives finished runs as plain files under baseDir. Archives are
// for inspection and export; a run cannot be resumed from one.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dims       int                `json:"dims"`
	Precision  string             `json:"precision"`
	Timestep   float64            `json:"timestep"`
	Frames     int                `json:"frames"`
	Particles  int                `json:"particles"`
	Anchor     bool               `json:"anchor"`
	Backend    string             `json:"backend"`
	Steps      int                `json:"steps"`
	Iterations int                `json:"iterations"`
	Events     int                `json:"events"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Run is the recorded output of a simulation.
type Run struct {
	Frames  []sim.Frame
	Events  []sim.EventRecord
	Metrics map[string]float64
}

// Save writes meta and run into a new run directory and returns its id.
// meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, run Run) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s", meta.Name, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Events = len(run.Events)
	meta.Metrics = run.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, framesFile), func(w *csv.Writer) error {
		return WriteFrames(w, run.Frames)
	}); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, eventsFile), func(w *csv.Writer) error {
		return WriteEvents(w, run.Events)
	}); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFrames writes one row per particle per frame:
// frame,time,energy,particle,x0..xD-1,v0..vD-1.
func WriteFrames(w *csv.Writer, frames []sim.Frame) error {
	dims := 0
	if len(frames) > 0 && len(frames[0].Positions) > 0 {
		dims = len(frames[0].Positions[0])
	}

	header := []string{"frame", "time", "energy", "particle"}
	for d := 0; d < dims; d++ {
		header = append(header, fmt.Sprintf("x%d", d))
	}
	for d := 0; d < dims; d++ {
		header = append(header, fmt.Sprintf("v%d", d))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for _, f := range frames {
		for i := range f.Positions {
			row = append(row[:0],
				strconv.Itoa(f.Index),
				formatFloat(f.Time),
				formatFloat(f.Energy),
				strconv.Itoa(i))
			for _, x := range f.Positions[i] {
				row = append(row, formatFloat(x))
			}
			for _, v := range f.Velocities[i] {
				row = append(row, formatFloat(v))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteEvents writes one row per contact: frame,time,a,b,anchor.
func WriteEvents(w *csv.Writer, events []sim.EventRecord) error {
	if err := w.Write([]string{"frame", "time", "a", "b", "anchor"}); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			strconv.Itoa(ev.Frame),
			formatFloat(ev.Time),
			strconv.Itoa(ev.A),
			strconv.Itoa(ev.B),
			strconv.FormatBool(ev.Anchor),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every archived run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("reading %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadFrames reads the frames of a run back in order.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	dims := (len(records[0]) - 4) / 2
	frames := make([]sim.Frame, 0)

	for line, record := range records[1:] {
		if len(record) != 4+2*dims {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", framesFile, line+2, 4+2*dims, len(record))
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
			}
			vals[j] = v
		}

		index := int(vals[0])
		if len(frames) == 0 || frames[len(frames)-1].Index != index {
			frames = append(frames, sim.Frame{Index: index, Time: vals[1], Energy: vals[2]})
		}
		f := &frames[len(frames)-1]
		f.Positions = append(f.Positions, vals[4:4+dims])
		f.Velocities = append(f.Velocities, vals[4+dims:])
	}

	return frames, nil
}

func (s *Store) LoadEvents(runID string) ([]sim.EventRecord, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	events := make([]sim.EventRecord, 0, len(records))
	for line, record := range records {
		if line == 0 {
			continue
		}
		if len(record) != 5 {
			return nil, fmt.Errorf("%s line %d: expected 5 fields, got %d", eventsFile, line+1, len(record))
		}

		var ev sim.EventRecord
		var err error
		if ev.Frame, err = strconv.Atoi(record[0]); err != nil {
			return nil, err
		}
		if ev.Time, err = strconv.ParseFloat(record[1], 64); err != nil {
			return nil, err
		}
		if ev.A, err = strconv.Atoi(record[2]); err != nil {
			return nil, err
		}
		if ev.B, err = strconv.Atoi(record[3]); err != nil {
			return nil, err
		}
		if ev.Anchor, err = strconv.ParseBool(record[4]); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
