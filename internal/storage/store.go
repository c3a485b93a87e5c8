// Package storage persists simulation runs on disk: one directory per run
// holding metadata.json and a frames.csv time series of object positions.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/physim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

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
	Scenario   string             `json:"scenario"`
	Library    string             `json:"library"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Objects    int                `json:"objects"`
	StepsTaken int                `json:"steps_taken"`
	SettledAt  float64            `json:"settled_at"`
	Metrics    map[string]float64 `json:"metrics"`
	Final      []sim.ObjectState  `json:"final,omitempty"`
}

// Run identifies what was simulated; Save fills in the rest from the result.
type Run struct {
	Scenario string  `json:"scenario"`
	Library  string  `json:"library"`
	Seed     int64   `json:"seed"`
	Dt       float64 `json:"dt"`
	Duration float64 `json:"duration"`
}

// Save writes the run's metadata and, when rec holds frames, its time
// series. It returns the new run id.
func (s *Store) Save(run Run, result *sim.Result, rec *Recorder) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", run.Scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   run.Scenario,
		Library:    run.Library,
		Timestamp:  now,
		Seed:       run.Seed,
		Dt:         run.Dt,
		Duration:   run.Duration,
		Objects:    len(result.Final),
		StepsTaken: result.StepsTaken,
		SettledAt:  result.SettledAt,
		Metrics:    result.Metrics,
		Final:      result.Final,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if rec == nil || rec.Len() == 0 {
		return runID, nil
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), rec); err != nil {
		return "", err
	}
	return runID, nil
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

func writeFrames(path string, rec *Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rec.Header()); err != nil {
		return err
	}
	for _, row := range rec.Rows() {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Series is a loaded frames.csv. Values[i] holds the position columns of
// row i in Columns order.
type Series struct {
	Columns []string
	Times   []float64
	Active  []int
	Values  [][]float64
}

// Column returns the values of one position column such as "o3_y".
func (s *Series) Column(name string) ([]float64, bool) {
	idx := -1
	for i, c := range s.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, 0, len(s.Values))
	for _, row := range s.Values {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out, true
}

func (s *Store) LoadFrames(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	if len(records) == 0 {
		return series, nil
	}
	if len(records[0]) >= 2 {
		series.Columns = records[0][2:]
	}

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		active, err := strconv.Atoi(record[1])
		if err != nil {
			continue
		}

		values := make([]float64, len(record)-2)
		for j, field := range record[2:] {
			// Objects absent from a frame leave empty cells.
			if field == "" {
				continue
			}
			values[j], _ = strconv.ParseFloat(field, 64)
		}
		series.Times = append(series.Times, t)
		series.Active = append(series.Active, active)
		series.Values = append(series.Values, values)
	}

	return series, nil
}
