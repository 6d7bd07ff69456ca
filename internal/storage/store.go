package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Ryneqq/nbody/internal/config"
	"github.com/Ryneqq/nbody/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

var ErrMalformedStats = errors.New("storage: malformed stats file")

var statsHeader = []string{"tick", "bodies", "merges", "total_mass", "momentum", "kinetic_energy", "potential_energy"}

// Store keeps one directory per run holding its metadata and per-tick
// aggregate statistics. Body trajectories are never written.
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
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dimensions int                `json:"dimensions"`
	Bodies     int                `json:"bodies"`
	Ticks      int                `json:"ticks"`
	G          float64            `json:"g"`
	Dt         float64            `json:"dt"`
	Survivors  int                `json:"survivors"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

func (s *Store) Save(preset string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", preset, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     preset,
		Timestamp:  now,
		Seed:       result.Seed,
		Dimensions: cfg.Dimensions,
		Ticks:      result.TicksTaken,
		G:          cfg.G,
		Dt:         cfg.Dt,
		Survivors:  len(result.Final),
		Metrics:    finiteMetrics(result.Metrics),
	}
	if len(result.Stats) > 0 {
		meta.Bodies = result.Stats[0].Bodies
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), result.Stats); err != nil {
		return "", err
	}

	return runID, nil
}

// finiteMetrics drops values JSON cannot represent.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
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

func writeStats(path string, stats []sim.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statsHeader); err != nil {
		return err
	}
	for _, st := range stats {
		row := []string{
			strconv.Itoa(st.Tick),
			strconv.Itoa(st.Bodies),
			strconv.Itoa(st.Merges),
			formatFloat(st.TotalMass),
			formatFloat(st.Momentum),
			formatFloat(st.KineticEnergy),
			formatFloat(st.PotentialEnergy),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
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

func (s *Store) LoadStats(runID string) ([]sim.Stats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(statsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStats, err)
	}
	if len(records) < 2 {
		return []sim.Stats{}, nil
	}

	stats := make([]sim.Stats, 0, len(records)-1)
	for i, record := range records[1:] {
		st, err := parseStats(record)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedStats, i+1, err)
		}
		stats = append(stats, st)
	}

	return stats, nil
}

func parseStats(record []string) (sim.Stats, error) {
	var st sim.Stats
	var err error
	ints := []*int{&st.Tick, &st.Bodies, &st.Merges}
	for i, dst := range ints {
		if *dst, err = strconv.Atoi(record[i]); err != nil {
			return st, err
		}
	}
	floats := []*float64{&st.TotalMass, &st.Momentum, &st.KineticEnergy, &st.PotentialEnergy}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(record[len(ints)+i], 64); err != nil {
			return st, err
		}
	}
	return st, nil
}
