package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
)

// ErrInvalidRunID is returned for run ids that would resolve outside the
// store's directory.
var ErrInvalidRunID = errors.New("invalid run id")

var idReplacer = strings.NewReplacer("/", "_", `\`, "_")

// Columns recorded per body in states.csv, in order.
var Columns = []string{"x", "y", "vx", "vy"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Scene    string
	Dt       float64
	Duration float64
	Pairing  string
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Pairing    string             `json:"pairing"`
	Bodies     int                `json:"bodies"`
	Steps      int                `json:"steps"`
	Collisions int                `json:"collisions"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", idReplacer.Replace(info.Scene), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	bodies := 0
	if len(result.Frames) > 0 {
		bodies = len(result.Frames[0].Bodies)
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      info.Scene,
		Timestamp:  now,
		Dt:         info.Dt,
		Duration:   info.Duration,
		Pairing:    info.Pairing,
		Bodies:     bodies,
		Steps:      result.StepsTaken,
		Collisions: result.Collisions,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, "states.csv"), bodies, result.Frames); err != nil {
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

func writeStates(path string, bodies int, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time"}
	for i := 0; i < bodies; i++ {
		for _, c := range Columns {
			header = append(header, fmt.Sprintf("b%d_%s", i, c))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{strconv.FormatFloat(fr.Time, 'f', 6, 64)}
		for _, b := range fr.Bodies {
			row = append(row,
				strconv.FormatFloat(b.Position.X, 'f', 6, 64),
				strconv.FormatFloat(b.Position.Y, 'f', 6, 64),
				strconv.FormatFloat(b.Velocity.X, 'f', 6, 64),
				strconv.FormatFloat(b.Velocity.Y, 'f', 6, 64),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all stored runs, oldest first.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// runDir resolves the directory of a run. The id must be a single path
// element.
func (s *Store) runDir(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." ||
		filepath.Base(runID) != runID || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates returns the recorded rows (without the time column) and the
// matching times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filepath.Join(dir, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// Series extracts one column ("x", "y", "vx" or "vy") of one body.
func (s *Store) Series(runID string, body int, column string) ([]float64, []float64, error) {
	col := -1
	for i, c := range Columns {
		if c == column {
			col = i
		}
	}
	if col < 0 {
		return nil, nil, fmt.Errorf("unknown column %q (want one of %v)", column, Columns)
	}

	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	idx := body*len(Columns) + col
	data := make([]float64, len(states))
	for i, st := range states {
		if body < 0 || idx >= len(st) {
			return nil, nil, fmt.Errorf("run %s has no body %d", runID, body)
		}
		data[i] = st[idx]
	}
	return data, times, nil
}

// Trajectories returns the recorded positions of every body, one path per
// body in the order the bodies were added.
func (s *Store) Trajectories(runID string) ([][]physics.Vector, error) {
	states, _, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}

	n := len(states[0]) / len(Columns)
	paths := make([][]physics.Vector, n)
	for i := range paths {
		paths[i] = make([]physics.Vector, 0, len(states))
	}
	for _, row := range states {
		for i := 0; i < n && (i+1)*len(Columns) <= len(row); i++ {
			base := i * len(Columns)
			paths[i] = append(paths[i], physics.Vec(row[base], row[base+1]))
		}
	}
	return paths, nil
}
