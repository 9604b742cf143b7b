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
	"time"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/sim"
	"github.com/san-kum/jellosim/internal/worldfile"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	initialFile  = "initial.w"
	finalFile    = "final.w"
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
	World      string             `json:"world"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	N          int                `json:"n"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Every      int                `json:"every"`
	Metrics    map[string]float64 `json:"metrics"`
	StopReason string             `json:"stop_reason,omitempty"`
}

// Run bundles everything Save writes for one simulation.
type Run struct {
	World   string
	Config  sim.Config
	Initial *worldfile.World
	Final   *dynamo.Lattice
	Result  *sim.Result
}

func (s *Store) Save(run Run) (string, error) {
	now := time.Now()
	runID, err := s.newID(run.World, now)
	if err != nil {
		return "", err
	}
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		World:      run.World,
		Timestamp:  now,
		Integrator: run.Initial.Params.Integrator.String(),
		Dt:         run.Initial.Params.Dt,
		N:          run.Initial.Lattice.N,
		Steps:      run.Config.Steps,
		StepsTaken: run.Result.StepsTaken,
		Every:      run.Config.Every,
		Metrics:    run.Result.Metrics,
	}
	if run.Result.Stopped() {
		meta.StopReason = errors.Join(run.Result.Errors...).Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), run.Result); err != nil {
		return "", err
	}
	if err := worldfile.Save(filepath.Join(runDir, initialFile), run.Initial); err != nil {
		return "", err
	}
	if run.Final != nil {
		final := &worldfile.World{Params: run.Initial.Params, Lattice: run.Final}
		if err := worldfile.Save(filepath.Join(runDir, finalFile), final); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// newID names a run after its world and start time, with a counter suffix
// when two runs start within the same second.
func (s *Store) newID(world string, now time.Time) (string, error) {
	if world == "" {
		world = "run"
	}
	base := fmt.Sprintf("%s_%d", world, now.Unix())
	id := base
	for n := 1; ; n++ {
		_, err := os.Stat(filepath.Join(s.baseDir, id))
		if os.IsNotExist(err) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
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

func writeFrames(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"step", "time"}, result.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range result.Frames {
		row := []string{
			strconv.Itoa(fr.Step),
			strconv.FormatFloat(fr.Time, 'g', -1, 64),
		}
		for _, val := range fr.Values {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

// LoadFrames reads frames.csv back into the column names and frames it was
// written from.
func (s *Store) LoadFrames(runID string) ([]string, []sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, nil, fmt.Errorf("%s: missing header", framesFile)
	}

	columns := records[0][2:]
	frames := make([]sim.Frame, 0, len(records)-1)
	for line, record := range records[1:] {
		fr, err := parseFrame(record)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		frames = append(frames, fr)
	}

	return columns, frames, nil
}

func parseFrame(record []string) (sim.Frame, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Frame{}, err
	}
	t, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return sim.Frame{}, err
	}

	values := make([]float64, 0, len(record)-2)
	for _, field := range record[2:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return sim.Frame{}, err
		}
		values = append(values, v)
	}
	return sim.Frame{Step: step, Time: t, Values: values}, nil
}

// LoadWorld reads the initial or final world snapshot of a run.
func (s *Store) LoadWorld(runID string, final bool) (*worldfile.World, error) {
	name := initialFile
	if final {
		name = finalFile
	}
	return worldfile.Load(filepath.Join(s.baseDir, runID, name))
}
