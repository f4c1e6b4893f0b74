package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	particlesFile = "particles.csv"
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
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Particles int                `json:"particles"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	GasModel  string             `json:"gas_model"`
	Resolver  string             `json:"resolver"`
	Ticks     int                `json:"ticks"`
	Elapsed   string             `json:"elapsed"`
	Gas       gas.GasState       `json:"gas"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata, the sampled metric
// series and the final particle frame. It returns the run ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Ticks = result.TicksTaken
	meta.Elapsed = result.Elapsed.String()
	meta.Metrics = result.Metrics
	meta.Gas = result.Final.Gas
	meta.GasModel = result.Final.Model
	meta.Particles = len(result.Final.Particles)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := WriteParticlesCSV(filepath.Join(runDir, particlesFile), result.Final.Particles); err != nil {
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

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"tick"}, result.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range result.Rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.Itoa(result.Ticks[i]))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteParticlesCSV writes one row per particle: x, y, vx, vy, r, color.
func WriteParticlesCSV(path string, ps []sim.ParticleState) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y", "vx", "vy", "r", "color"}); err != nil {
		return err
	}
	for _, p := range ps {
		rec := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
			strconv.FormatFloat(p.VX, 'g', -1, 64),
			strconv.FormatFloat(p.VY, 'g', -1, 64),
			strconv.FormatFloat(p.Radius, 'g', -1, 64),
			p.Color,
		}
		if err := w.Write(rec); err != nil {
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

// Series is the sampled metric table of a stored run.
type Series struct {
	Columns []string
	Ticks   []int
	Rows    [][]float64
}

// Column returns the values of the named metric, or nil.
func (s *Series) Column(name string) []float64 {
	idx := -1
	for i, c := range s.Columns {
		if c == name {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(s.Rows))
	for _, row := range s.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	series := &Series{Columns: []string{}, Ticks: []int{}, Rows: [][]float64{}}
	if len(records) == 0 {
		return series, nil
	}
	if len(records[0]) > 1 {
		series.Columns = records[0][1:]
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		tick, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				v = 0
			}
			row = append(row, v)
		}
		series.Ticks = append(series.Ticks, tick)
		series.Rows = append(series.Rows, row)
	}

	return series, nil
}

func (s *Store) LoadParticles(runID string) ([]sim.ParticleState, error) {
	return ReadParticlesCSV(filepath.Join(s.baseDir, runID, particlesFile))
}

func ReadParticlesCSV(path string) ([]sim.ParticleState, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	ps := make([]sim.ParticleState, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < 5 {
			continue
		}

		vals := make([]float64, 5)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("particles.csv line %d: %w", i+1, err)
			}
			vals[j] = v
		}

		p := sim.ParticleState{X: vals[0], Y: vals[1], VX: vals[2], VY: vals[3], Radius: vals[4]}
		if len(record) > 5 {
			p.Color = record[5]
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
