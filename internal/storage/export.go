package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gassim/internal/sim"
)

type ExportData struct {
	Run       *RunMetadata        `json:"run,omitempty"`
	Columns   []string            `json:"columns"`
	Ticks     []int               `json:"ticks"`
	Rows      [][]float64         `json:"rows"`
	Metrics   map[string]float64  `json:"metrics"`
	Final     *sim.Snapshot       `json:"final,omitempty"`
	Particles []sim.ParticleState `json:"particles,omitempty"`
}

// ExportRun gathers everything stored for runID into one document.
func (s *Store) ExportRun(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	ps, err := s.LoadParticles(runID)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Run:       meta,
		Columns:   series.Columns,
		Ticks:     series.Ticks,
		Rows:      series.Rows,
		Metrics:   meta.Metrics,
		Particles: ps,
	}, nil
}

// FromResult builds an export document straight from an in-memory run.
func FromResult(result *sim.Result) *ExportData {
	final := result.Final
	return &ExportData{
		Columns: result.Columns,
		Ticks:   result.Ticks,
		Rows:    result.Rows,
		Metrics: result.Metrics,
		Final:   &final,
	}
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
