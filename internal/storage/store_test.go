package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Columns: []string{"kinetic_energy", "momentum"},
		Ticks:   []int{0, 10},
		Rows:    [][]float64{{1.5, 0.25}, {1.5, 0.5}},
		Metrics: map[string]float64{"kinetic_energy": 1.5},
		Final: sim.Snapshot{
			Tick:  10,
			Model: "ideal",
			Gas:   gas.DefaultGasState(),
			Particles: []sim.ParticleState{
				{X: 1, Y: 2, VX: -1, VY: 0.5, Radius: 5, Color: "#ff0000"},
				{X: 30, Y: 40, VX: 0, VY: 0, Radius: 3, Color: "#000000"},
			},
		},
		TicksTaken: 10,
		Elapsed:    time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "test", Seed: 42, Resolver: "elastic"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Seed != 42 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Particles != 2 || meta.Ticks != 10 || meta.GasModel != "ideal" {
		t.Errorf("run summary not recorded: %+v", meta)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected kinetic_energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series.Rows) != 2 || series.Ticks[1] != 10 {
		t.Errorf("unexpected series %+v", series)
	}
	if got := series.Column("momentum"); len(got) != 2 || got[1] != 0.5 {
		t.Errorf("unexpected momentum column %v", got)
	}
	if series.Column("missing") != nil {
		t.Error("expected nil for unknown column")
	}

	ps, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	want := testResult().Final.Particles
	if len(ps) != len(want) {
		t.Fatalf("expected %d particles, got %d", len(want), len(ps))
	}
	for i := range ps {
		if ps[i] != want[i] {
			t.Errorf("particle %d: expected %+v, got %+v", i, want[i], ps[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{Name: "a"}, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{Name: "b"}, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// stray directories without metadata are skipped
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "a" {
		t.Errorf("expected oldest run first, got %s", runs[0].Name)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "series.csv", "particles.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Name: "exp"}, testResult())
	if err != nil {
		t.Fatal(err)
	}

	data, err := st.ExportRun(runID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"run", "columns", "ticks", "rows", "metrics", "particles"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestExportJSONFromResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, FromResult(testResult())); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Final == nil || data.Final.Tick != 10 || len(data.Final.Particles) != 2 {
		t.Errorf("final frame not exported: %+v", data.Final)
	}
}
