package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gassim/internal/analysis"
	"github.com/san-kum/gassim/internal/automation"
	"github.com/san-kum/gassim/internal/config"
	"github.com/san-kum/gassim/internal/export"
	"github.com/san-kum/gassim/internal/gui"
	"github.com/san-kum/gassim/internal/metrics"
	"github.com/san-kum/gassim/internal/sim"
	"github.com/san-kum/gassim/internal/storage"
	"github.com/san-kum/gassim/internal/stream"
	"github.com/san-kum/gassim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string

	particles int
	radius    float64
	speed     float64
	width     float64
	height    float64
	gasModel  string
	resolver  string
	seed      int64
	ticks     int

	metricName string
	outFile    string
	svgScale   float64
	csvKind    string
	histBins   int

	addr           string
	broadcastEvery int

	benchRuns  int
	benchTicks int
	dumpTicks  int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "gassim",
		Short: "2D rigid-disk gas simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gassim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metricName, "metric", "", "plot only this metric")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "speed distribution and energy spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&histBins, "bins", 12, "speed histogram bins")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the series or final particles of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&csvKind, "kind", "series", "series or particles")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final frame or a metric of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&metricName, "metric", "", "plot this metric instead of the final frame")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 1, "frame scale")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "print the system and particle dumps",
		RunE:  dumpSystem,
	}
	addSystemFlags(dumpCmd)
	dumpCmd.Flags().IntVar(&dumpTicks, "ticks", 0, "ticks to advance before dumping")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live terminal visualization",
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run simulation in a window",
		RunE:  runGUI,
	}
	addSystemFlags(guiCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames over a websocket",
		RunE:  serve,
	}
	addSystemFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&broadcastEvery, "every", 2, "broadcast a frame every n ticks")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one config parameter and compare final metrics",
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks per run")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "particles", "parameter ("+strings.Join(automation.SweepParams, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 10, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 100, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark tick throughput",
		RunE:  benchmark,
	}
	addSystemFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 1000, "ticks per run")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 4, "parallel runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, dumpCmd,
		liveCmd, guiCmd, serveCmd, scenarioCmd, sweepCmd, presetsCmd, benchCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	cmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "particle radius")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "initial particle speed")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "container width")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "container height")
	cmd.Flags().StringVar(&gasModel, "model", "ideal", "gas model (ideal, van_der_waals)")
	cmd.Flags().StringVar(&resolver, "resolver", "elastic", "collision resolver (elastic, exchange)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

// loadConfig layers the preset, then the config file, then any flag the user
// set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("model") {
		cfg.GasModel = gasModel
	}
	if flags.Changed("resolver") {
		cfg.Resolver = resolver
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newController(cfg *config.Config) (*sim.Controller, error) {
	ctrl, err := cfg.NewController()
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Default() {
		ctrl.AddMetric(m)
	}
	return ctrl, nil
}

func displayName() string {
	if preset != "" {
		return preset
	}
	return "gassim"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := displayName()
	if len(args) > 0 {
		name = args[0]
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s: %d particles, %d ticks...\n", name, cfg.Particles, cfg.Ticks)

	result, err := ctrl.Run(cmd.Context(), cfg.Ticks)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}

	runID, err := st.Save(storage.RunMetadata{
		Name:     name,
		Seed:     cfg.Seed,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Resolver: cfg.Resolver,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tBOX\tMODEL\tRESOLVER\tTICKS\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0fx%.0f\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Width, run.Height,
			run.GasModel,
			run.Resolver,
			run.Ticks,
			run.Elapsed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d  model: %s\n", meta.Particles, meta.GasModel)
	fmt.Printf("samples: %d\n\n", len(series.Rows))

	columns := series.Columns
	if metricName != "" {
		columns = []string{metricName}
	}

	for _, col := range columns {
		data := series.Column(col)
		if data == nil {
			return fmt.Errorf("unknown metric: %s (available: %v)", col, series.Columns)
		}
		if len(data) < 2 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ps, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		return fmt.Errorf("no particles to analyze")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d  ticks: %d\n\n", len(ps), meta.Ticks)

	h := analysis.SpeedHistogram(ps, histBins)
	peak := 0
	for _, c := range h.Counts {
		peak = max(peak, c)
	}
	fmt.Println("speed distribution (# observed, . maxwell-boltzmann)")
	for i, c := range h.Counts {
		bar := strings.Repeat("#", c*40/max(peak, 1))
		mark := min(int(h.Expected[i]*40/float64(max(peak, 1))+0.5), 60)
		line := []rune(fmt.Sprintf("%-61s", bar))
		if mark < len(line) && line[mark] == ' ' {
			line[mark] = '.'
		}
		fmt.Printf("  %7.3f |%s %d\n", h.BinCenter(i), strings.TrimRight(string(line), " "), c)
	}
	fmt.Printf("deviation from maxwell-boltzmann: %.3f\n\n", h.Deviation())

	fmt.Println("velocity space (vx, vy)")
	fmt.Println(analysis.VelocityPortrait(ps, 60, 20))

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	ke := series.Column("kinetic_energy")
	spacing := 1
	if len(series.Ticks) > 2 {
		spacing = series.Ticks[2] - series.Ticks[1]
	}
	if spectrum := analysis.PowerSpectrum(ke); len(spectrum) > 2 {
		graph := asciigraph.Plot(spectrum[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy power spectrum"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	if period := analysis.DominantPeriod(ke, spacing); period > 0 {
		fmt.Printf("dominant energy period: %.1f ticks\n", period)
	} else {
		fmt.Println("kinetic energy is constant")
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.ExportRun(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	switch csvKind {
	case "series":
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		if err := w.Write(append([]string{"tick"}, series.Columns...)); err != nil {
			return err
		}
		for i, row := range series.Rows {
			rec := []string{strconv.Itoa(series.Ticks[i])}
			for _, val := range row {
				rec = append(rec, strconv.FormatFloat(val, 'f', 6, 64))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	case "particles":
		ps, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		if err := w.Write([]string{"x", "y", "vx", "vy", "r", "color"}); err != nil {
			return err
		}
		for _, p := range ps {
			rec := []string{
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
				strconv.FormatFloat(p.VX, 'f', 6, 64),
				strconv.FormatFloat(p.VY, 'f', 6, 64),
				strconv.FormatFloat(p.Radius, 'f', 6, 64),
				p.Color,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown kind: %s (series, particles)", csvKind)
	}

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	if metricName != "" {
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		data := series.Column(metricName)
		if data == nil {
			return fmt.Errorf("unknown metric: %s (available: %v)", metricName, series.Columns)
		}
		svg = export.SeriesToSVG(series.Ticks, data, 800, 300, "#00ffaa")
	} else {
		ps, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(sim.Snapshot{
			Tick:      meta.Ticks,
			Width:     meta.Width,
			Height:    meta.Height,
			Model:     meta.GasModel,
			Gas:       meta.Gas,
			Particles: ps,
		}, svgScale)
	}

	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func dumpSystem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := cfg.NewSystem()
	if err != nil {
		return err
	}
	for i := 0; i < dumpTicks; i++ {
		sys.Update(cfg.Width, cfg.Height)
	}

	fmt.Println(sys.String())
	fmt.Println(sys.StringifyParticles())
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" && !cmd.Flags().Changed("particles") {
		return viz.RunInteractive(cmd.Context())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, err := cfg.NewController()
	if err != nil {
		return err
	}
	return viz.RunLive(cmd.Context(), ctrl, displayName())
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, err := cfg.NewController()
	if err != nil {
		return err
	}
	return gui.Run(cmd.Context(), ctrl, displayName())
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, err := cfg.NewController()
	if err != nil {
		return err
	}

	srv := stream.New(ctrl, broadcastEvery)
	if err := ctrl.Start(cmd.Context()); err != nil {
		return err
	}
	defer ctrl.Stop()

	return srv.ListenAndServe(cmd.Context(), addr)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(cmd.Context(), sc, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPARTICLES\tTICK\tKE\tCONTAINMENT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%.3f\n",
			r.Label,
			r.Particles,
			r.Result.Final.Tick,
			r.Result.Metrics["kinetic_energy"],
			r.Result.Metrics["containment"],
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Ticks:     cfg.Ticks,
	}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tKE\tMEAN_SPEED\tDRIFT\tCONTAINMENT\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.2e\t%.3f\n",
			r.ParamValue,
			r.Metrics["kinetic_energy"],
			r.Metrics["mean_speed"],
			r.Metrics["energy_drift"],
			r.Metrics["containment"],
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tRADIUS\tSPEED\tMODEL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g±%g\t%g\t%s\n", name, p.Particles, p.Radius, p.RadiusSpread, p.Speed, p.GasModel)
	}
	return w.Flush()
}

func benchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %d particles, %d ticks\n\n", cfg.Particles, benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNS\tTICKS\tTIME\tTICKS/SEC")

	for _, n := range []int{1, benchRuns} {
		ens := sim.NewEnsemble(func(s int64) (*sim.Controller, error) {
			c := *cfg
			c.Seed = s
			return c.NewController()
		}, n, cfg.Seed)

		start := time.Now()
		results, err := ens.Run(cmd.Context(), benchTicks)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		total := 0
		for _, r := range results {
			total += r.TicksTaken
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, total, elapsed, float64(total)/elapsed.Seconds())
	}

	return w.Flush()
}
