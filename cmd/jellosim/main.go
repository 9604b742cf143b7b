package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/jellosim/internal/analysis"
	"github.com/san-kum/jellosim/internal/automation"
	"github.com/san-kum/jellosim/internal/compute"
	"github.com/san-kum/jellosim/internal/config"
	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/export"
	"github.com/san-kum/jellosim/internal/integrators"
	"github.com/san-kum/jellosim/internal/metrics"
	"github.com/san-kum/jellosim/internal/sim"
	"github.com/san-kum/jellosim/internal/storage"
	"github.com/san-kum/jellosim/internal/viz"
	"github.com/san-kum/jellosim/internal/worldfile"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	side        int
	steps       int
	every       int
	bound       float64
	integrator  string
	dt          float64
	outFile     string
	final       bool
	workers     int
	svgDir      string
	metricName  string
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepCount  int
	trials      int
	lyapPerturb float64
	mcPerturb   float64
	seed        int64

	logger = slog.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jellosim",
		Short: "jello cube mass-spring simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [world]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [world]",
		Short: "run a simulation with a live monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchSimulation,
	}
	addWorldFlags(watchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [world]",
		Short: "compare Euler and RK4 from the same start",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	addWorldFlags(compareCmd)

	genCmd := &cobra.Command{
		Use:   "gen [preset] [out.w]",
		Short: "write a preset world file",
		Args:  cobra.ExactArgs(2),
		RunE:  generateWorld,
	}
	genCmd.Flags().IntVar(&side, "side", config.DefaultSide, "points per lattice side")

	infoCmd := &cobra.Command{
		Use:   "info [world]",
		Short: "show world parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  worldInfo,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgDir, "svg", "", "also write one svg per metric into this directory")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	worldCmd := &cobra.Command{
		Use:   "world [run_id]",
		Short: "print the initial or final world of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runWorld,
	}
	worldCmd.Flags().BoolVar(&final, "final", false, "print the final world")
	worldCmd.Flags().StringVar(&outFile, "svg", "", "write an x-z projection of the lattice to this svg file instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a run metric",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metricName, "metric", "extent", "metric column to analyse")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [world]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lyapunov,
	}
	addWorldFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&lyapPerturb, "perturb", 1e-6, "initial displacement of the first point")

	sweepCmd := &cobra.Command{
		Use:   "sweep [world]",
		Short: "run a world across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweep,
	}
	addWorldFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter to sweep ("+strings.Join(automation.SweepParams, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.0001, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.002, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [world]",
		Short: "run randomly perturbed copies of a world",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	addWorldFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.01, "largest displacement per coordinate")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run and save every run of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, compareCmd, genCmd, infoCmd, listCmd, plotCmd, exportCmd, worldCmd, presetsCmd,
		analyzeCmd, lyapunovCmd, sweepCmd, monteCarloCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset world when no file is given")
	cmd.Flags().IntVar(&side, "side", config.DefaultSide, "points per lattice side for presets")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of timesteps")
	cmd.Flags().IntVar(&every, "every", 0, "timesteps between frames (default: world substeps)")
	cmd.Flags().Float64Var(&bound, "bound", config.DefaultBound, "stop once a coordinate exceeds this (0 disables)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "override integrator ("+strings.Join(integrators.Names(), ", ")+")")
	cmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")
	cmd.Flags().IntVar(&workers, "workers", 0, "force evaluation goroutines (0 picks by lattice size)")
}

func newSimulator(w *worldfile.World) *sim.Simulator {
	s := sim.New(w.Params)
	backend := compute.AutoSelectBackend(w.Lattice.N)
	if workers > 0 {
		backend = compute.NewCPUBackendWorkers(workers)
	}
	s.SetBackend(backend)
	if cpu, ok := backend.(*compute.CPUBackend); ok {
		logger.Debug("force backend", "name", backend.Name(), "workers", cpu.Workers())
	} else {
		logger.Debug("force backend", "name", backend.Name())
	}
	return s
}

// runConfig merges the config file, command line flags and world argument.
// Flags only override the file when set explicitly.
func runConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debug("loaded config", "path", configFile)
	}

	flags := cmd.Flags()
	if configFile == "" || flags.Changed("preset") {
		cfg.Preset = preset
	}
	if configFile == "" || flags.Changed("side") {
		cfg.Side = side
	}
	if configFile == "" || flags.Changed("steps") {
		cfg.Steps = steps
	}
	if configFile == "" || flags.Changed("every") {
		cfg.Every = every
	}
	if configFile == "" || flags.Changed("bound") {
		cfg.Bound = bound
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Physics.Dt = &dt
	}
	if configFile == "" || cmd.Root().PersistentFlags().Changed("data") {
		cfg.DataDir = dataDir
	}
	if len(args) > 0 {
		cfg.World = args[0]
	}

	return cfg, cfg.Validate()
}

func loadWorld(cfg *config.Config) (string, *worldfile.World, error) {
	name, w, err := cfg.LoadWorld()
	if err != nil {
		return "", nil, err
	}
	logger.Debug("loaded world",
		"name", name,
		"n", w.Lattice.N,
		"integrator", w.Params.Integrator,
		"dt", w.Params.Dt,
		"field", w.Params.Resolution,
	)
	return name, w, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	name, w, err := loadWorld(cfg)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	initial := &worldfile.World{Params: w.Params, Lattice: w.Lattice.Clone()}
	s := newSimulator(w)
	for _, m := range metrics.Default(w.Params) {
		s.AddMetric(m)
	}

	fmt.Printf("running %s (%d³, %v)...\n", name, w.Lattice.N, w.Params.Integrator)
	logger.Info("run start", "world", name, "steps", cfg.Steps)
	start := time.Now()

	result, err := s.Run(ctx, w.Lattice, cfg.SimConfig())
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted", "err", err, "steps", result.StepsTaken)
	}
	for _, e := range result.Errors {
		logger.Warn("run stopped", "err", e)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.Run{
		World:   name,
		Config:  cfg.SimConfig(),
		Initial: initial,
		Final:   w.Lattice,
		Result:  result,
	})
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "elapsed", elapsed)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d/%d\n", result.StepsTaken, cfg.Steps)
	if result.Stopped() {
		fmt.Printf("stopped: %v\n", result.Errors[0])
	}
	fmt.Println("\nmetrics:")
	for _, col := range result.Columns {
		fmt.Printf("  %s: %.6g\n", col, result.Metrics[col])
	}

	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	name, w, err := loadWorld(cfg)
	if err != nil {
		return err
	}

	monitor := viz.NewMonitor(name, newSimulator(w), w.Lattice, cfg.SimConfig(), metrics.Default(w.Params))
	p := tea.NewProgram(monitor, tea.WithAltScreen())
	out, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := out.(viz.Monitor); ok && m.Err() != nil {
		logger.Warn("run stopped", "err", m.Err())
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	name, w, err := loadWorld(cfg)
	if err != nil {
		return err
	}

	kinds := []dynamo.IntegratorKind{dynamo.Euler, dynamo.RK4}
	members := make([]*dynamo.Params, len(kinds))
	for i, kind := range kinds {
		members[i] = w.Params.Clone()
		members[i].Integrator = kind
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := sim.NewEnsemble(metrics.Default, members...)
	results, err := e.Run(ctx, w.Lattice, cfg.SimConfig())
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators on %s (%d steps, dt=%g)\n\n", name, cfg.Steps, w.Params.Dt)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "METRIC")
	for _, kind := range kinds {
		fmt.Fprintf(tw, "\t%v", kind)
	}
	fmt.Fprintln(tw)

	fmt.Fprint(tw, "steps")
	for _, r := range results {
		fmt.Fprintf(tw, "\t%d", r.StepsTaken)
	}
	fmt.Fprintln(tw)

	for _, col := range results[0].Columns {
		fmt.Fprint(tw, col)
		for _, r := range results {
			fmt.Fprintf(tw, "\t%.6g", r.Metrics[col])
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, r := range results {
		if r.Stopped() {
			fmt.Printf("\n%v stopped: %v\n", kinds[i], r.Errors[0])
		}
	}
	return nil
}

func generateWorld(cmd *cobra.Command, args []string) error {
	w, err := config.BuildPreset(args[0], side)
	if err != nil {
		return err
	}
	if err := worldfile.Save(args[1], w); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d³ points)\n", args[1], side)
	return nil
}

func worldInfo(cmd *cobra.Command, args []string) error {
	w, err := worldfile.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Summary(filepath.Base(args[0]), w))
	return nil
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
	fmt.Fprintln(w, "ID\tWORLD\tTIME\tN\tSTEPS\tDT\tINTEG\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.StopReason != "" {
			status = "stopped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%g\t%s\t%s\n",
			run.ID,
			run.World,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.N,
			run.StepsTaken,
			run.Steps,
			run.Dt,
			run.Integrator,
			status,
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

	columns, frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("world: %s\n", meta.World)
	fmt.Printf("samples: %d\n\n", len(frames))

	for col, name := range columns {
		data := make([]float64, len(frames))
		for i, fr := range frames {
			if col < len(fr.Values) {
				data[i] = fr.Values[col]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()

		if svgDir != "" {
			path := filepath.Join(svgDir, fmt.Sprintf("%s_%s.svg", runID, name))
			svg := export.SeriesToSVG(frames, col, 800, 300, "#00ff88")
			if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
				return err
			}
			logger.Info("wrote svg", "path", path)
		}
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func runWorld(cmd *cobra.Command, args []string) error {
	w, err := storage.New(dataDir).LoadWorld(args[0], final)
	if err != nil {
		return err
	}
	if outFile == "" {
		return worldfile.Write(os.Stdout, w)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.LatticeToSVG(f, w.Lattice, 600, "#00ccff")
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	columns, frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	col := slices.Index(columns, metricName)
	if col < 0 {
		return fmt.Errorf("unknown metric %q (available: %v)", metricName, columns)
	}
	if len(frames) < 4 {
		return fmt.Errorf("not enough frames for analysis: %d", len(frames))
	}

	// frames are evenly spaced except possibly the last one
	data := make([]float64, 0, len(frames))
	for _, fr := range frames[:len(frames)-1] {
		data = append(data, fr.Values[col])
	}
	interval := frames[1].Time - frames[0].Time

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("world: %s\n\n", meta.World)

	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+metricName+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, _ := analysis.DominantFrequency(data, interval)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f s\n", 1.0/freq)
	}

	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	name, w, err := loadWorld(cfg)
	if err != nil {
		return err
	}

	lambda := analysis.LyapunovExponent(w.Params, w.Lattice, lyapPerturb, cfg.Steps)
	fmt.Printf("%s: largest lyapunov exponent %.4f (over %d steps)\n", name, lambda, cfg.Steps)
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	name, w, err := loadWorld(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ps := automation.ParameterSweep{Param: sweepParam, Min: sweepMin, Max: sweepMax, Count: sweepCount}
	results, err := automation.RunSweep(ctx, w.Params, w.Lattice, cfg.SimConfig(), ps)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s on %s (%d steps)\n\n", sweepParam, name, cfg.Steps)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VALUE\tSTEPS\tSTABLE\tMIN E\tMAX E\tDRIFT\tEXTENT")
	for _, r := range results {
		fmt.Fprintf(tw, "%g\t%d\t%v\t%.6g\t%.6g\t%.4g\t%.4g\n",
			r.Value, r.StepsTaken, r.Stable, r.MinEnergy, r.MaxEnergy, r.EnergyDrift, r.Extent)
	}
	return tw.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd, args)
	if err != nil {
		return err
	}
	name, w, err := loadWorld(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := automation.MonteCarloConfig{Perturbation: mcPerturb, Trials: trials, Seed: seed}
	results, err := automation.RunMonteCarlo(ctx, w.Params, w.Lattice, cfg.SimConfig(), mc)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, %d stable, %d unstable\n", name, len(results), stable, unstable)
	for _, r := range results {
		if !r.Stable {
			fmt.Printf("  trial %d stopped after %d steps\n", r.Trial, r.StepsTaken)
		}
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d runs\n", scenario.Name, len(scenario.Runs))
	runs, err := automation.RunScenario(ctx, scenario)
	for _, run := range runs {
		runID, saveErr := st.Save(run)
		if saveErr != nil {
			return saveErr
		}
		status := "ok"
		if run.Result.Stopped() {
			status = "stopped"
		}
		fmt.Printf("  %s: %d steps, %s\n", runID, run.Result.StepsTaken, status)
	}
	return err
}
