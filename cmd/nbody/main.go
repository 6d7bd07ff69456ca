package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ryneqq/nbody/internal/config"
	"github.com/Ryneqq/nbody/internal/metrics"
	"github.com/Ryneqq/nbody/internal/sim"
	"github.com/Ryneqq/nbody/internal/storage"
	"github.com/Ryneqq/nbody/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile string
	bodies     int
	seed       int64
	ticks      int
	dims       int
	workers    int
	g          float64
	dt         float64
	statsEvery int

	noSave      bool
	runs        int
	snapshotOut string
	exportOut   string
	configOut   string
	width       int
	height      int
	dotSize     float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nbody",
		Short: "gravitational n-body simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbody", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and store its statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&statsEvery, "stats-every", config.DefaultStatsEvery, "record statistics every n ticks")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a scene evolve in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset]",
		Short: "render a scene after n ticks to svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSnapshot,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "scene.svg", "output file")
	snapshotCmd.Flags().IntVar(&width, "width", 80, "canvas width in cells")
	snapshotCmd.Flags().IntVar(&height, "height", 40, "canvas height in cells")
	snapshotCmd.Flags().Float64Var(&dotSize, "scale", 4, "svg pixels per braille dot")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "run an ensemble of seeds in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and statistics as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "print the resolved configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printConfig,
	}
	addSceneFlags(configCmd)
	configCmd.Flags().StringVarP(&configOut, "out", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(runCmd, liveCmd, snapshotCmd, benchCmd, listCmd, plotCmd, exportCmd, presetsCmd, configCmd)
	return rootCmd
}

func setupLogger() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "nbody",
		ReportTimestamp: true,
	})
	return nil
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&bodies, "bodies", config.DefaultBodies, "number of random bodies")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().IntVar(&dims, "dims", 3, "dimensions (2 or 3)")
	cmd.Flags().IntVar(&workers, "workers", 0, "force-phase workers (0 = all cores)")
	cmd.Flags().Float64Var(&g, "g", 0, "gravitational constant")
	cmd.Flags().Float64Var(&dt, "dt", 0, "tick time delta")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	name := config.DefaultPreset
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return "", nil, fmt.Errorf("unknown preset %q (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return "", nil, err
		}
		cfg = loaded
		logger.Debug("loaded config", "path", configFile)
	}

	flags := cmd.Flags()
	if flags.Changed("bodies") {
		cfg.Bodies = bodies
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("dims") {
		cfg.Dimensions = dims
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("g") {
		cfg.G = g
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("stats-every") {
		cfg.StatsEvery = statsEvery
	}

	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return name, cfg, nil
}

func newSimulator(cfg *config.Config, seed int64) (*sim.Simulator, error) {
	scene, err := cfg.BuildSceneWithSeed(seed)
	if err != nil {
		return nil, err
	}
	s := sim.New(scene)
	s.SetLogger(logger.With("seed", seed))
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := newSimulator(cfg, cfg.Seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation", "preset", name, "bodies", s.Scene().Len(), "ticks", cfg.Ticks, "seed", cfg.Seed)
	start := time.Now()

	result, err := s.Run(ctx, cfg.SimConfig())
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted", "err", err, "ticks", result.TicksTaken)
	}
	for _, rerr := range result.Errors {
		logger.Error("simulation halted", "err", rerr)
	}

	elapsed := time.Since(start)
	fmt.Printf("completed %d ticks in %v\n", result.TicksTaken, elapsed)
	fmt.Printf("bodies: %d -> %d\n", result.Stats[0].Bodies, len(result.Final))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)
	return nil
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, values[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg.BuildScene, name)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runPicker() error {
	open := func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset %q", name)
		}
		return viz.NewModel(cfg.BuildScene, name)
	}
	return viz.RunPicker(viz.NewPicker(config.ListPresets(), config.Descriptions, open))
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	_, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	scene, err := cfg.BuildScene()
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Ticks; i++ {
		scene.Update()
	}
	logger.Debug("rendering snapshot", "tick", scene.Tick(), "bodies", scene.Len())

	canvas := viz.Snapshot(scene.Bodies(), width, height, nil)
	svg := viz.CanvasToSVG(canvas, dotSize, viz.ThemeCyberpunk.Ink)
	if err := os.WriteFile(snapshotOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (tick %d, %d bodies)\n", snapshotOut, scene.Tick(), scene.Len())
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}

	build := func(seed int64) (*sim.Simulator, error) { return newSimulator(cfg, seed) }
	simCfg := cfg.SimConfig()
	simCfg.StatsEvery = cfg.Ticks

	logger.Info("benchmarking", "preset", name, "runs", runs, "ticks", cfg.Ticks)
	start := time.Now()
	results, err := sim.NewEnsemble(build, runs, cfg.Seed).Run(context.Background(), simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tBODIES\tSURVIVORS\tMERGES\tMASS DRIFT")
	totalTicks := 0
	for _, r := range results {
		totalTicks += r.TicksTaken
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.0f\t%.2e\n",
			r.Seed, r.TicksTaken, r.Stats[0].Bodies, len(r.Final), r.Metrics["merges"], r.Metrics["mass_drift"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d ticks in %v (%.0f ticks/sec)\n", totalTicks, elapsed, float64(totalTicks)/elapsed.Seconds())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	stored, err := st.List()
	if err != nil {
		return err
	}

	if len(stored) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDIMS\tBODIES\tSURVIVORS\tTICKS\tSEED")

	for _, run := range stored {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dimensions,
			run.Bodies,
			run.Survivors,
			run.Ticks,
			run.Seed,
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

	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(stats) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(stats))

	series := []struct {
		caption string
		value   func(sim.Stats) float64
	}{
		{"bodies", func(s sim.Stats) float64 { return float64(s.Bodies) }},
		{"total momentum", func(s sim.Stats) float64 { return s.Momentum }},
		{"kinetic energy", func(s sim.Stats) float64 { return s.KineticEnergy }},
		{"potential energy", func(s sim.Stats) float64 { return s.PotentialEnergy }},
	}

	for _, sr := range series {
		data := make([]float64, len(stats))
		for i, s := range stats {
			data[i] = sr.value(s)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if exportOut == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	return storage.ExportJSON(exportOut, data)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDIMS\tBODIES\tTICKS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		count := cfg.Bodies
		if len(cfg.InitialBodies) > 0 {
			count = len(cfg.InitialBodies)
		} else if !cfg.Generator.Anchor.Disabled {
			count++
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", name, cfg.Dimensions, count, cfg.Ticks, config.Descriptions[name])
	}
	return w.Flush()
}

func printConfig(cmd *cobra.Command, args []string) error {
	_, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if configOut != "" {
		return config.Save(configOut, cfg)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
