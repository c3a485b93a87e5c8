package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/export"
	"github.com/san-kum/physim/internal/metrics"
	"github.com/san-kum/physim/internal/resources"
	"github.com/san-kum/physim/internal/storage"
	"github.com/san-kum/physim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	sentryDSN string

	dt       float64
	duration float64
	seed     int64
	library  string
	count    int
	join     bool
	noSave   bool
	asJSON   bool
	// Scenario file
	configFile string
	// Ensemble size
	numRuns int
	// Object to plot heights for
	plotObject int
	svgPath    string

	logger = slog.Default()
)

// main registers commands and flags, launches the interactive preset picker
// when no subcommand is given and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "physim",
		Short: "rigid body physics scenarios",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if logger, err = newLogger(logLevel); err != nil {
				return err
			}
			return initSentry(sentryDSN)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(logger)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&sentryDSN, "sentry-dsn", os.Getenv("SENTRY_DSN"), "report backend failures to sentry")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run seeded copies of a scenario in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addScenarioFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot active objects and heights of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotObject, "object", 0, "object id to plot the height of (0 = all objects' mean)")

	watchCmd := &cobra.Command{
		Use:   "watch [preset]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchScenario,
	}
	addScenarioFlags(watchCmd)

	boundsCmd := &cobra.Command{
		Use:   "bounds [preset]",
		Short: "print the collision bounds of a scenario's objects",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printBounds,
	}
	addScenarioFlags(boundsCmd)
	boundsCmd.Flags().StringVar(&svgPath, "svg", "", "also write a side view of the bounds to this SVG file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tOBJECT\tCOUNT\tLIBRARY\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", name, p.Object, p.Count, p.Physics.SimulationLibrary, p.Description)
			}
			w.Flush()
		},
	}

	savePresetCmd := &cobra.Command{
		Use:   "save-preset [preset] [path]",
		Short: "write a preset to a scenario file for editing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := config.GetPreset(args[0])
			if s == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			return config.SaveScenario(args[1], s)
		},
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, listCmd, plotCmd, watchCmd, boundsCmd, presetsCmd, savePresetCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx, rootCmd)
	stop()
	flushSentry()
	if err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for jittered placement")
	cmd.Flags().StringVar(&library, "library", "", "simulation library (SWEEP or NONE)")
	cmd.Flags().IntVar(&count, "count", config.DefaultCount, "number of objects")
	cmd.Flags().BoolVar(&join, "join", true, "join collision meshes into one hull")
}

// loadScenario resolves the preset argument or --config file, then applies
// flags the user set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var s *config.Scenario
	switch {
	case configFile != "":
		var err error
		if s, err = config.LoadScenario(configFile); err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
	case len(args) > 0:
		if s = config.GetPreset(args[0]); s == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		s = config.DefaultScenario()
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		s.Dt = dt
	}
	if flags.Changed("time") {
		s.Duration = duration
	}
	if flags.Changed("seed") {
		s.Seed = seed
	}
	if flags.Changed("library") {
		s.Physics.SimulationLibrary = library
	}
	if flags.Changed("count") {
		s.Count = count
	}
	if flags.Changed("join") {
		s.Join = join
	}
	return s, s.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	exp, err := resources.NewExperiment(s, logger)
	if err != nil {
		return err
	}
	if err := exp.Setup(metrics.Default()); err != nil {
		return err
	}
	rec := storage.NewRecorder()
	rec.Record(exp.Manager().Frame())
	exp.Manager().AddObserver(rec)

	if !asJSON {
		fmt.Printf("running %s (%d objects, %s)...\n", s.Name, s.Count, exp.Manager().PhysicsSimulationLibrary())
	}
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		reportFailure(err, s)
		return err
	}
	elapsed := time.Since(start)

	run := storage.Run{
		Scenario: s.Name,
		Library:  exp.Manager().PhysicsSimulationLibrary().String(),
		Seed:     s.Seed,
		Dt:       s.Dt,
		Duration: s.Duration,
	}
	if asJSON {
		return storage.WriteJSON(os.Stdout, run, result)
	}

	fmt.Println(viz.RenderSummary(viz.Summary{Scenario: s.Name, Library: run.Library, Result: result}))
	fmt.Printf("completed in %v\n", elapsed)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(run, result, rec)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", numRuns)
	}
	exp, err := resources.NewExperiment(s, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := exp.Ensemble(numRuns).Run(cmd.Context(), resources.RunConfig(s))
	if err != nil {
		reportFailure(err, s)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tSETTLED\tACTIVE\tKINETIC")
	for i, res := range results {
		settled := "never"
		if res.SettledAt >= 0 {
			settled = fmt.Sprintf("%.2fs", res.SettledAt)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%.4f\n",
			s.Seed+int64(i),
			res.StepsTaken,
			settled,
			res.Active[len(res.Active)-1],
			res.Metrics["kinetic_energy"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d runs completed in %v\n", len(results), time.Since(start))
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tLIBRARY\tTIME\tDURATION\tDT\tOBJECTS\tSETTLED")

	for _, run := range runs {
		settled := "never"
		if run.SettledAt >= 0 {
			settled = fmt.Sprintf("%.2fs", run.SettledAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Scenario,
			run.Library,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Objects,
			settled,
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
	series, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n\n", meta.Scenario, meta.Library)

	active := make([]float64, len(series.Active))
	for i, a := range series.Active {
		active[i] = float64(a)
	}
	fmt.Println(asciigraph.Plot(active,
		asciigraph.Height(8),
		asciigraph.Width(70),
		asciigraph.Caption("active objects"),
	))
	fmt.Println()

	heights, caption, err := heightSeries(series, plotObject)
	if err != nil {
		return err
	}
	fmt.Println(asciigraph.Plot(heights,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(caption),
	))
	return nil
}

// heightSeries returns the y column of one object, or the mean height of
// every object when id is zero.
func heightSeries(series *storage.Series, id int) ([]float64, string, error) {
	if id != 0 {
		col := fmt.Sprintf("o%d_y", id)
		ys, ok := series.Column(col)
		if !ok {
			return nil, "", fmt.Errorf("run has no object %d", id)
		}
		return ys, fmt.Sprintf("object %d height", id), nil
	}

	mean := make([]float64, len(series.Values))
	n := 0
	for _, col := range series.Columns {
		if len(col) < 2 || col[len(col)-2:] != "_y" {
			continue
		}
		ys, _ := series.Column(col)
		for i, y := range ys {
			mean[i] += y
		}
		n++
	}
	if n == 0 {
		return nil, "", fmt.Errorf("run has no objects")
	}
	for i := range mean {
		mean[i] /= float64(n)
	}
	return mean, "mean object height", nil
}

func watchScenario(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	exp, err := resources.NewExperiment(s, logger)
	if err != nil {
		return err
	}
	if err := exp.Setup(nil); err != nil {
		return err
	}
	return viz.Watch(s.Name, exp.Manager(), s.Dt, s.Duration)
}

func printBounds(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	exp, err := resources.NewExperiment(s, logger)
	if err != nil {
		return err
	}
	if err := exp.Setup(nil); err != nil {
		return err
	}
	m := exp.Manager()

	ids := m.ObjectIDs()
	boxes := make([]cube.BBox, 0, len(ids))
	for _, id := range ids {
		bb, err := m.CollisionShapeBounds(id)
		if err != nil {
			return err
		}
		boxes = append(boxes, bb)
	}
	fmt.Print(viz.RenderBounds(ids, boxes))
	if svgPath != "" {
		svg := export.SideViewSVG(boxes, 800, 600, string(viz.CurrentTheme.Wire))
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("side view written to %s\n", svgPath)
	}

	scene := m.SceneBounds()
	fmt.Printf("\nscene: min %v max %v\n", scene.Min(), scene.Max())
	if m.PhysicsSimulationLibrary() == backend.LibraryNone {
		fmt.Println("library NONE: no dynamics, contact tests always false")
	}
	return nil
}
