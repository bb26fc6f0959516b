package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/ccdsim/internal/analysis"
	"github.com/san-kum/ccdsim/internal/config"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/engine"
	"github.com/san-kum/ccdsim/internal/export"
	"github.com/san-kum/ccdsim/internal/metrics"
	"github.com/san-kum/ccdsim/internal/optim"
	"github.com/san-kum/ccdsim/internal/sim"
	"github.com/san-kum/ccdsim/internal/storage"
	"github.com/san-kum/ccdsim/internal/tree"
	"github.com/san-kum/ccdsim/internal/viz"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"golang.org/x/exp/constraints"
)

var (
	dataDir     string
	logLevel    string
	logIndent   bool
	metricsAddr string

	configFile string
	dims       int
	precision  string
	timestep   float64
	frames     int
	anchor     bool
	backend    string
	workers    int
	seed       int64
	count      int
	maxEvents  int
	skipFrames bool
	runs       int

	theme         string
	outFile       string
	phaseParticle int
	phaseAxis     int
	sweepParams   []string
	sweepMetric   string
)

var sweepSetters = map[string]func(c *config.Config, v float64){
	"dt":     func(c *config.Config, v float64) { c.Timestep = v },
	"count":  func(c *config.Config, v float64) { c.Generator.Count = int(v) },
	"speed":  func(c *config.Config, v float64) { c.Generator.Speed = v },
	"radius": func(c *config.Config, v float64) { c.Generator.Radius = v },
	"box":    func(c *config.Config, v float64) { c.Generator.Box = v },
}

// main registers the ccdsim commands and runs the live view when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ccdsim",
		Short:         "continuous collision simulator for swept spheres",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogs()
			serveMetrics()
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ccdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logs.InfoLevel.String(), "log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().BoolVar(&logIndent, "log-indent", false, "indent logs")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and archive it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&skipFrames, "skip-frames", false, "keep only the first and last frame")
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent runs with consecutive seeds")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "animate a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and contacts of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "contact rate spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&phaseParticle, "particle", 0, "particle index")
	phaseCmd.Flags().IntVar(&phaseAxis, "axis", 0, "axis index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "draw particle trajectories of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search scenario parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweep,
	}
	scenarioFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (dt, count, speed, radius, box)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimise")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time tree builds and steps over growing gases",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&dims, "dims", config.DefaultDims, "dimensions")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "cpu workers (0 = all cores)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportJSONCmd, exportCSVCmd, svgCmd, presetsCmd, sweepCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		logs.Fatal(err)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().IntVar(&dims, "dims", config.DefaultDims, "dimensions")
	cmd.Flags().StringVar(&precision, "precision", config.DefaultPrecision, "float32 or float64")
	cmd.Flags().Float64Var(&timestep, "dt", config.DefaultTimestep, "timestep")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "number of steps")
	cmd.Flags().BoolVar(&anchor, "anchor", false, "make particle 0 an immovable anchor")
	cmd.Flags().StringVar(&backend, "backend", "auto", "compute backend (auto, serial, cpu)")
	cmd.Flags().IntVar(&workers, "workers", 0, "cpu workers (0 = all cores)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "generator seed")
	cmd.Flags().IntVar(&count, "count", config.DefaultCount, "generated particle count")
	cmd.Flags().IntVar(&maxEvents, "max-events", dynamo.DefaultOptions().MaxEvents, "contact limit per step")
}

func setupLogs() {
	logs.SetLevel(logs.ParseLevel(logLevel))
	logs.Encoder = json.Marshal
	if logIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal
}

func serveMetrics() {
	if metricsAddr == "" {
		return
	}

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())

	go func() {
		logs.WithTag("addr", metricsAddr).Info("serving metrics")
		if err := http.ListenAndServe(metricsAddr, &admin); err != nil {
			logs.Warn(errors.New("metrics server stopped").Wrap(err))
		}
	}()
}

// loadScenario resolves the preset, then the config file, then any flag
// the user set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, errors.New("unknown preset").
				WithTag("preset", args[0]).
				WithTag("available", config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, errors.New("loading config failed").WithTag("path", configFile).Wrap(err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dims") {
		cfg.Dims = dims
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("dt") {
		cfg.Timestep = timestep
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("anchor") {
		cfg.Anchor = anchor
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("count") {
		cfg.Generator.Count = count
	}
	if flags.Changed("max-events") {
		cfg.MaxEvents = maxEvents
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type outcome struct {
	seed       int64
	particles  int
	steps      int
	iterations int
	maxDepth   int
	run        storage.Run
}

func simulate[F constraints.Float](ctx context.Context, cfg *config.Config, n int) ([]outcome, string, error) {
	be, err := cfg.ComputeBackend()
	if err != nil {
		return nil, "", err
	}

	systems := make([][]dynamo.Particle[F], n)
	for i := range systems {
		c := cfg.Clone()
		c.Seed += int64(i)
		if systems[i], err = config.BuildParticles[F](c); err != nil {
			return nil, "", err
		}
	}

	factory := func() *sim.Simulator[F] {
		s := sim.New(engine.New[F](cfg.Options(), be))
		s.AddMetric(metrics.NewKineticEnergy[F]())
		s.AddMetric(metrics.NewEnergyDrift[F]())
		s.AddMetric(metrics.NewMomentumDrift[F]())
		s.AddMetric(metrics.NewCollisionCount[F]())
		return s
	}

	results, err := sim.NewEnsemble(factory, 0).Run(ctx, systems, sim.Config[F]{
		Timestep:   F(cfg.Timestep),
		Frames:     cfg.Frames,
		Active:     cfg.ActiveIndices(),
		SkipFrames: skipFrames,
	})
	if err != nil {
		return nil, "", err
	}

	outs := make([]outcome, len(results))
	for i, res := range results {
		outs[i] = outcome{
			seed:       cfg.Seed + int64(i),
			particles:  len(systems[i]),
			steps:      res.Steps,
			iterations: res.Iterations,
			maxDepth:   res.MaxDepth,
			run: storage.Run{
				Frames:  res.Frames,
				Events:  res.Events,
				Metrics: res.Metrics,
			},
		}
	}
	return outs, be.Name(), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if runs < 1 {
		return errors.New("runs must be positive").WithTag("runs", runs)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logs.WithTag("scenario", cfg.Name).
		WithTag("dims", cfg.Dims).
		WithTag("precision", cfg.Precision).
		WithTag("runs", runs).
		Info("running simulation")

	start := time.Now()

	var (
		outs   []outcome
		beName string
	)
	switch cfg.Precision {
	case "float32":
		outs, beName, err = simulate[float32](ctx, cfg, runs)
	default:
		outs, beName, err = simulate[float64](ctx, cfg, runs)
	}
	if err != nil {
		return errors.New("simulation failed").WithTag("scenario", cfg.Name).Wrap(err)
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)

	for _, out := range outs {
		runID, err := st.Save(storage.RunMetadata{
			Name:       cfg.Name,
			Seed:       out.seed,
			Dims:       cfg.Dims,
			Precision:  cfg.Precision,
			Timestep:   cfg.Timestep,
			Frames:     cfg.Frames,
			Particles:  out.particles,
			Anchor:     cfg.Anchor,
			Backend:    beName,
			Steps:      out.steps,
			Iterations: out.iterations,
		}, out.run)
		if err != nil {
			return errors.New("saving run failed").Wrap(err)
		}

		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("particles: %d  steps: %d  iterations: %d  contacts: %d  depth: %d\n",
			out.particles, out.steps, out.iterations, len(out.run.Events), out.maxDepth)

		names := make([]string, 0, len(out.run.Metrics))
		for name := range out.run.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("metrics:")
		for _, name := range names {
			fmt.Printf("  %s: %.6g\n", name, out.run.Metrics[name])
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		items := make([]viz.PickerItem, 0, len(config.Presets))
		for _, name := range config.ListPresets() {
			p := config.Presets[name]
			items = append(items, viz.PickerItem{Name: name, Description: describe(p)})
		}
		name, ok, err := viz.RunPicker("CCDSIM", items)
		if err != nil || !ok {
			return err
		}
		args = []string{name}
	}

	if theme != "" && !viz.SetTheme(theme) {
		return errors.New("unknown theme").WithTag("theme", theme).WithTag("available", viz.ThemeNames())
	}

	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	switch cfg.Precision {
	case "float32":
		return live[float32](cfg)
	default:
		return live[float64](cfg)
	}
}

func live[F constraints.Float](cfg *config.Config) error {
	be, err := cfg.ComputeBackend()
	if err != nil {
		return err
	}
	particles, err := config.BuildParticles[F](cfg)
	if err != nil {
		return err
	}

	stepper := engine.New[F](cfg.Options(), be)
	return viz.RunLive(viz.NewLiveModel(cfg.Name, stepper, particles, cfg.ActiveIndices(), F(cfg.Timestep), cfg.Frames))
}

func describe(c *config.Config) string {
	kind := "explicit"
	n := len(c.Particles)
	if n == 0 {
		kind, n = c.Generator.Kind, c.Generator.Count
	}
	d := fmt.Sprintf("%dD %s, %d particles", c.Dims, kind, n)
	if c.Anchor {
		d += ", anchored"
	}
	return d
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION\tPRECISION\tDT\tFRAMES")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\n", name, describe(p), p.Precision, p.Timestep, p.Frames)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tTIME\tDIMS\tPARTICLES\tSTEPS\tCONTACTS\tPRECISION\tBACKEND")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dims,
			run.Particles,
			run.Steps,
			run.Events,
			run.Precision,
			run.Backend,
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

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return errors.New("not enough frames to plot").WithTag("run", runID)
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Particles)
	fmt.Printf("frames: %d\n\n", len(frames))

	energy := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
	}
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))
	fmt.Println()

	fmt.Println(asciigraph.Plot(analysis.ContactRate(frames, events),
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("contacts per frame"),
	))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	rate := analysis.ContactRate(frames, events)
	if len(rate) < 4 {
		return errors.New("not enough frames to analyze").WithTag("run", runID)
	}

	fmt.Printf("contact analysis: %s\n", meta.ID)
	fmt.Printf("contacts: %d over %d frames\n\n", len(events), len(rate)-1)

	ps := analysis.PowerSpectrum(rate[1:])
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("contact rate spectrum"),
	))
	fmt.Println()

	freq, ok := analysis.DominantFrequency(rate[1:], meta.Timestep)
	if !ok {
		fmt.Println("no periodic contact pattern")
		return nil
	}
	fmt.Printf("dominant frequency: %.4g per unit time\n", freq)
	fmt.Printf("period: %.4g\n", 1/freq)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	frames, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}

	portrait, err := analysis.Phase(frames, phaseParticle, phaseAxis)
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s\n", args[0])
	fmt.Printf("particle %d, axis %d (position across, velocity up)\n\n", phaseParticle, phaseAxis)
	fmt.Print(portrait.ASCII(80, 24))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(data))
	return err
}

func exportSVG(cmd *cobra.Command, args []string) error {
	frames, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.TrajectoriesToSVG(os.Stdout, frames, 800, 800)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := export.TrajectoriesToSVG(f, frames, 800, 800); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logs.WithTag("run", args[0]).WithTag("path", outFile).Info("trajectories written")
	return nil
}

func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))

	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, errors.New("malformed parameter, want name=v1,v2").WithTag("param", spec)
		}
		if _, known := sweepSetters[name]; !known {
			return nil, nil, errors.New("unknown sweep parameter").WithTag("param", name)
		}

		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, errors.New("bad sweep value").WithTag("param", name).Wrap(err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func sweep(cmd *cobra.Command, args []string) error {
	base, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}
	skipFrames = true

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eval := func(ctx context.Context, params map[string]float64) (map[string]float64, error) {
		cfg := base.Clone()
		for name, v := range params {
			sweepSetters[name](cfg, v)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		var (
			outs []outcome
			err  error
		)
		switch cfg.Precision {
		case "float32":
			outs, _, err = simulate[float32](ctx, cfg, 1)
		default:
			outs, _, err = simulate[float64](ctx, cfg, 1)
		}
		if err != nil {
			return nil, err
		}

		m := make(map[string]float64, len(outs[0].run.Metrics)+1)
		for k, v := range outs[0].run.Metrics {
			m[k] = v
		}
		m["iterations"] = float64(outs[0].iterations)
		return m, nil
	}

	samples, best, err := optim.NewGridSearch(names, ranges).Search(ctx, eval, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := append(append([]string{}, names...), "COLLISIONS", "ITERATIONS", "ENERGY_DRIFT", "MOMENTUM_DRIFT", strings.ToUpper(sweepMetric))
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, smp := range samples {
		row := make([]string, 0, len(header)+1)
		for _, name := range names {
			row = append(row, strconv.FormatFloat(smp.Params[name], 'g', -1, 64))
		}
		if smp.Err != nil {
			row = append(row, "error: "+smp.Err.Error())
		} else {
			row = append(row,
				fmt.Sprintf("%.0f", smp.Metrics["collisions"]),
				fmt.Sprintf("%.0f", smp.Metrics["iterations"]),
				fmt.Sprintf("%.3g", smp.Metrics["energy_drift"]),
				fmt.Sprintf("%.3g", smp.Metrics["momentum_drift"]),
				fmt.Sprintf("%.6g", smp.Metrics[sweepMetric]))
		}
		if i == best {
			row = append(row, "*")
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func bench(cmd *cobra.Command, args []string) error {
	sizes := []int{256, 1024, 4096}
	backends := []string{"serial", "cpu"}
	const steps = 20

	fmt.Printf("benchmarking %dD gas, %d steps per run\n\n", dims, steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tBACKEND\tBUILD\tSTEP\tSTEPS/SEC\tCONTACTS")

	for _, n := range sizes {
		for _, name := range backends {
			cfg := config.DefaultConfig()
			cfg.Dims = dims
			cfg.Backend = name
			cfg.Workers = workers
			cfg.Generator.Count = n
			cfg.Generator.Box = config.DefaultBox * math.Pow(float64(n)/config.DefaultCount, 1/float64(dims))

			particles, err := config.BuildParticles[float64](cfg)
			if err != nil {
				return err
			}
			be, err := cfg.ComputeBackend()
			if err != nil {
				return err
			}

			active := dynamo.AllIndices(n)
			start := time.Now()
			if _, err := tree.Build(particles, active, cfg.Timestep, cfg.Options()); err != nil {
				return err
			}
			build := time.Since(start)

			stepper := engine.New[float64](cfg.Options(), be)
			contacts := 0
			start = time.Now()
			for i := 0; i < steps; i++ {
				stats, err := stepper.Step(particles, active, cfg.Timestep)
				if err != nil {
					return err
				}
				contacts += stats.Events
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%.0f\t%d\n",
				n, be.Name(), build, elapsed/steps, steps/elapsed.Seconds(), contacts)
		}
	}

	return w.Flush()
}
