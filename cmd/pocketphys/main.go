package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/san-kum/pocketphys/internal/config"
	"github.com/san-kum/pocketphys/internal/export"
	"github.com/san-kum/pocketphys/internal/metrics"
	"github.com/san-kum/pocketphys/internal/server"
	"github.com/san-kum/pocketphys/internal/sim"
	"github.com/san-kum/pocketphys/internal/storage"
	"github.com/san-kum/pocketphys/internal/tui"
	"github.com/san-kum/pocketphys/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dataDir    string
	configFile string
	dt         float64
	duration   float64
	pairing    string
	realtime   bool
	frameRate  int
	plotBody   int
	plotColumn string
	outFile    string
	format     string
	bounds     float64
	watch      bool
	addr       string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:          "pocketphys",
		Short:        "tiny 2D point-mass physics sandbox",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory ($"+config.EnvDataDir+")")

	runCmd := &cobra.Command{
		Use:   "run [scene...]",
		Short: "run scenes headless and save the results",
		Long:  "Each scene is a preset name or a path to a YAML scene file. Several scenes run concurrently.",
		RunE:  runScenes,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().StringVar(&pairing, "pairing", config.DefaultPairing, "collision pairing (all or none)")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "step with wall-clock time and print each frame")
	runCmd.Flags().IntVar(&frameRate, "fps", env.FPS, "frame rate for --realtime")
	runCmd.Flags().Float64Var(&bounds, "bounds", 0, "also record the fraction of frames with every body within this distance of the origin on both axes")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", env.FPS, "frame rate")
	liveCmd.Flags().BoolVar(&watch, "watch", false, "reload the scene file whenever it changes")

	serveCmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "stream a scene to websocket viewers and serve stored runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serveScene,
	}
	serveCmd.Flags().StringVar(&addr, "addr", env.Addr, "listen address ($"+config.EnvAddr+")")
	serveCmd.Flags().IntVar(&frameRate, "fps", env.FPS, "simulation frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one body of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", 0, "body index")
	plotCmd.Flags().StringVar(&plotColumn, "column", "", "column to plot (x, y, vx or vy); default plots position")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	sceneCmd := &cobra.Command{
		Use:   "scene [name]",
		Short: "print a built-in scene as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  dumpScene,
	}
	sceneCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json or svg)")

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, presetsCmd, sceneCmd, exportCmd)
	return rootCmd
}

func isSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// loadScene resolves a preset name or a scene file.
func loadScene(name string) (*config.Scene, error) {
	if isSceneFile(name) {
		return config.Load(name)
	}
	if sc := config.GetPreset(name); sc != nil {
		return sc, nil
	}
	return nil, fmt.Errorf("unknown scene: %s (available: %v)", name, config.ListPresets())
}

// resolveScenes collects the scenes named on the command line and applies
// the flags that were set explicitly.
func resolveScenes(cmd *cobra.Command, args []string) ([]*config.Scene, error) {
	var scenes []*config.Scene
	if configFile != "" {
		sc, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		scenes = append(scenes, sc)
	}
	for _, name := range args {
		sc, err := loadScene(name)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, sc)
	}
	if len(scenes) == 0 {
		scenes = append(scenes, config.GetPreset("demo"))
	}

	for _, sc := range scenes {
		if cmd.Flags().Changed("dt") {
			sc.Dt = dt
		}
		if cmd.Flags().Changed("time") {
			sc.Duration = duration
		}
		if cmd.Flags().Changed("pairing") {
			sc.Pairing = pairing
		}
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("scene %s: %w", sc.Name, err)
		}
	}
	return scenes, nil
}

func newSimulator(sc *config.Scene) (*sim.Simulator, error) {
	world, _, err := sc.Build()
	if err != nil {
		return nil, err
	}
	p, err := sim.ParsePairing(sc.Pairing)
	if err != nil {
		return nil, err
	}
	s := sim.New(world, p)
	for _, m := range metrics.Default(world.Gravity()) {
		s.AddMetric(m)
	}
	if bounds > 0 {
		s.AddMetric(metrics.NewStability(bounds))
	}
	return s, nil
}

func runScenes(cmd *cobra.Command, args []string) error {
	scenes, err := resolveScenes(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if realtime {
		if len(scenes) != 1 {
			return errors.New("--realtime runs exactly one scene")
		}
		return runRealtime(cmd.Context(), out, scenes[0])
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	jobs := make([]sim.Job, len(scenes))
	for i, sc := range scenes {
		s, err := newSimulator(sc)
		if err != nil {
			return fmt.Errorf("scene %s: %w", sc.Name, err)
		}
		jobs[i] = sim.Job{
			Name:   sc.Name,
			Sim:    s,
			Config: sim.Config{Dt: sc.Dt, Duration: sc.Duration, ValidateState: true},
		}
		fmt.Fprintf(out, "running %s (%d bodies, dt=%.4f, %.1fs)...\n", sc.Name, len(sc.Bodies), sc.Dt, sc.Duration)
	}

	start := time.Now()
	results, err := sim.RunBatch(cmd.Context(), jobs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "completed in %v\n", time.Since(start))

	for i, res := range results {
		sc := scenes[i]
		runID, err := st.Save(storage.RunInfo{
			Scene:    sc.Name,
			Dt:       sc.Dt,
			Duration: sc.Duration,
			Pairing:  sc.Pairing,
		}, res)
		if err != nil {
			return err
		}
		printResult(out, runID, res)
	}
	return nil
}

func printResult(out io.Writer, runID string, res *sim.Result) {
	fmt.Fprintf(out, "\nrun id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d\n", res.StepsTaken)
	fmt.Fprintf(out, "collisions: %d\n", res.Collisions)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "error: %v\n", e)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tX\tY\tVX\tVY")
	for i, b := range res.Final().Bodies {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%.4f\n", i, b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y)
	}
	w.Flush()

	fmt.Fprintln(out, "metrics:")
	for _, name := range []string{"energy", "energy_drift", "momentum", "max_height", "collisions", "stability"} {
		if v, ok := res.Metrics[name]; ok {
			fmt.Fprintf(out, "  %s: %.6f\n", name, v)
		}
	}
}

func runRealtime(ctx context.Context, out io.Writer, sc *config.Scene) error {
	s, err := newSimulator(sc)
	if err != nil {
		return err
	}
	if frameRate <= 0 {
		return fmt.Errorf("fps must be positive, got %d", frameRate)
	}

	renderer := viz.NewRenderer(60, 16)
	for i, hex := range sc.Colors() {
		if c, err := viz.ParseHex(hex); err == nil {
			renderer.AddBody(i, c)
		}
	}
	renderer.FitTo(s.World().Snapshot())

	printer := tui.NewPrinter(out, sc.Name, renderer, isTerminal(out))
	s.AddObserver(printer)
	printer.Start()
	defer printer.Stop()

	eng := sim.NewEngine()
	return s.RunRealtime(ctx, eng, time.Second/time.Duration(frameRate), func(s *sim.Simulator) bool {
		return s.Time() < sc.Duration
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runLive(cmd *cobra.Command, args []string) error {
	name := "drop"
	if len(args) > 0 {
		name = args[0]
	}
	sc, err := loadScene(name)
	if err != nil {
		return err
	}
	if !watch {
		return viz.RunLive(sc, frameRate)
	}

	if !isSceneFile(name) {
		return fmt.Errorf("--watch needs a scene file, got preset %s", name)
	}
	w, err := config.NewWatcher(name)
	if err != nil {
		return err
	}
	defer w.Close()

	reloads := make(chan viz.SceneReloadMsg)
	go forwardReloads(cmd.Context(), w, reloads)
	return viz.RunLive(sc, frameRate, viz.WithReloads(reloads))
}

// forwardReloads loads the scene after every change reported by w.
func forwardReloads(ctx context.Context, w *config.Watcher, out chan<- viz.SceneReloadMsg) {
	defer close(out)
	for {
		var msg viz.SceneReloadMsg
		select {
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			msg.Scene, msg.Err = config.Load(path)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			msg.Err = err
		case <-ctx.Done():
			return
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func serveScene(cmd *cobra.Command, args []string) error {
	name := "showcase"
	if len(args) > 0 {
		name = args[0]
	}
	sc, err := loadScene(name)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(sc, st)
	fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s (websocket /ws)\n", sc.Name, addr)
	return srv.Run(cmd.Context(), addr, frameRate)
}

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tBODIES\tCOLLISIONS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Bodies,
			run.Collisions,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out := cmd.OutOrStdout()

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	columns := []string{"x", "y"}
	if plotColumn != "" {
		columns = []string{plotColumn}
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scene: %s\n\n", meta.Scene)

	for _, col := range columns {
		data, _, err := st.Series(runID, plotBody, col)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("no data to plot")
		}
		caption := fmt.Sprintf("body %d %s vs time", plotBody, col)
		fmt.Fprintln(out, viz.PlotSeries([][]float64{data}, caption, 80, 10))
		fmt.Fprintln(out)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDT\tDURATION\tPAIRING")
	for _, name := range config.ListPresets() {
		sc := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.1fs\t%s\n", name, len(sc.Bodies), sc.Dt, sc.Duration, sc.Pairing)
	}
	return w.Flush()
}

func dumpScene(cmd *cobra.Command, args []string) error {
	sc := config.GetPreset(args[0])
	if sc == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if outFile != "" {
		if err := config.Save(outFile, sc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
		return nil
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return err
	}
	return enc.Close()
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var write func(w io.Writer) error
	switch format {
	case "json":
		write = func(w io.Writer) error { return st.ExportJSON(runID, w) }
	case "svg":
		write = func(w io.Writer) error {
			paths, err := st.Trajectories(runID)
			if err != nil {
				return err
			}
			return export.WriteTrajectories(w, paths, nil, 800, 600)
		}
	default:
		return fmt.Errorf("unknown format: %s (want json or svg)", format)
	}

	if outFile == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
	return nil
}
