package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raj-open/herz-sub000/internal/config"
	"github.com/raj-open/herz-sub000/internal/pipeline"
	"github.com/raj-open/herz-sub000/internal/report"
	"github.com/raj-open/herz-sub000/internal/series"
	"github.com/raj-open/herz-sub000/internal/storage"
)

var (
	dataDir    string
	configFile string
	quantity   string
	timeColumn string
	degree     int
	workers    int
	logLevel   string
	logJSON    bool
	// fit
	noSave   bool
	jsonOut  bool
	timeline bool
	// plot
	width  int
	height int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "herz",
		Short:        "cycle-wise polynomial fits of periodic physiological signals",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as json")

	fitCmd := &cobra.Command{
		Use:   "fit [csv]",
		Short: "fit every cycle of a series and recognize special points",
		Args:  cobra.ExactArgs(1),
		RunE:  fitSeries,
	}
	addAnalysisFlags(fitCmd)
	fitCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	fitCmd.Flags().BoolVar(&jsonOut, "json", false, "print results as json")
	fitCmd.Flags().BoolVar(&timeline, "timeline", false, "print the critical-point timeline of every window")

	plotCmd := &cobra.Command{
		Use:   "plot [csv]",
		Short: "plot a series against its cycle-wise fit",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSeries,
	}
	addAnalysisFlags(plotCmd)
	plotCmd.Flags().IntVar(&width, "width", 100, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 15, "plot height")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list special-point presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(config.Presets))
			for name := range config.Presets {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(report.Title.Render(name))
				for _, p := range config.Presets[name] {
					fmt.Printf("  %-6s d%d %v after %v\n", p.Name, p.Derivative, p.Kinds, p.After)
				}
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(fitCmd, plotCmd, listCmd, showCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&quantity, "quantity", config.DefaultQuantity, "value column and preset")
	cmd.Flags().StringVar(&timeColumn, "time-column", config.DefaultTimeColumn, "time column")
	cmd.Flags().IntVar(&degree, "degree", config.DefaultDegree, "polynomial degree")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel windows (0 = all cpus)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override config
	flags := cmd.Flags()
	if flags.Changed("quantity") {
		cfg.Quantity = quantity
		if preset := config.GetPreset(quantity); preset != nil && configFile == "" {
			cfg.Points = preset
		}
	}
	if flags.Changed("time-column") {
		cfg.TimeColumn = timeColumn
	}
	if flags.Changed("degree") {
		cfg.Degree = degree
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = logJSON
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

type analysis struct {
	cfg     *config.Config
	series  *series.Series
	results []*pipeline.WindowResult
}

func analyse(cmd *cobra.Command, path string) (*analysis, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := series.ReadCSV(f, cfg.TimeColumn, cfg.Quantity)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	windows := pipeline.Windows(log, s.T, s.X, pipeline.Windowing{
		PeakWindow:  cfg.PeakWindow,
		MinDistance: cfg.PeakMinDistance,
		Troughs:     cfg.Troughs,
		RemoveGaps:  cfg.RemoveGaps,
		GapSigma:    cfg.GapSigma,
	})

	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	a := pipeline.New(log, pipeline.Options{
		Accuracy:   cfg.Accuracy,
		Degree:     cfg.Degree,
		Conditions: cfg.Conditions(),
		Points:     defs,
		Workers:    cfg.Workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, err := a.Batch(ctx, s.T, s.X, windows)
	if err != nil {
		return nil, err
	}
	if n := pipeline.Failed(results); n > 0 {
		log.WithField("failed", n).Warn("some windows could not be analysed")
	}
	return &analysis{cfg: cfg, series: s, results: results}, nil
}

func fitSeries(cmd *cobra.Command, args []string) error {
	path := args[0]
	an, err := analyse(cmd, path)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := storage.ExportJSON(os.Stdout, path, an.cfg.Quantity, an.results); err != nil {
			return err
		}
	} else {
		fmt.Println(report.Title.Render(fmt.Sprintf("%s: %d windows", filepath.Base(path), len(an.results))))
		fmt.Println(report.Points(an.results))
		if timeline {
			for _, r := range an.results {
				if r.Err != nil {
					continue
				}
				fmt.Println(report.Subtle.Render(fmt.Sprintf("window %d  residual %.4g", r.Index, r.Residual)))
				fmt.Println(report.Timeline(r))
				fmt.Print(report.Kinds(r.Levels))
			}
		}
	}

	if noSave {
		return nil
	}
	st := storage.New(an.cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Source:   path,
		Quantity: an.cfg.Quantity,
		Degree:   an.cfg.Degree,
		Accuracy: an.cfg.Accuracy,
		Samples:  an.series.Len(),
	}, an.results)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved run %s\n", runID)
	return nil
}

func plotSeries(cmd *cobra.Command, args []string) error {
	an, err := analyse(cmd, args[0])
	if err != nil {
		return err
	}
	fitted := report.Fitted(an.series.T, an.results)
	caption := fmt.Sprintf("%s (blue) vs fit (red)", an.series.Name)
	fmt.Println(report.Plot(an.series.X, fitted, width, height, caption))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSOURCE\tQUANTITY\tWINDOWS\tFAILED\tDEGREE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Source,
			run.Quantity,
			len(run.Windows),
			run.Failed,
			run.Degree,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fits, err := st.LoadFits(args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.Title.Render("run " + meta.ID))
	fmt.Printf("source:   %s\n", meta.Source)
	fmt.Printf("quantity: %s\n", meta.Quantity)
	fmt.Printf("samples:  %d\n", meta.Samples)
	fmt.Printf("degree:   %d\n", meta.Degree)
	fmt.Printf("windows:  %d (%d failed)\n\n", len(meta.Windows), meta.Failed)

	period := make(map[int]float64, len(fits))
	for _, f := range fits {
		period[f.Window] = f.Fit.Normalisation.Period
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WINDOW\tSAMPLES\tPERIOD\tPEAK\tRESIDUAL\tPOINTS\tERROR")
	for _, win := range meta.Windows {
		found := 0
		for _, p := range win.Points {
			if p.Found {
				found++
			}
		}
		fmt.Fprintf(w, "%d\t%d-%d\t%.4f\t%.4f\t%.4g\t%d/%d\t%s\n",
			win.Index, win.Start, win.End, period[win.Index], win.Peak, win.Residual,
			found, len(win.Points), win.Error)
	}
	return w.Flush()
}
