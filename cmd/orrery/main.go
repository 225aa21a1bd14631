package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/ephemeris"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/gui"
	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/position"
	"github.com/san-kum/orrery/internal/tui"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	configFile string
	logLevel   string
	logFile    string
	preset     string

	atFlag      string
	posFormat   string
	orbitFormat string
	outPath     string
	samples     int
	days        float64
	step        float64
	force       bool
)

const maxDistanceSamples = 100000

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// main registers the orrery commands and runs the terminal viewer when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "orrery",
		Short:         "live planetary positions around the sun",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (- for stderr)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "apply a named preset over the config")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal viewer",
		RunE:  runTUI,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "window viewer",
		RunE:  runGUI,
	}

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "heliocentric positions of the configured planets",
		RunE:  runPositions,
	}
	positionsCmd.Flags().StringVar(&atFlag, "at", "", "time (RFC3339 or YYYY-MM-DD), default now")
	positionsCmd.Flags().StringVar(&posFormat, "format", "table", "table, csv or json")
	positionsCmd.Flags().StringVar(&outPath, "out", "", "output file, default stdout")

	orbitCmd := &cobra.Command{
		Use:   "orbit [body|all]",
		Short: "sample one orbital period",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrbit,
	}
	orbitCmd.Flags().StringVar(&atFlag, "at", "", "anchor time (RFC3339 or YYYY-MM-DD), default now")
	orbitCmd.Flags().IntVar(&samples, "samples", config.DefaultOrbitSamples, "samples per orbit")
	orbitCmd.Flags().StringVar(&orbitFormat, "format", "csv", "csv, json or svg")
	orbitCmd.Flags().StringVar(&outPath, "out", "", "output file, default stdout")

	distanceCmd := &cobra.Command{
		Use:   "distance [body]",
		Short: "plot distance from the sun over time",
		Args:  cobra.ExactArgs(1),
		RunE:  runDistance,
	}
	distanceCmd.Flags().StringVar(&atFlag, "at", "", "start time (RFC3339 or YYYY-MM-DD), default now")
	distanceCmd.Flags().Float64Var(&days, "days", 365, "days to cover")
	distanceCmd.Flags().Float64Var(&step, "step", 1, "days between samples")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config (with --preset applied) to path",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigInit,
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(tuiCmd, guiCmd, positionsCmd, orbitCmd, distanceCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the config, applies the preset and flag overrides, and builds
// the logger. defaultLog is used when --log-file is not given.
func setup(cmd *cobra.Command, defaultLog string) (*config.Config, zerolog.Logger, func() error, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	if preset != "" && !cfg.Apply(preset) {
		return nil, zerolog.Nop(), nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	dest := logFile
	if !cmd.Flags().Changed("log-file") {
		dest = defaultLog
	}
	w, closeLog, err := logging.Open(dest)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log := logging.New(cfg.LogLevel, w)
	cfg.Normalize(log)
	log = log.Level(cfg.Level())
	return cfg, log, closeLog, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer closeLog()
	return tui.Run(cfg, log)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd, "")
	if err != nil {
		return err
	}
	defer closeLog()
	return gui.Run(cfg, log)
}

func runPositions(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd, "-")
	if err != nil {
		return err
	}
	defer closeLog()

	at, err := parseTime(atFlag)
	if err != nil {
		return err
	}
	provider := position.NewProvider(ephemeris.NewKepler(), log)
	rows := export.Positions(provider, at, cfg.Bodies(log))

	switch posFormat {
	case "table":
		return export.ToFile(outPath, func(w io.Writer) error { return writeTable(w, rows) })
	case "csv":
		return export.ToFile(outPath, func(w io.Writer) error { return export.WriteCSV(w, rows) })
	case "json":
		return export.ToFile(outPath, func(w io.Writer) error { return export.WriteJSON(w, rows) })
	}
	return fmt.Errorf("unknown format: %s (table, csv or json)", posFormat)
}

func writeTable(w io.Writer, rows []export.Sample) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tX (AU)\tY (AU)\tZ (AU)\tDISTANCE (AU)")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", r.Body, r.X, r.Y, r.Z, r.Distance)
	}
	return tw.Flush()
}

func runOrbit(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd, "-")
	if err != nil {
		return err
	}
	defer closeLog()

	ids, err := resolveBodies(args[0], cfg, log)
	if err != nil {
		return err
	}
	anchor, err := parseTime(atFlag)
	if err != nil {
		return err
	}

	provider := position.NewProvider(ephemeris.NewKepler(), log)
	sampler := orbit.NewSampler(provider, position.AUScale)
	paths := make([]orbit.Path, len(ids))
	for i, id := range ids {
		paths[i] = sampler.Sample(id, anchor, samples)
		log.Debug().Str("body", id.String()).Float64("closure", paths[i].Closure()).Msg("orbit sampled")
	}

	var rows []export.Sample
	for _, p := range paths {
		rows = append(rows, export.PathSamples(p, position.AUScale)...)
	}

	switch orbitFormat {
	case "csv":
		return export.ToFile(outPath, func(w io.Writer) error { return export.WriteCSV(w, rows) })
	case "json":
		return export.ToFile(outPath, func(w io.Writer) error { return export.WriteJSON(w, rows) })
	case "svg":
		return export.ToFile(outPath, func(w io.Writer) error {
			_, err := io.WriteString(w, export.OrbitsToSVG(paths, 800, 800))
			return err
		})
	}
	return fmt.Errorf("unknown format: %s (csv, json or svg)", orbitFormat)
}

func runDistance(cmd *cobra.Command, args []string) error {
	_, log, closeLog, err := setup(cmd, "-")
	if err != nil {
		return err
	}
	defer closeLog()

	id, ok := catalog.Parse(args[0])
	if !ok {
		return fmt.Errorf("unknown body: %s", args[0])
	}
	start, err := parseTime(atFlag)
	if err != nil {
		return err
	}

	provider := position.NewProvider(ephemeris.NewKepler(), log)
	data, err := distanceSeries(provider, id, start, days, step)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	graph := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s distance from the sun (AU), %g days from %s", id, days, start.Format("2006-01-02"))),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "min %.4f AU  mean %.4f AU  max %.4f AU\n", floats.Min(data), stat.Mean(data, nil), floats.Max(data))
	return nil
}

func distanceSeries(p *position.Provider, id catalog.ID, start time.Time, days, step float64) ([]float64, error) {
	if !(days > 0) || !(step > 0) || math.IsInf(days, 0) {
		return nil, fmt.Errorf("--days and --step must be positive")
	}
	if days/step >= maxDistanceSamples {
		return nil, fmt.Errorf("%g days at %g day steps is more than %d samples", days, step, maxDistanceSamples)
	}
	n := int(days/step) + 1
	data := make([]float64, n)
	for i := range data {
		at := start.Add(time.Duration(float64(i) * step * 24 * float64(time.Hour)))
		data[i] = p.DistanceFromOrigin(id, at)
	}
	return data, nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := config.DefaultConfig()
	if preset != "" && !cfg.Apply(preset) {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// resolveBodies accepts a planet name or "all", which means the configured planets.
func resolveBodies(name string, cfg *config.Config, log zerolog.Logger) ([]catalog.ID, error) {
	if strings.EqualFold(name, "all") {
		return cfg.Bodies(log), nil
	}
	id, ok := catalog.Parse(name)
	if !ok {
		return nil, fmt.Errorf("unknown body: %s", name)
	}
	return []catalog.ID{id}, nil
}

// parseTime accepts RFC3339 or a bare date; empty means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC3339 or YYYY-MM-DD)", s)
}
