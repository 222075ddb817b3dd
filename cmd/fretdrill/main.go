// Package main provides the CLI entrypoint for fretdrill.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/fretdrill/internal/calibration"
	"github.com/verte-zerg/fretdrill/internal/config"
	"github.com/verte-zerg/fretdrill/internal/model"
	"github.com/verte-zerg/fretdrill/internal/music"
	"github.com/verte-zerg/fretdrill/internal/stats"
	"github.com/verte-zerg/fretdrill/internal/tui"
)

const (
	defaultMode         = "fretboard"
	defaultNotation     = "sharps"
	defaultForecastDays = 7
	defaultExportFormat = "json"
)

var (
	debugLog bool

	practiceMode     string
	practiceNotation string
	practiceGroups   []int
	practiceSuggest  bool

	calibrateTrials int

	progressMode  string
	progressDays  int
	progressColor bool

	exportMode   string
	exportFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fretdrill",
		Short:         "Adaptive music-theory drills in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write debug diagnostics to the log file")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "quiz mode (see: fretdrill modes)")
	rootCmd.Flags().StringVar(&practiceNotation, "notation", defaultNotation, "accidental spelling: sharps or flats")
	rootCmd.Flags().IntSliceVar(&practiceGroups, "groups", nil, "group indexes to practise, e.g. 0,2")
	rootCmd.Flags().BoolVar(&practiceSuggest, "suggest", false, "practise the recommended groups instead of the saved selection")

	rootCmd.AddCommand(newCalibrateCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "notation", &practiceNotation, fileCfg.Practice.Notation)
	applyIntSliceConfig(cmd, "groups", &practiceGroups, fileCfg.Practice.Groups)
	applyBoolConfig(cmd, "suggest", &practiceSuggest, fileCfg.Practice.Suggest)

	cfg := model.PracticeConfig{
		Mode:     practiceMode,
		Notation: practiceNotation,
		Groups:   practiceGroups,
		Suggest:  practiceSuggest,
	}
	mode, err := resolveMode(cfg.Mode, cfg.Notation)
	if err != nil {
		return err
	}

	ctx := context.Background()
	env, err := openEnv(ctx, fileCfg, mode)
	if err != nil {
		return err
	}
	defer env.Close()
	if !env.calibrated {
		logErrln("No motor baseline yet; using 1s. Run: fretdrill calibrate")
	}

	groups := mode.Groups()
	saved, hasSaved, err := env.store.EnabledGroups(ctx, mode.Name())
	if err != nil {
		env.logger.Warn().Err(err).Str("mode", mode.Name()).Msg("failed to load enabled groups")
		hasSaved = false
	}
	choice, err := chooseGroups(env.selector, groups, mode.SortUnstarted(), env.selector.Config(), groupRequest{
		Explicit: cfg.Groups,
		Saved:    saved,
		HasSaved: hasSaved,
		Suggest:  cfg.Suggest,
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}
	for _, notice := range choice.Notices {
		logErrln(notice)
	}
	if err := env.store.SetEnabledGroups(ctx, mode.Name(), choice.Groups); err != nil {
		env.logger.Warn().Err(err).Str("mode", mode.Name()).Msg("failed to save enabled groups")
	}

	env.logger.Info().Str("mode", mode.Name()).Ints("groups", choice.Groups).Int("items", len(choice.Items)).Msg("practice started")
	drill := tui.NewDrill(mode, env.selector, choice.Items)
	if err := drill.Err(); err != nil {
		return fmt.Errorf("failed to start drill: %w", err)
	}
	program := tea.NewProgram(drill, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := drill.Err(); err != nil {
		return err
	}
	answered, correct := drill.Answered()
	env.logger.Info().Int("answered", answered).Int("correct", correct).Msg("practice finished")
	if answered > 0 {
		logErrf("%d answered, %d correct (%.0f%%)\n", answered, correct, float64(correct)/float64(answered)*100)
	}
	return nil
}

func resolveMode(name, notation string) (music.Mode, error) {
	n, err := music.ParseNotation(notation)
	if err != nil {
		return nil, err
	}
	return music.Lookup(name, music.Settings{Notation: n})
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure your key-press latency and rescale timing thresholds",
		Args:  cobra.NoArgs,
		RunE:  runCalibrateCmd,
	}
	cmd.Flags().IntVar(&calibrateTrials, "trials", calibration.DefaultTrials, "number of key presses (first one is a warm-up)")
	return cmd
}

func runCalibrateCmd(_ *cobra.Command, _ []string) error {
	if calibrateTrials < calibration.MinSamples {
		return fmt.Errorf("--trials must be >= %d", calibration.MinSamples)
	}
	logger, closeLog := openLogger(debugLog)
	defer closeLog()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	screen := tui.NewCalibration(calibrateTrials, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
	program := tea.NewProgram(screen, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run calibration: %w", err)
	}
	baseline, ok, err := screen.Result()
	if err != nil {
		return fmt.Errorf("failed to compute baseline: %w", err)
	}
	if !ok {
		logErrln("Calibration cancelled; baseline unchanged.")
		return nil
	}
	if err := st.SetBaseline(context.Background(), baseline); err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}
	scaled := calibration.Config(baseline)
	logger.Info().Dur("baseline", baseline).Durs("samples", screen.Samples()).Msg("calibrated")
	logErrf("Baseline %s: min-time %.0fms, automaticity target %.0fms, max response %.0fms\n",
		baseline, scaled.MinTime, scaled.AutomaticityTarget, scaled.MaxResponseTime)
	return nil
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show mastery per group and a recall forecast",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
	cmd.Flags().StringVar(&progressMode, "mode", defaultMode, "quiz mode")
	cmd.Flags().IntVar(&progressDays, "days", defaultForecastDays, "forecast horizon in days (0 disables)")
	cmd.Flags().BoolVar(&progressColor, "color", false, "force colour output")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &progressMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "days", &progressDays, fileCfg.Progress.Days)
	applyBoolConfig(cmd, "color", &progressColor, fileCfg.Progress.Color)
	cfg := model.ProgressConfig{Mode: progressMode, ForecastDays: progressDays, Color: progressColor}
	if cfg.ForecastDays < 0 {
		return fmt.Errorf("--days must be >= 0")
	}

	notation := defaultNotation
	if fileCfg.Practice.Notation != nil {
		notation = *fileCfg.Practice.Notation
	}
	mode, err := resolveMode(cfg.Mode, notation)
	if err != nil {
		return err
	}

	ctx := context.Background()
	env, err := openEnv(ctx, fileCfg, mode)
	if err != nil {
		return err
	}
	defer env.Close()

	enabled, _, err := env.store.EnabledGroups(ctx, mode.Name())
	if err != nil {
		env.logger.Warn().Err(err).Msg("failed to load enabled groups")
	}
	report := stats.BuildReport(env.selector, mode.Groups(), env.selector.Config(), stats.ReportOptions{
		Mode:          mode.Name(),
		Now:           time.Now(),
		SortUnstarted: mode.SortUnstarted(),
		ForecastDays:  cfg.ForecastDays,
		Enabled:       enabled,
	})

	out := cmd.OutOrStdout()
	useColor := stats.UseColor(out, cfg.Color)
	if err := stats.RenderSummary(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderGroupTable(out, report, useColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderForecast(out, report, stats.TerminalWidth(), useColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List quiz modes and their groups",
		Args:  cobra.NoArgs,
		RunE:  runModesCmd,
	}
}

func runModesCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, m := range music.Modes(music.Settings{Notation: music.Sharps}) {
		if _, err := fmt.Fprintf(out, "%s: %s (%d items)\n", m.Name(), m.Description(), len(m.Items())); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, g := range m.Groups() {
			if _, err := fmt.Fprintf(out, "  %2d  %s (%d)\n", g.Index, g.Label, len(g.ItemIDs)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntSliceConfig(cmd *cobra.Command, name string, target, value *[]int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]int(nil), (*value)...)
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# fretdrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q         # fretboard, intervals or keys
# notation = %q        # sharps or flats
# groups = [0, 1]           # Group indexes to practise (see: fretdrill modes)
# suggest = false           # Always practise the recommended groups

[progress]
# days = %d                  # Recall forecast horizon
# color = false             # Force colour output

[engine]
# Timing values are milliseconds and are normally derived by: fretdrill calibrate
# unseen-boost = 3.0
# initial-stability = 4.0   # Hours
# stability-growth-base = 1.3
# stability-decay-on-wrong = 0.3
# self-correction-multiple = 2.0
# recall-threshold = 0.5
# expansion-threshold = 0.7
# automaticity-threshold = 0.8
`,
		defaultMode,
		defaultNotation,
		defaultForecastDays,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
