// Package main provides the CLI entrypoint for addstat.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okatens/addstat/internal/archive"
	"github.com/okatens/addstat/internal/config"
	"github.com/okatens/addstat/internal/model"
	"github.com/okatens/addstat/internal/optimize"
	"github.com/okatens/addstat/internal/optimizeui"
	"github.com/okatens/addstat/internal/stats"
	"github.com/okatens/addstat/internal/store"
)

const (
	defaultMode        = model.ModeAll
	defaultSensitivity = 1.5
	defaultOutliers    = true
)

var (
	dbPath string

	reportMode        string
	reportSince       string
	reportUntil       string
	reportSensitivity float64
	reportOutliers    bool
	reportDigits      float64
	reportCarryovers  float64
	reportZeros       float64

	optimizeMode        string
	optimizeSensitivity float64
	optimizeOutliers    bool
	optimizePlain       bool
	optimizeApply       bool

	setDigits     float64
	setCarryovers float64
	setZeros      float64

	exportMode     string
	exportAnalysis bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "addstat",
		Short:         "Difficulty analytics for addition practice logs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newOptimizeCmd())
	rootCmd.AddCommand(newWeightsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show correlation report",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportMode, "mode", defaultMode, "session mode filter ('all' for no filter)")
	cmd.Flags().StringVar(&reportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reportUntil, "until", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&reportSensitivity, "sensitivity", defaultSensitivity, "IQR outlier sensitivity")
	cmd.Flags().BoolVar(&reportOutliers, "outliers", defaultOutliers, "enable IQR outlier filtering")
	cmd.Flags().Float64Var(&reportDigits, "digits", 0, "digit-count weight (overrides stored weights)")
	cmd.Flags().Float64Var(&reportCarryovers, "carryovers", 0, "carry-count weight (overrides stored weights)")
	cmd.Flags().Float64Var(&reportZeros, "zeros", 0, "zero-count weight (overrides stored weights)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &reportMode, fileCfg.Analysis.Mode)
	applyFloatConfig(cmd, "sensitivity", &reportSensitivity, fileCfg.Analysis.Sensitivity)
	applyBoolConfig(cmd, "outliers", &reportOutliers, fileCfg.Analysis.Outliers)

	filter, err := buildFilter(reportMode, reportSince, reportUntil)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	weights, err := resolveWeights(ctx, cmd, st, fileCfg)
	if err != nil {
		return err
	}
	exercises, err := st.ListExercises(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	evaluations, err := st.ListEvaluations(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}
	if len(exercises) == 0 {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "No exercises found."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	report := stats.BuildReport(exercises, evaluations, stats.Options{
		Filter:      filter,
		Weights:     weights,
		Outliers:    reportOutliers,
		Sensitivity: reportSensitivity,
	})
	if err := stats.RenderReport(cmd.OutOrStdout(), report, terminalWidth()); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Grid-search difficulty weights",
		Args:  cobra.NoArgs,
		RunE:  runOptimizeCmd,
	}
	cmd.Flags().StringVar(&optimizeMode, "mode", defaultMode, "session mode filter ('all' for no filter)")
	cmd.Flags().Float64Var(&optimizeSensitivity, "sensitivity", defaultSensitivity, "IQR outlier sensitivity")
	cmd.Flags().BoolVar(&optimizeOutliers, "outliers", defaultOutliers, "enable IQR outlier filtering")
	cmd.Flags().BoolVar(&optimizePlain, "plain", false, "print progress lines instead of the TUI")
	cmd.Flags().BoolVar(&optimizeApply, "apply", false, "persist the winning weights")
	return cmd
}

func runOptimizeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &optimizeMode, fileCfg.Analysis.Mode)
	applyFloatConfig(cmd, "sensitivity", &optimizeSensitivity, fileCfg.Analysis.Sensitivity)
	applyBoolConfig(cmd, "outliers", &optimizeOutliers, fileCfg.Analysis.Outliers)

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	filter := model.Filter{Mode: optimizeMode}
	exercises, err := st.ListExercises(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	evaluations, err := st.ListEvaluations(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}

	opts := optimize.Options{
		Filter:      filter,
		Outliers:    optimizeOutliers,
		Sensitivity: optimizeSensitivity,
	}

	var result model.OptimizationResult
	if optimizePlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		result, err = runPlainSearch(ctx, cmd.OutOrStdout(), exercises, evaluations, opts)
	} else {
		result, err = runSearchUI(exercises, evaluations, opts)
	}
	if err != nil {
		return err
	}

	if optimizeApply {
		if err := st.SaveWeights(ctx, result.Weights); err != nil {
			return fmt.Errorf("failed to save weights: %w", err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Weights saved."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runPlainSearch(ctx context.Context, out io.Writer, exercises []model.Exercise, evaluations []model.Evaluation, opts optimize.Options) (model.OptimizationResult, error) {
	lastPct := -1
	opts.OnProgress = func(p optimize.Progress) {
		pct := int(p.Percentage)
		if pct/5 > lastPct/5 || p.Current == p.Total {
			logErrf("optimizing... %d%% (%d/%d)\n", pct, p.Current, p.Total)
			lastPct = pct
		}
	}
	result, err := optimize.GridSearch(ctx, exercises, evaluations, opts)
	if err != nil {
		return result, fmt.Errorf("grid search failed: %w", err)
	}
	return result, printResult(out, result)
}

func runSearchUI(exercises []model.Exercise, evaluations []model.Evaluation, opts optimize.Options) (model.OptimizationResult, error) {
	ui := optimizeui.NewModel(exercises, evaluations, opts)
	program := tea.NewProgram(ui)
	if _, err := program.Run(); err != nil {
		return model.OptimizationResult{}, fmt.Errorf("failed to run optimizer TUI: %w", err)
	}
	result, err := ui.Result()
	if err != nil {
		return result, fmt.Errorf("grid search stopped: %w", err)
	}
	return result, printResult(os.Stdout, result)
}

func printResult(out io.Writer, result model.OptimizationResult) error {
	w := result.Weights
	lines := []string{
		fmt.Sprintf("Best weights: digits=%.1f carryovers=%.1f zeros=%.1f", w.Digits, w.Carryovers, w.Zeros),
		fmt.Sprintf("Composite score: %.3f", result.CompositeScore),
		"Correlations: " + formatCorrelation("time", result.Correlations.Time) +
			" " + formatCorrelation("rating", result.Correlations.Rating) +
			" " + formatCorrelation("correctness", result.Correlations.Correctness),
	}
	if result.CompositeScore == 0 {
		lines = append(lines, "No signal in the data; the result is not a usable recommendation.")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func formatCorrelation(name string, r *float64) string {
	if r == nil {
		return name + "=n/a"
	}
	return fmt.Sprintf("%s=%+.3f", name, *r)
}

func newWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Manage stored difficulty weights",
		Args:  cobra.NoArgs,
		RunE:  runWeightsShowCmd,
	}
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store difficulty weights",
		Args:  cobra.NoArgs,
		RunE:  runWeightsSetCmd,
	}
	defaults := model.DefaultWeights()
	setCmd.Flags().Float64Var(&setDigits, "digits", defaults.Digits, "digit-count weight")
	setCmd.Flags().Float64Var(&setCarryovers, "carryovers", defaults.Carryovers, "carry-count weight")
	setCmd.Flags().Float64Var(&setZeros, "zeros", defaults.Zeros, "zero-count weight")
	cmd.AddCommand(setCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset stored weights to defaults",
		Args:  cobra.NoArgs,
		RunE:  runWeightsResetCmd,
	})
	return cmd
}

func runWeightsShowCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	rec, found, err := st.GetWeights(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}
	out := cmd.OutOrStdout()
	if !found {
		defaults := model.DefaultWeights()
		_, err := fmt.Fprintf(out, "No stored weights; defaults in effect: digits=%.1f carryovers=%.1f zeros=%.1f\n",
			defaults.Digits, defaults.Carryovers, defaults.Zeros)
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintf(out, "digits=%.1f carryovers=%.1f zeros=%.1f (updated %s)\n",
		rec.Weights.Digits, rec.Weights.Carryovers, rec.Weights.Zeros,
		rec.UpdatedAt.Local().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runWeightsSetCmd(_ *cobra.Command, _ []string) error {
	if setDigits < 0 || setCarryovers < 0 || setZeros < 0 {
		return fmt.Errorf("weights must be >= 0")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	w := model.Weights{Digits: setDigits, Carryovers: setCarryovers, Zeros: setZeros}
	if err := st.SaveWeights(context.Background(), w); err != nil {
		return fmt.Errorf("failed to save weights: %w", err)
	}
	return nil
}

func runWeightsResetCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	if err := st.SaveWeights(context.Background(), model.DefaultWeights()); err != nil {
		return fmt.Errorf("failed to reset weights: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive.json>",
		Short: "Import a JSON archive of practice records",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort file close.
			_ = cerr
		}
	}()

	a, err := archive.Read(file)
	if err != nil {
		return err
	}
	exercises, evaluations := a.Models()

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	// Archive ids are not preserved; evaluation links are remapped onto
	// the ids assigned by the store.
	idMap := make(map[int64]int64, len(exercises))
	for _, ex := range exercises {
		ex.EvaluationID = nil
		newID, err := st.InsertExercise(ctx, ex)
		if err != nil {
			return fmt.Errorf("failed to import exercise %d: %w", ex.ID, err)
		}
		idMap[ex.ID] = newID
	}
	imported := 0
	for _, ev := range evaluations {
		mapped := make([]int64, 0, len(ev.ExerciseIDs))
		for _, id := range ev.ExerciseIDs {
			if newID, ok := idMap[id]; ok {
				mapped = append(mapped, newID)
			}
		}
		if len(mapped) == 0 {
			continue
		}
		ev.ExerciseIDs = mapped
		if _, err := st.InsertEvaluation(ctx, ev); err != nil {
			return fmt.Errorf("failed to import evaluation %d: %w", ev.ID, err)
		}
		imported++
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exercises and %d evaluations.\n", len(exercises), imported)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.json>",
		Short: "Export practice records as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportMode, "mode", defaultMode, "session mode filter ('all' for no filter)")
	cmd.Flags().BoolVar(&exportAnalysis, "analysis", false, "export per-exercise difficulty analysis instead of raw records")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	filter := model.Filter{Mode: exportMode}
	exercises, err := st.ListExercises(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	evaluations, err := st.ListEvaluations(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}

	out, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logErrf("failed to close output file: %v\n", cerr)
		}
	}()

	if exportAnalysis {
		weights, err := resolveWeights(ctx, cmd, st, fileCfg)
		if err != nil {
			return err
		}
		rows := archive.Analyze(exercises, evaluations, filter, weights)
		return archive.WriteAnalysis(out, rows)
	}
	return archive.Write(out, archive.FromModels(exercises, evaluations))
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

// resolveWeights picks the weights for an analysis run: explicit flags win,
// then the config file, then stored settings, then the stock defaults.
func resolveWeights(ctx context.Context, cmd *cobra.Command, st *store.Store, fileCfg config.FileConfig) (model.Weights, error) {
	flagged := flagChanged(cmd, "digits") || flagChanged(cmd, "carryovers") || flagChanged(cmd, "zeros")
	if flagged {
		w := model.DefaultWeights()
		applyWeightFlag(cmd, "digits", &w.Digits, reportDigits)
		applyWeightFlag(cmd, "carryovers", &w.Carryovers, reportCarryovers)
		applyWeightFlag(cmd, "zeros", &w.Zeros, reportZeros)
		if w.Digits < 0 || w.Carryovers < 0 || w.Zeros < 0 {
			return model.Weights{}, fmt.Errorf("weights must be >= 0")
		}
		return w, nil
	}
	if fileCfg.Weights.Digits != nil || fileCfg.Weights.Carryovers != nil || fileCfg.Weights.Zeros != nil {
		w := model.DefaultWeights()
		if fileCfg.Weights.Digits != nil {
			w.Digits = *fileCfg.Weights.Digits
		}
		if fileCfg.Weights.Carryovers != nil {
			w.Carryovers = *fileCfg.Weights.Carryovers
		}
		if fileCfg.Weights.Zeros != nil {
			w.Zeros = *fileCfg.Weights.Zeros
		}
		return w, nil
	}
	rec, found, err := st.GetWeights(ctx)
	if err != nil {
		return model.Weights{}, fmt.Errorf("failed to read weights: %w", err)
	}
	if found {
		return rec.Weights, nil
	}
	return model.DefaultWeights(), nil
}

func applyWeightFlag(cmd *cobra.Command, name string, target *float64, value float64) {
	if flagChanged(cmd, name) {
		*target = value
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func buildFilter(mode, since, until string) (model.Filter, error) {
	filter := model.Filter{Mode: mode}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.Filter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	if until != "" {
		parsed, err := time.ParseInLocation("2006-01-02", until, time.Local)
		if err != nil {
			return model.Filter{}, fmt.Errorf("invalid --until value: %w", err)
		}
		filter.Until = &parsed
	}
	return filter, nil
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
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
	defaults := model.DefaultWeights()
	return fmt.Sprintf(`# addstat configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# mode = %q             # Session mode filter ('all' for no filter)
# sensitivity = %.1f     # IQR outlier sensitivity
# outliers = %t         # Enable IQR outlier filtering

[weights]
# digits = %.1f           # Digit-count weight
# carryovers = %.1f       # Carry-count weight
# zeros = %.1f            # Zero-count weight
`,
		defaultMode,
		defaultSensitivity,
		defaultOutliers,
		defaults.Digits,
		defaults.Carryovers,
		defaults.Zeros,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
