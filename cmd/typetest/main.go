// Package main provides the CLI entrypoint for typetest.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typetest/internal/config"
	"github.com/verte-zerg/typetest/internal/history"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/samples"
	"github.com/verte-zerg/typetest/internal/stats"
	"github.com/verte-zerg/typetest/internal/statsui"
	"github.com/verte-zerg/typetest/internal/tui"
)

const (
	defaultDuration    = 60
	defaultSamples     = 3
	defaultWords       = 25
	defaultCurveWindow = 10
	defaultHistoryLast = 10
	defaultTopMistakes = 5
)

const (
	sourceBuiltin = "builtin"
	sourceFile    = "file"
	sourceWords   = "words"
)

var (
	verbose bool
	quiet   bool

	testDuration    int
	testSamples     int
	testSource      string
	testSamplesFile string
	testWordsFile   string
	testWords       int

	historyBackend string
	historyPath    string

	statsDuration    int
	statsLast        int
	statsCurveWindow int
	statsWatch       bool

	historyLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typetest",
		Short:         "Timed typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging()
		},
		RunE: runTestCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().StringVar(&historyBackend, "backend", history.BackendJSON, "history backend (json|sqlite)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history-path", "", "history file path (default: XDG data dir)")

	rootCmd.Flags().IntVarP(&testDuration, "duration", "d", defaultDuration, "test length in seconds (30, 60 or 120)")
	rootCmd.Flags().IntVar(&testSamples, "samples", defaultSamples, "samples joined into one passage")
	rootCmd.Flags().StringVar(&testSource, "source", sourceBuiltin, "passage source (builtin|file|words)")
	rootCmd.Flags().StringVar(&testSamplesFile, "samples-file", "", "YAML sample file for --source file")
	rootCmd.Flags().StringVar(&testWordsFile, "words-file", "", "word list for --source words")
	rootCmd.Flags().IntVar(&testWords, "words", defaultWords, "words per sample for --source words")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSamplesCmd())

	return rootCmd
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	if quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &testDuration, fileCfg.Test.Duration)
	applyIntConfig(cmd, "samples", &testSamples, fileCfg.Test.Samples)
	applyStringConfig(cmd, "source", &testSource, fileCfg.Test.Source)
	applyStringConfig(cmd, "samples-file", &testSamplesFile, fileCfg.Test.SamplesFile)
	applyStringConfig(cmd, "words-file", &testWordsFile, fileCfg.Test.WordsFile)
	applyIntConfig(cmd, "words", &testWords, fileCfg.Test.Words)

	cfg := model.Config{
		Duration:    testDuration,
		Samples:     testSamples,
		Source:      testSource,
		SamplesFile: testSamplesFile,
		WordsFile:   testWordsFile,
		Words:       testWords,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	provider, err := resolveProvider(cfg)
	if err != nil {
		return err
	}

	st, err := openHistory(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeHistory(st)

	m, err := tui.NewModel(cfg, st, provider)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func resolveProvider(cfg model.Config) (samples.Provider, error) {
	switch cfg.Source {
	case sourceBuiltin:
		provider, err := samples.Builtin()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in samples: %w", err)
		}
		return provider, nil
	case sourceFile:
		provider, err := samples.LoadFile(cfg.SamplesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load samples from %s: %w", cfg.SamplesFile, err)
		}
		return provider, nil
	case sourceWords:
		provider, err := samples.LoadWords(cfg.WordsFile, cfg.Words)
		if err != nil {
			return nil, fmt.Errorf("failed to load words from %s: %w", cfg.WordsFile, err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown source %q (use builtin, file or words)", cfg.Source)
	}
}

// openHistory resolves the backend and path, falling back to an in-memory
// store when the configured one cannot be opened.
func openHistory(cmd *cobra.Command, fileCfg config.FileConfig) (history.Store, error) {
	hcfg := resolveHistoryConfig(cmd, fileCfg)
	if hcfg.Backend != history.BackendJSON && hcfg.Backend != history.BackendSQLite {
		return nil, fmt.Errorf("unknown history backend %q (use json or sqlite)", hcfg.Backend)
	}
	if err := os.MkdirAll(filepath.Dir(hcfg.Path), 0o755); err != nil {
		slog.Warn("failed to create history directory", "path", hcfg.Path, "err", err)
	}
	st, err := history.Open(hcfg.Backend, hcfg.Path)
	if err != nil {
		slog.Warn("history unavailable, results will not be saved", "path", hcfg.Path, "err", err)
		return history.NewMemory(), nil
	}
	slog.Info("history opened", "backend", hcfg.Backend, "path", hcfg.Path)
	return st, nil
}

func resolveHistoryConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.HistoryConfig {
	backend := historyBackend
	path := historyPath
	applyStringConfig(cmd, "backend", &backend, fileCfg.History.Backend)
	applyStringConfig(cmd, "history-path", &path, fileCfg.History.Path)
	if path == "" {
		path = config.DefaultHistoryPath(backend)
	}
	return model.HistoryConfig{Backend: backend, Path: path}
}

func closeHistory(st history.Store) {
	if cerr := st.Close(); cerr != nil {
		slog.Warn("failed to close history", "err", cerr)
	}
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse results and learning curves",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVarP(&statsDuration, "duration", "d", 0, "only tests of this length (30, 60 or 120)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsWatch, "watch", false, "reload when the history file changes")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := model.StatsConfig{
		Duration:    statsDuration,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Watch:       statsWatch,
	}
	if cfg.Duration != 0 && !model.ValidDuration(cfg.Duration) {
		return fmt.Errorf("--duration must be one of %v", model.Durations)
	}
	if cfg.Last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := openHistory(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeHistory(st)

	var watcher *history.Watcher
	if cfg.Watch {
		hcfg := resolveHistoryConfig(cmd, fileCfg)
		watcher, err = history.Watch(hcfg.Path)
		if err != nil {
			return fmt.Errorf("failed to watch history: %w", err)
		}
		defer func() {
			if cerr := watcher.Close(); cerr != nil {
				slog.Warn("failed to close watcher", "err", cerr)
			}
		}()
	}

	m := statsui.NewModel(st, cfg, watcher)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVarP(&historyLast, "last", "n", defaultHistoryLast, "number of results to print")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := openHistory(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeHistory(st)
	return printHistory(cmd, st, historyLast)
}

func printHistory(cmd *cobra.Command, h history.History, n int) error {
	out := cmd.OutOrStdout()
	recent := h.Recent(n)
	if err := stats.RenderHistoryTable(out, recent); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(recent) > 0 {
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderSummary(out, recent); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if len(recent) > 1 {
		wpms := make([]float64, len(recent))
		for i, r := range recent {
			wpms[i] = r.WPM
		}
		if _, err := fmt.Fprintf(out, "Trend: %s\n", stats.Sparkline(wpms)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "All-time average: %.1f WPM\n\n", h.AverageWPM()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(recent) > 0 {
		if err := stats.RenderMistakeTable(out, stats.TopMistyped(stats.MistypedChars(recent), defaultTopMistakes)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List built-in samples",
		Args:  cobra.NoArgs,
		RunE:  runSamplesCmd,
	}
}

func runSamplesCmd(cmd *cobra.Command, _ []string) error {
	provider, err := samples.Builtin()
	if err != nil {
		return fmt.Errorf("failed to load built-in samples: %w", err)
	}
	for _, s := range provider.Samples() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", s.ID, s.Source); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typetest configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# duration = %d           # Test length in seconds: 30, 60 or 120
# samples = %d             # Samples joined into one passage
# source = %q       # builtin, file or words
# samples-file = ""       # YAML list of {id, text, source} for source = "file"
# words-file = ""         # One word per line for source = "words"
# words = %d              # Words per sample for source = "words"

[history]
# backend = %q          # json or sqlite
# path = ""               # Default: %s
`,
		defaultDuration,
		defaultSamples,
		sourceBuiltin,
		defaultWords,
		history.BackendJSON,
		config.DefaultHistoryPath(history.BackendJSON),
	)
}

func validateConfig(cfg model.Config) error {
	if !model.ValidDuration(cfg.Duration) {
		return fmt.Errorf("--duration must be one of %v", model.Durations)
	}
	if cfg.Samples <= 0 {
		return fmt.Errorf("--samples must be > 0")
	}
	switch cfg.Source {
	case sourceBuiltin:
	case sourceFile:
		if cfg.SamplesFile == "" {
			return fmt.Errorf("--samples-file is required for --source file")
		}
	case sourceWords:
		if cfg.WordsFile == "" {
			return fmt.Errorf("--words-file is required for --source words")
		}
		if cfg.Words <= 0 {
			return fmt.Errorf("--words must be > 0")
		}
	default:
		return fmt.Errorf("--source must be builtin, file or words")
	}
	return nil
}
