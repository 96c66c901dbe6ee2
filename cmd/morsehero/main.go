// Package main provides the CLI entrypoint for morsehero.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/config"
	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/logging"
	"github.com/verte-zerg/morsehero/internal/model"
	"github.com/verte-zerg/morsehero/internal/store"
	"github.com/verte-zerg/morsehero/internal/tui"
)

const (
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
)

var (
	logLevel string

	playWPM              int
	playHints            bool
	playTone             float64
	playRevealDelay      time.Duration
	playAdvanceCorrect   time.Duration
	playAdvanceIncorrect time.Duration
	playFocusWeak        bool
	playWeakTop          int
	playWeakFactor       float64
	playWeakWindow       int
	playWait             bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "morsehero",
		Short:         "Morse code listening trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	policy := engine.DefaultPolicy()
	rootCmd.Flags().IntVar(&playWPM, "wpm", engine.DefaultWPM, "playback speed (10, 15, 20, 25 or 30)")
	rootCmd.Flags().BoolVar(&playHints, "hints", false, "show Morse hints under the options")
	rootCmd.Flags().Float64Var(&playTone, "tone", audio.DefaultToneHz, "tone pitch in Hz")
	rootCmd.Flags().DurationVar(&playRevealDelay, "reveal-delay", policy.RevealDelay, "pause before revealing the answer after a miss")
	rootCmd.Flags().DurationVar(&playAdvanceCorrect, "advance-correct", policy.AdvanceCorrect, "pause before the next round after a hit")
	rootCmd.Flags().DurationVar(&playAdvanceIncorrect, "advance-incorrect", policy.AdvanceIncorrect, "pause before the next round after a miss")
	rootCmd.Flags().BoolVar(&playFocusWeak, "focus-weak", false, "bias targets toward weak characters")
	rootCmd.Flags().IntVar(&playWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&playWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&playWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
	rootCmd.Flags().BoolVar(&playWait, "wait", false, "show the start screen instead of starting right away")

	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGameConfig(cmd, fileCfg.Game)

	cfg := currentGameConfig()
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logFile, err := logging.SetupFile(logLevel, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer closeQuietly("log file", logFile)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly("db", st)

	eng, err := engine.New(audio.NewSpeaker(),
		engine.WithWPM(cfg.WPM),
		engine.WithHints(cfg.Hints),
		engine.WithToneHz(cfg.ToneHz),
		engine.WithPolicy(policyFrom(cfg)),
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	m := tui.NewModel(cfg, eng, st)
	defer closeQuietly("audio", m)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func currentGameConfig() model.Config {
	return model.Config{
		WPM:              playWPM,
		Hints:            playHints,
		ToneHz:           playTone,
		RevealDelay:      playRevealDelay,
		AdvanceCorrect:   playAdvanceCorrect,
		AdvanceIncorrect: playAdvanceIncorrect,
		FocusWeak:        playFocusWeak,
		WeakTop:          playWeakTop,
		WeakFactor:       playWeakFactor,
		WeakWindow:       playWeakWindow,
		Wait:             playWait,
	}
}

func policyFrom(cfg model.Config) engine.Policy {
	return engine.Policy{
		RevealDelay:      cfg.RevealDelay,
		AdvanceCorrect:   cfg.AdvanceCorrect,
		AdvanceIncorrect: cfg.AdvanceIncorrect,
	}
}

func applyGameConfig(cmd *cobra.Command, game config.GameConfig) {
	applyIntConfig(cmd, "wpm", &playWPM, game.WPM)
	applyBoolConfig(cmd, "hints", &playHints, game.Hints)
	applyFloatConfig(cmd, "tone", &playTone, game.ToneHz)
	applyDurationConfig(cmd, "reveal-delay", &playRevealDelay, game.RevealDelay)
	applyDurationConfig(cmd, "advance-correct", &playAdvanceCorrect, game.AdvanceCorrect)
	applyDurationConfig(cmd, "advance-incorrect", &playAdvanceIncorrect, game.AdvanceIncorrect)
	applyBoolConfig(cmd, "focus-weak", &playFocusWeak, game.FocusWeak)
	applyIntConfig(cmd, "weak-top", &playWeakTop, game.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &playWeakFactor, game.WeakFactor)
	applyIntConfig(cmd, "weak-window", &playWeakWindow, game.WeakWindow)
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

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	policy := engine.DefaultPolicy()
	return fmt.Sprintf(`# morsehero configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# wpm = %d                     # Playback speed: 10, 15, 20, 25 or 30
# hints = false                # Show Morse hints under the options
# tone = %.1f                 # Tone pitch in Hz
# reveal-delay = %q          # Pause before revealing the answer after a miss
# advance-correct = %q         # Pause before the next round after a hit
# advance-incorrect = %q         # Pause before the next round after a miss
# focus-weak = false           # Bias targets toward weak characters
# weak-top = %d                 # Number of weak characters to focus on
# weak-factor = %.1f            # Weight factor for weak characters
# weak-window = %d             # Number of recent sessions to compute weak chars

[serve]
# addr = %q               # Listen address for morsehero serve
`,
		engine.DefaultWPM,
		audio.DefaultToneHz,
		policy.RevealDelay.String(),
		policy.AdvanceCorrect.String(),
		policy.AdvanceIncorrect.String(),
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if !engine.ValidWPM(cfg.WPM) {
		return fmt.Errorf("--wpm must be one of %v", engine.SupportedWPM)
	}
	if cfg.ToneHz <= 0 {
		return fmt.Errorf("--tone must be > 0")
	}
	if err := policyFrom(cfg).Validate(); err != nil {
		return fmt.Errorf("invalid timings: %w", err)
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func closeQuietly(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("resource", what).Msg("failed to close")
	}
}
