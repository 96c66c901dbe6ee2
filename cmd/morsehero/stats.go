package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/morsehero/internal/config"
	"github.com/verte-zerg/morsehero/internal/logging"
	"github.com/verte-zerg/morsehero/internal/model"
	"github.com/verte-zerg/morsehero/internal/stats"
	"github.com/verte-zerg/morsehero/internal/statsui"
	"github.com/verte-zerg/morsehero/internal/store"
)

var (
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a report instead of opening the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	if err := logging.SetupStderr(logLevel); err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly("db", st)

	if statsPlain {
		return printStats(cmd, st, cfg)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, src stats.Source, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(context.Background(), src, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions, report.CharAggsAll); err != nil {
		return err
	}
	if err := stats.RenderTrend(out, report.Sessions, cfg.CurveWindow, width-12); err != nil {
		return err
	}
	return stats.RenderCharTable(out, report.CharAggsWindow, width)
}
