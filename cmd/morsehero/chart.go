package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/chart"
	"github.com/verte-zerg/morsehero/internal/config"
	"github.com/verte-zerg/morsehero/internal/logging"
)

var (
	chartPlain bool
	chartTone  float64
)

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Browse the Morse code chart",
		Args:  cobra.NoArgs,
		RunE:  runChartCmd,
	}
	cmd.Flags().BoolVar(&chartPlain, "plain", false, "print the chart instead of opening the browser")
	cmd.Flags().Float64Var(&chartTone, "tone", audio.DefaultToneHz, "tone pitch in Hz")
	return cmd
}

func runChartCmd(cmd *cobra.Command, _ []string) error {
	if chartPlain {
		if err := chart.RenderPlain(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		return nil
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "tone", &chartTone, fileCfg.Game.ToneHz)

	logFile, err := logging.SetupFile(logLevel, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer closeQuietly("log file", logFile)

	voice, openErr := audio.NewSpeaker().Open(chartTone)
	if openErr != nil {
		log.Error().Err(openErr).Msg("failed to open audio")
	} else {
		defer closeQuietly("audio", voice)
	}

	program := tea.NewProgram(chart.New(voice, openErr), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chart: %w", err)
	}
	return nil
}
