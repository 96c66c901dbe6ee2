package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/logging"
)

var (
	exportOut  string
	exportWPM  int
	exportTone float64
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export CHAR",
		Short: "Write the Morse rendering of a character as WAV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&exportWPM, "wpm", engine.DefaultWPM, "playback speed (10, 15, 20, 25 or 30)")
	cmd.Flags().Float64Var(&exportTone, "tone", audio.DefaultToneHz, "tone pitch in Hz")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	if err := logging.SetupStderr(logLevel); err != nil {
		return err
	}
	if utf8.RuneCountInString(args[0]) != 1 {
		return fmt.Errorf("expected a single character, got %q", args[0])
	}
	ch, _ := utf8.DecodeRuneInString(args[0])
	if !catalog.Supported(ch) {
		return fmt.Errorf("unsupported character %q", ch)
	}
	if !engine.ValidWPM(exportWPM) {
		return fmt.Errorf("--wpm must be one of %v", engine.SupportedWPM)
	}
	if exportTone <= 0 {
		return fmt.Errorf("--tone must be > 0")
	}

	var buf audio.Buffer
	if err := audio.WriteWAV(&buf, catalog.Lookup(ch), exportWPM, exportTone); err != nil {
		return fmt.Errorf("failed to render wav: %w", err)
	}

	if exportOut == "" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write wav: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(exportOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	log.Info().Str("path", exportOut).Str("char", string(catalog.Normalize(ch))).Msg("wrote wav")
	return nil
}
