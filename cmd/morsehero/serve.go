package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/morsehero/internal/config"
	"github.com/verte-zerg/morsehero/internal/httpapi"
	"github.com/verte-zerg/morsehero/internal/logging"
	"github.com/verte-zerg/morsehero/internal/store"
)

const defaultAddr = ":8080"

var (
	serveAddr   string
	serveEnv    string
	serveOrigin string
	serveNoDB   bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP for browser front ends",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveEnv, "env", ".env", "optional dotenv file")
	cmd.Flags().StringVar(&serveOrigin, "origin", "", "allowed CORS origin (default: *)")
	cmd.Flags().BoolVar(&serveNoDB, "no-db", false, "do not record finished sessions")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadServeEnv(serveEnv)
	if err != nil {
		return err
	}
	level := logLevel
	if !cmd.Flags().Changed("log-level") && env.LogLevel != "" {
		level = env.LogLevel
	}
	if err := logging.SetupStderr(level); err != nil {
		return err
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if env.Addr != "" {
		fileCfg.Serve.Addr = &env.Addr
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	if !cmd.Flags().Changed("origin") {
		serveOrigin = env.Origin
	}

	// Game timings come from the same [game] section the TUI reads.
	applyGameConfig(cmd, fileCfg.Game)
	if env.ToneHz > 0 {
		playTone = env.ToneHz
	}
	cfg := currentGameConfig()
	if err := validateConfig(cfg); err != nil {
		return err
	}

	apiCfg := httpapi.Config{
		Origin:      serveOrigin,
		MaxSessions: env.MaxActive,
		IdleTTL:     env.IdleTTL,
		ToneHz:      cfg.ToneHz,
		Policy:      policyFrom(cfg),
	}
	if !serveNoDB {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer closeQuietly("db", st)
		apiCfg.History = st
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.New(apiCfg)
	log.Info().Str("addr", serveAddr).Str("origin", apiCfg.Origin).Msg("starting morsehero server")
	if err := srv.Serve(ctx, serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
