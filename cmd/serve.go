package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/scanner"
	"github.com/slabs-dev/slabs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the dev server with live reload",
	Long: `Start the slabs dev server. The generated registry module is served at
/registry.js (declarations at /registry.d.ts, block metadata at /api/blocks),
and connected clients receive a reload message over /ws whenever a rescan
publishes a new block set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Dev server port (overrides config)")
	serveCmd.Flags().String("host", "", "Dev server host (overrides config)")
	addFlagValidation(serveCmd, "port", validatePort)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.NewBlockRegistry()
	blockScanner, err := scanner.New(reg, logger)
	if err != nil {
		return err
	}

	rescan := func(ctx context.Context) error {
		_, err := blockScanner.Scan(ctx, cfg.Blocks.Root, cfg.ScanOptions())

		return err
	}

	if err := rescan(ctx); err != nil {
		return err
	}

	if err := startWatching(ctx, cfg, logger, rescan); err != nil {
		return err
	}

	fmt.Printf("Serving %d blocks at http://%s:%d/\n", reg.Count(), cfg.Server.Host, cfg.Server.Port)

	return server.New(cfg.Server, reg, logger).Start(ctx)
}
