package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/logging"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/scanner"
	"github.com/slabs-dev/slabs/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rescan and regenerate on file changes",
	Long: `Watch the blocks root for changes and regenerate the registry module
and type declarations after each change. Rapid change bursts are debounced,
and rescans are serialized: a rescan in flight is never overlapped.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
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
		defs, err := blockScanner.Scan(ctx, cfg.Blocks.Root, cfg.ScanOptions())
		if err != nil {
			return err
		}

		source, err := registry.GenerateModule(defs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Registry.OutFile, []byte(source), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Registry.OutFile, err)
		}
		declarations := registry.GenerateTypes(defs)
		if err := os.WriteFile(cfg.Registry.TypesFile, []byte(declarations), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Registry.TypesFile, err)
		}

		fmt.Printf("Regenerated %s (%d blocks)\n", cfg.Registry.OutFile, len(defs))

		return nil
	}

	if err := rescan(ctx); err != nil {
		return err
	}

	if err := startWatching(ctx, cfg, logger, rescan); err != nil {
		return err
	}

	fmt.Println("Watching", cfg.Blocks.Root, "for changes. Ctrl+C to stop.")
	<-ctx.Done()

	return nil
}

// startWatching wires the file watcher to a serialized rescan scheduler.
func startWatching(ctx context.Context, cfg *config.Config, logger logging.Logger, rescan watcher.Rescan) error {
	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}

	fw.AddFilter(watcher.NoNodeModulesFilter)
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.BlockFileFilter)

	scheduler := watcher.NewScheduler(rescan, logger)
	scheduler.Start(ctx)

	fw.AddHandler(func(events []watcher.ChangeEvent) {
		scheduler.Trigger()
	})

	if err := fw.AddRecursive(cfg.Blocks.Root); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.Blocks.Root, err)
	}
	fw.Start(ctx)

	go func() {
		<-ctx.Done()
		_ = fw.Stop()
	}()

	return nil
}
