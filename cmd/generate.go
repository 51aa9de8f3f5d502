package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/scanner"
)

var generateStdout bool

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"g", "gen"},
	Short:   "Generate the registry module and type declarations",
	Long: `Scan the configured blocks root and write the virtual-module source
and its TypeScript declarations to the configured output paths.

Examples:
  slabs generate               # Write registry.out_file and registry.types_file
  slabs generate --stdout      # Print the module source instead of writing`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "Print generated module to stdout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	reg := registry.NewBlockRegistry()
	blockScanner, err := scanner.New(reg, logger)
	if err != nil {
		return err
	}

	defs, err := blockScanner.Scan(cmd.Context(), cfg.Blocks.Root, cfg.ScanOptions())
	if err != nil {
		return err
	}

	for _, diag := range blockScanner.Diagnostics() {
		for _, e := range diag.Errors {
			fmt.Fprintf(os.Stderr, "error: %s: [%s] %s\n", diag.Path, e.Code, e.Message)
		}
		for _, w := range diag.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s: [%s] %s (%s)\n", diag.Path, w.Code, w.Message, w.Suggestion)
		}
	}

	source, err := registry.GenerateModule(defs)
	if err != nil {
		return err
	}
	declarations := registry.GenerateTypes(defs)

	if generateStdout {
		fmt.Print(source)
		return nil
	}

	if err := os.WriteFile(cfg.Registry.OutFile, []byte(source), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Registry.OutFile, err)
	}
	if err := os.WriteFile(cfg.Registry.TypesFile, []byte(declarations), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Registry.TypesFile, err)
	}

	fmt.Printf("Generated %s and %s (%d blocks)\n", cfg.Registry.OutFile, cfg.Registry.TypesFile, len(defs))

	return nil
}
