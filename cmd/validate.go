package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/scanner"
	"github.com/slabs-dev/slabs/internal/types"
	"github.com/slabs-dev/slabs/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:     "validate [path]",
	Aliases: []string{"v"},
	Short:   "Validate block folders",
	Long: `Validate a single block folder, or every block folder the configured
scan settings discover (blocks.root, max_depth, ignore) when no path is given.

Each finding names the offending path and the violated rule; warnings carry
an actionable suggestion. The command exits non-zero if any block has
blocking errors.

Examples:
  slabs validate                 # Validate everything under blocks.root
  slabs validate blocks/hero     # Validate one folder`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	validator, err := validate.New()
	if err != nil {
		return err
	}

	var targets []string
	if len(args) == 1 {
		targets = []string{args[0]}
	} else {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		targets, err = scanner.Candidates(cfg.Blocks.Root, cfg.ScanOptions())
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Println("No block folders found under", cfg.Blocks.Root)
			return nil
		}
	}

	failed := 0
	for _, target := range targets {
		result := validator.Validate(target)
		printValidation(target, result)
		if !result.Valid {
			failed++
		}
	}

	fmt.Printf("%d of %d block folders valid\n", len(targets)-failed, len(targets))
	if failed > 0 {
		return fmt.Errorf("%d block folder(s) failed validation", failed)
	}

	return nil
}

func printValidation(target string, result types.ValidationResult) {
	status := "ok"
	if !result.Valid {
		status = "FAIL"
	}
	fmt.Printf("%s  %s\n", status, target)

	for _, e := range result.Errors {
		fmt.Printf("  error [%s] %s\n", e.Code, e.Message)
		if e.Value != "" {
			fmt.Printf("        value: %q\n", e.Value)
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warn  [%s] %s\n", w.Code, w.Message)
		if w.Suggestion != "" {
			fmt.Printf("        hint: %s\n", w.Suggestion)
		}
	}
}
