package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/scanner"
	"github.com/slabs-dev/slabs/internal/types"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all discovered blocks",
	Long: `Scan the configured blocks root and list the valid blocks found.

Examples:
  slabs list                 # Table output
  slabs list -f json         # JSON output
  slabs list --format yaml   # YAML output`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
}

// listEntry is the serializable list row.
type listEntry struct {
	Name     string `json:"name" yaml:"name"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Path     string `json:"path" yaml:"path"`
	Preview  bool   `json:"hasPreview" yaml:"has_preview"`
	Style    bool   `json:"hasStyle" yaml:"has_style"`
}

func runList(cmd *cobra.Command, args []string) error {
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

	if len(defs) == 0 {
		fmt.Println("No blocks found.")
		return nil
	}

	entries := make([]listEntry, len(defs))
	for i, def := range defs {
		entries[i] = toListEntry(def)
	}

	switch strings.ToLower(listFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(entries)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(entries)
	case "table":
		return outputListTable(entries)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", listFormat)
	}
}

func toListEntry(def *types.BlockDefinition) listEntry {
	return listEntry{
		Name:     def.Name,
		Title:    def.Meta.Title,
		Category: def.Meta.Category,
		Path:     def.Path,
		Preview:  def.Files.PreviewPath != "",
		Style:    def.Files.StylePath != "",
	}
}

func outputListTable(entries []listEntry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tCATEGORY\tPREVIEW\tSTYLE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.Name, entry.Title, entry.Category,
			yesNo(entry.Preview), yesNo(entry.Style))
	}

	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
