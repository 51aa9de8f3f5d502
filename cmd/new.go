package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/scaffolding"
)

var (
	newTitle       string
	newCategory    string
	newDescription string
	newWithStyle   bool
	newWithPreview bool
	newInteractive bool
)

var newCmd = &cobra.Command{
	Use:     "new [name]",
	Aliases: []string{"n"},
	Short:   "Scaffold a new block",
	Long: `Scaffold a new block folder under the configured blocks root:
a block.json manifest plus edit/save/render sources, and optionally a
stylesheet and preview image.

The block name must match namespace/block-name (lowercase letters, digits,
hyphens), e.g. "slabs/hero".

Examples:
  slabs new slabs/hero --title "Hero"
  slabs new slabs/quote --style --preview
  slabs new --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "Block title (defaults from the name)")
	newCmd.Flags().StringVarP(&newCategory, "category", "c", "", "Block category")
	newCmd.Flags().StringVar(&newDescription, "description", "", "Block description")
	newCmd.Flags().BoolVar(&newWithStyle, "style", false, "Also create style.css")
	newCmd.Flags().BoolVar(&newWithPreview, "preview", false, "Also create a placeholder preview.svg")
	newCmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "Prompt for block details")
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := scaffolding.Options{
		Title:       newTitle,
		Category:    newCategory,
		Description: newDescription,
		WithStyle:   newWithStyle,
		WithPreview: newWithPreview,
	}
	if len(args) == 1 {
		opts.Name = args[0]
	}

	if newInteractive || opts.Name == "" {
		if err := promptBlockOptions(&opts); err != nil {
			return err
		}
	}

	dir, err := scaffolding.New(cfg.Blocks.Root).Generate(opts)
	if err != nil {
		return err
	}

	fmt.Println("Created block", opts.Name, "at", dir)

	return nil
}

// promptBlockOptions fills in missing scaffold options interactively.
func promptBlockOptions(opts *scaffolding.Options) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Block name").
				Description("namespace/block-name, e.g. slabs/hero").
				Value(&opts.Name),
			huh.NewInput().
				Title("Title").
				Description("Human-readable title shown in the editor").
				Value(&opts.Title),
			huh.NewInput().
				Title("Category").
				Value(&opts.Category),
			huh.NewConfirm().
				Title("Create a stylesheet?").
				Value(&opts.WithStyle),
			huh.NewConfirm().
				Title("Create a placeholder preview?").
				Value(&opts.WithPreview),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}

	return nil
}
