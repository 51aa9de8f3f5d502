package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a slabs project",
	Long: `Create a starter .slabs.yml configuration and a blocks directory
in the current working directory.

Examples:
  slabs init            # Create .slabs.yml and ./blocks
  slabs init --force    # Overwrite an existing .slabs.yml`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing .slabs.yml")
}

// starterConfig is the config written by init; field names mirror the
// config package's yaml tags.
type starterConfig struct {
	Blocks struct {
		Root     string   `yaml:"root"`
		MaxDepth int      `yaml:"max_depth"`
		Ignore   []string `yaml:"ignore"`
	} `yaml:"blocks"`
	Registry struct {
		OutFile   string `yaml:"out_file"`
		TypesFile string `yaml:"types_file"`
	} `yaml:"registry"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
}

func runInit(cmd *cobra.Command, args []string) error {
	const configPath = ".slabs.yml"

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	var starter starterConfig
	starter.Blocks.Root = "./blocks"
	starter.Blocks.MaxDepth = 1
	starter.Blocks.Ignore = []string{"node_modules", ".git"}
	starter.Registry.OutFile = "slabs-registry.js"
	starter.Registry.TypesFile = "slabs-registry.d.ts"
	starter.Server.Host = "localhost"
	starter.Server.Port = 7420

	data, err := yaml.Marshal(&starter)
	if err != nil {
		return fmt.Errorf("marshaling starter config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	fmt.Println("Created", configPath)

	if err := os.MkdirAll("blocks", 0o755); err != nil {
		return fmt.Errorf("creating blocks directory: %w", err)
	}
	fmt.Println("Created blocks/")
	fmt.Println()
	fmt.Println("Next: slabs new <namespace>/<block-name>")

	return nil
}
