// Package cmd provides the command-line interface for slabs.
//
// Configuration sources, in precedence order:
//  1. Command-line flags (--config, --root, ...)
//  2. SLABS_CONFIG_FILE environment variable (custom config file path)
//  3. Individual environment variables (SLABS_BLOCKS_ROOT, SLABS_SERVER_PORT, ...)
//  4. .slabs.yml in the current directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "slabs",
	Short: "Content-block authoring toolkit",
	Long: `Slabs is a content-block authoring toolkit for web CMS projects.

It scaffolds block folders, validates them against the block.json contract,
scans a project for blocks, and generates the virtual:slabs-registry module
(and its TypeScript declarations) that bundlers and editor tooling consume.

Quick Start:
  slabs init                      Initialize a project config and blocks dir
  slabs new slabs/hero            Scaffold a new block
  slabs list                      List discovered blocks
  slabs validate                  Validate all block folders
  slabs generate                  Write the registry module and declarations
  slabs watch                     Rescan and regenerate on file changes
  slabs serve                     Dev server with live reload

Command Aliases:
  new (n), list (l), validate (v), generate (g), watch (w), serve (s)`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .slabs.yml, or SLABS_CONFIG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("root", "", "blocks root directory (overrides config)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("blocks.root", rootCmd.PersistentFlags().Lookup("root"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SLABS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slabs")
	}

	viper.SetEnvPrefix("SLABS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files degrade to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the logger commands share, honoring the configured level.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: "text",
		Output: os.Stderr,
	})
}
