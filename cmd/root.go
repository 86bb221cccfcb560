package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alde/flatpdf/pkg/config"
)

var (
	verbose    bool
	configPath string
	envFile    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "flatpdf",
	Short: "Merge, split, compress and assemble PDFs by flattening pages to images",
	Long: `flatpdf rebuilds documents page by page: every page is rendered to pixels,
re-encoded as JPEG and placed into a fresh PDF.

Currently supports:
- Merging several PDFs into one
- Splitting selected pages out of a PDF
- Compressing a PDF with a preset or to a target size
- Turning a list of images into a PDF with per-image edits`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file with FLATPDF_* overrides")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	if err := loaded.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded
	return nil
}
