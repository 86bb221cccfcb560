package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.pdf]",
	Short: "Print page count and page sizes of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := validateInputFile(path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	model.ConfigPath = "disable"
	conf := model.NewDefaultConfiguration()

	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("failed to read page sizes: %w", err)
	}

	fmt.Printf("File:          %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
	fmt.Printf("Pages:         %d\n", len(dims))
	for i, d := range dims {
		fmt.Printf("  Page %d: %.1f x %.1f pt\n", i+1, d.Width, d.Height)
	}
	return nil
}
