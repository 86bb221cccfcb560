package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mergeOutputPath string

var mergeCmd = &cobra.Command{
	Use:   "merge [file1.pdf] [file2.pdf] [more.pdf...]",
	Short: "Merge PDFs into one, in the order given",
	Long: `Merge two or more PDFs into a single document. Every page is rendered and
re-encoded at a fixed high quality, so mixed page sizes are kept as they are.

Examples:
  flatpdf merge cover.pdf body.pdf appendix.pdf
  flatpdf merge a.pdf b.pdf -o combined.pdf`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&mergeOutputPath, "output", "o", "", "Output file path (default merged-document.pdf)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	docs, closeDocs, err := openPDFs(args)
	if err != nil {
		return err
	}
	defer closeDocs()

	ctx, done := operationContext()
	defer done()

	if verbose {
		fmt.Printf("Merging %d documents\n", len(docs))
	}

	out, err := newConverter().Merge(ctx, docs)
	if err != nil {
		return err
	}

	path, exp, err := export(ctx, out, mergeOutputPath)
	if err != nil {
		return err
	}

	printSummary("Merge", path, out.Stats, exp)
	return nil
}
