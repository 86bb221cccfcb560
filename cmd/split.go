package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alde/flatpdf/pkg/converter"
)

var (
	splitOutputPath string
	splitPages      string
	splitInvert     bool
)

var splitCmd = &cobra.Command{
	Use:   "split [input.pdf]",
	Short: "Extract selected pages into a new PDF",
	Long: `Extract selected pages of a PDF into a new document. Pages always come out
in their original order, whatever order the ranges are written in.

Examples:
  flatpdf split report.pdf --pages "1,3"
  flatpdf split report.pdf --pages "2-4" --invert -o without-2-4.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVarP(&splitOutputPath, "output", "o", "", "Output file path (default <name>-pages-<n>.pdf)")
	splitCmd.Flags().StringVar(&splitPages, "pages", "", "Page ranges to keep (e.g., \"1-3,5\"); all pages when empty")
	splitCmd.Flags().BoolVar(&splitInvert, "invert", false, "Keep the pages not named by --pages")
}

func runSplit(cmd *cobra.Command, args []string) error {
	docs, closeDocs, err := openPDFs(args)
	if err != nil {
		return err
	}
	defer closeDocs()
	doc := docs[0]

	sel := converter.NewSelection(doc.PageCount())
	if splitPages != "" {
		sel, err = converter.SelectionFromRanges(splitPages, doc.PageCount())
		if err != nil {
			return fmt.Errorf("invalid page selection: %w", err)
		}
	}
	if splitInvert {
		sel.Invert()
	}

	if verbose {
		fmt.Printf("Keeping pages %s of %d\n", sel, doc.PageCount())
	}

	ctx, done := operationContext()
	defer done()

	out, err := newConverter().Split(ctx, doc, sel)
	if err != nil {
		return err
	}

	path, exp, err := export(ctx, out, splitOutputPath)
	if err != nil {
		return err
	}

	printSummary("Split", path, out.Stats, exp)
	return nil
}
