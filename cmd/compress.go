package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alde/flatpdf/pkg/converter"
	"github.com/alde/flatpdf/pkg/preset"
)

var (
	compressOutputPath string
	compressPreset     string
	compressTarget     string
)

var compressCmd = &cobra.Command{
	Use:   "compress [input.pdf]",
	Short: "Shrink a PDF with a quality preset or to a target size",
	Long: `Shrink a PDF by rendering its pages and re-encoding them at lower quality.

With --target, pages are rendered once and the highest quality that fits the
target is searched for. If even the lowest quality is too large, the smallest
result is written anyway and a warning is printed.

Examples:
  flatpdf compress scan.pdf --preset low
  flatpdf compress scan.pdf --target 500KB -o scan-small.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runCompress,
}

func init() {
	rootCmd.AddCommand(compressCmd)

	compressCmd.Flags().StringVarP(&compressOutputPath, "output", "o", "", "Output file path (default <name>-compressed.pdf)")
	compressCmd.Flags().StringVar(&compressPreset, "preset", preset.Default, fmt.Sprintf("Quality preset %v", preset.Names()))
	compressCmd.Flags().StringVar(&compressTarget, "target", "", "Target size (e.g., 500KB, 2MB); overrides --preset")
}

func compressOptions() (converter.CompressOptions, error) {
	if compressTarget != "" {
		target, err := humanize.ParseBytes(compressTarget)
		if err != nil {
			return converter.CompressOptions{}, fmt.Errorf("invalid target size %q: %w", compressTarget, err)
		}
		if target == 0 {
			return converter.CompressOptions{}, fmt.Errorf("target size must be positive")
		}
		return converter.CompressOptions{TargetBytes: int64(target)}, nil
	}

	p, err := preset.Get(compressPreset)
	if err != nil {
		return converter.CompressOptions{}, err
	}
	return converter.CompressOptions{Preset: p}, nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	opts, err := compressOptions()
	if err != nil {
		return err
	}

	docs, closeDocs, err := openPDFs(args)
	if err != nil {
		return err
	}
	defer closeDocs()

	ctx, done := operationContext()
	defer done()

	res, err := newConverter().Compress(ctx, docs[0], opts)
	if err != nil {
		return err
	}

	path, exp, err := export(ctx, &res.Output, compressOutputPath)
	if err != nil {
		return err
	}

	printSummary("Compression", path, res.Stats, exp)
	fmt.Printf("Size:          %s -> %s (%d%% smaller)\n",
		humanize.Bytes(uint64(res.SourceSize)), humanize.Bytes(uint64(res.AchievedSize)), res.Savings())
	if verbose {
		fmt.Printf("Quality:       %.2f after %d trial(s)\n", res.Quality, res.Trials)
	}
	if res.Warning != "" {
		fmt.Printf("Warning: %s\n", res.Warning)
	}
	return nil
}
