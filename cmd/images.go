package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alde/flatpdf/pkg/converter"
	"github.com/alde/flatpdf/pkg/layout"
)

var (
	imagesOutputPath  string
	imagesPageSize    string
	imagesOrientation string
	imagesMargin      float64
	imagesQuality     float64
)

var imagesCmd = &cobra.Command{
	Use:   "images [image[:edits]...]",
	Short: "Combine images into a PDF, one image per page",
	Long: `Combine images into a PDF, one image per page, in the order given.

Each image may carry edits after a colon, as comma separated key=value pairs:
  rotate=0|90|180|270   flip=h|v|hv          brightness=20..200
  contrast=20..200      scale=10..200        fit=contain|cover|stretch
  orientation=auto|portrait|landscape        page=a4|letter|fit

Examples:
  flatpdf images a.jpg b.png c.webp
  flatpdf images receipt.jpg:rotate=90,contrast=140 photo.png:page=fit
  flatpdf images *.jpg --page-size letter --margin 18`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImages,
}

func init() {
	rootCmd.AddCommand(imagesCmd)

	imagesCmd.Flags().StringVarP(&imagesOutputPath, "output", "o", "", "Output file path (default images-to-pdf.pdf)")
	imagesCmd.Flags().StringVar(&imagesPageSize, "page-size", "", "Page size (a4, letter, fit); default from config")
	imagesCmd.Flags().StringVar(&imagesOrientation, "orientation", "", "Page orientation (auto, portrait, landscape); default from config")
	imagesCmd.Flags().Float64Var(&imagesMargin, "margin", -1, "Margin in points (0-72); default from config")
	imagesCmd.Flags().Float64Var(&imagesQuality, "quality", 0, "JPEG quality (0-1]; default from config")
}

func imageOptions() (converter.ImageOptions, error) {
	opts := converter.ImageOptions{
		Quality: cfg.Images.Quality,
		Margin:  cfg.Images.Margin,
	}

	pageSize := cfg.Images.PageSize
	if imagesPageSize != "" {
		pageSize = imagesPageSize
	}
	ps, err := layout.ParsePageSize(pageSize)
	if err != nil {
		return opts, err
	}
	opts.PageSize = ps

	orientation := cfg.Images.Orientation
	if imagesOrientation != "" {
		orientation = imagesOrientation
	}
	o, err := layout.ParseOrientation(orientation)
	if err != nil {
		return opts, err
	}
	opts.Orientation = o

	if imagesMargin >= 0 {
		opts.Margin = imagesMargin
	}
	if opts.Margin > layout.MaxMargin {
		return opts, fmt.Errorf("margin %v out of range (0-%v)", opts.Margin, layout.MaxMargin)
	}
	if imagesQuality != 0 {
		if imagesQuality < 0 || imagesQuality > 1 {
			return opts, fmt.Errorf("quality %v out of range (0-1]", imagesQuality)
		}
		opts.Quality = imagesQuality
	}
	return opts, nil
}

// splitImageArg separates "path:key=value,..." into the path and its edits.
// A colon only starts edits when an "=" follows it.
func splitImageArg(arg string) (string, string) {
	i := strings.LastIndex(arg, ":")
	if i <= 0 || !strings.Contains(arg[i+1:], "=") {
		return arg, ""
	}
	return arg[:i], arg[i+1:]
}

// applyEdits parses edits onto the default edit state.
func applyEdits(edits string) (converter.EditState, layout.PageSize, error) {
	state := converter.DefaultEditState()
	pageSize := layout.PageSizeUnset
	if edits == "" {
		return state, pageSize, nil
	}

	for _, kv := range strings.Split(edits, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			return state, pageSize, fmt.Errorf("invalid edit %q (want key=value)", kv)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))

		var err error
		switch key {
		case "rotate":
			state.Transform.Rotation, err = strconv.Atoi(value)
		case "flip":
			state.Transform.FlipH = strings.Contains(value, "h")
			state.Transform.FlipV = strings.Contains(value, "v")
			if strings.Trim(value, "hv") != "" {
				err = fmt.Errorf("flip must be h, v or hv")
			}
		case "brightness":
			state.Transform.BrightnessPct, err = strconv.Atoi(value)
		case "contrast":
			state.Transform.ContrastPct, err = strconv.Atoi(value)
		case "scale":
			state.ScalePercent, err = strconv.Atoi(value)
		case "fit":
			state.Fit, err = layout.ParseFitMode(value)
		case "orientation":
			state.Orientation, err = layout.ParseOrientation(value)
		case "page":
			pageSize, err = layout.ParsePageSize(value)
		default:
			err = fmt.Errorf("unknown edit")
		}
		if err != nil {
			return state, pageSize, fmt.Errorf("invalid edit %q: %w", kv, err)
		}
	}

	if err := state.Validate(); err != nil {
		return state, pageSize, err
	}
	return state, pageSize, nil
}

func runImages(cmd *cobra.Command, args []string) error {
	opts, err := imageOptions()
	if err != nil {
		return err
	}

	var list converter.ImageList
	for _, arg := range args {
		path, edits := splitImageArg(arg)
		state, pageSize, err := applyEdits(edits)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		asset, err := list.Add(path, data)
		if err != nil {
			return err
		}
		if err := list.SetEdit(asset.ID, state); err != nil {
			return err
		}
		if err := list.SetPageSize(asset.ID, pageSize); err != nil {
			return err
		}

		if verbose {
			fmt.Printf("Added %s (%dx%d)\n", path, asset.NaturalWidth, asset.NaturalHeight)
		}
	}

	ctx, done := operationContext()
	defer done()

	out, err := newConverter().Images(ctx, list.Assets(), opts)
	if err != nil {
		return err
	}

	path, exp, err := export(ctx, out, imagesOutputPath)
	if err != nil {
		return err
	}

	printSummary("Image conversion", path, out.Stats, exp)
	return nil
}
