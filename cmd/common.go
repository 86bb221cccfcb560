package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/renameio"

	"github.com/alde/flatpdf/pkg/converter"
	"github.com/alde/flatpdf/pkg/encode"
	"github.com/alde/flatpdf/pkg/progress"
	"github.com/alde/flatpdf/pkg/quota"
	"github.com/alde/flatpdf/pkg/source"
)

var session converter.Session

// operationContext returns a context cancelled on interrupt or when another
// operation starts.
func operationContext() (context.Context, func()) {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, release := session.Begin(sigCtx)
	return ctx, func() {
		release()
		stop()
	}
}

func newConverter() *converter.Converter {
	var reporter progress.Reporter = progress.Nop{}
	if verbose {
		reporter = progress.NewBar(os.Stdout)
	}
	return converter.New(converter.Options{
		RenderScale: cfg.Merge.RenderScale,
		Search:      cfg.Search.Bisection(),
		SearchScale: cfg.Search.RenderScale,
		WorkerCount: cfg.Search.Workers,
		Encoder:     encode.JPEG{},
		Progress:    reporter,
	})
}

func openStore() (quota.Store, func(), error) {
	switch cfg.Quota.Backend {
	case "memory":
		return quota.NewMemoryStore(), func() {}, nil
	case "redis":
		store, err := quota.NewRedisStore(cfg.Quota.RedisURL, cfg.Quota.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return quota.NewFileStore(cfg.Quota.Path), func() {}, nil
	}
}

func openGuard() (*quota.Guard, func(), error) {
	store, closeStore, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open quota store: %w", err)
	}
	stamper := quota.NewPDFStamper(cfg.Watermark.Label, cfg.Watermark.Mark)
	guard, err := quota.NewGuard(store, stamper, cfg.Quota.FreeExports)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return guard, closeStore, nil
}

// openPDFs loads each path through one PDFium engine. The returned func
// closes the documents and the engine.
func openPDFs(paths []string) ([]source.Document, func(), error) {
	for _, p := range paths {
		if err := validateInputFile(p); err != nil {
			return nil, nil, fmt.Errorf("input validation failed: %w", err)
		}
	}

	engine, err := source.NewEngineSize(len(paths))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start PDF renderer: %w", err)
	}

	var opened []*source.PDFDocument
	cleanup := func() {
		for _, d := range opened {
			d.Close()
		}
		engine.Close()
	}

	docs := make([]source.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		doc, err := engine.Open(p, filepath.Base(p), data)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opened = append(opened, doc)
		docs = append(docs, doc)
	}
	return docs, cleanup, nil
}

// export writes out through the quota guard to outputPath, or to the
// output's own name when outputPath is empty.
func export(ctx context.Context, out *converter.Output, outputPath string) (string, *quota.Export, error) {
	if outputPath == "" {
		outputPath = out.Name
	}
	if err := validateOutputPath(outputPath); err != nil {
		return "", nil, fmt.Errorf("output validation failed: %w", err)
	}

	guard, closeGuard, err := openGuard()
	if err != nil {
		return "", nil, err
	}
	defer closeGuard()

	exp, err := guard.Export(ctx, out.Data, func(data []byte) error {
		return renameio.WriteFile(outputPath, data, 0o644)
	})
	if err != nil {
		return "", nil, err
	}
	return outputPath, exp, nil
}

func validateInputFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return fmt.Errorf("unsupported input format: %s (only .pdf is supported)", ext)
	}

	return nil
}

func validateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", dir)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return fmt.Errorf("unsupported output format: %s (only .pdf is supported)", ext)
	}

	return nil
}

func printSummary(title, path string, stats converter.ConversionStats, exp *quota.Export) {
	fmt.Printf("\n%s completed successfully\n", title)
	fmt.Printf("================================================================\n")
	fmt.Printf("Output:        %s (%s)\n", path, humanize.Bytes(uint64(len(exp.Data))))
	fmt.Printf("Pages:         %d\n", stats.PageCount)
	if stats.InputSize > 0 {
		fmt.Printf("Input size:    %s\n", humanize.Bytes(stats.InputSize))
	}
	if verbose {
		fmt.Printf("Processing:    %v\n", stats.ProcessingTime.Round(time.Millisecond))
	}
	printQuota(exp)
	fmt.Printf("================================================================\n")
}

func printQuota(exp *quota.Export) {
	if exp.Watermarked {
		fmt.Printf("Warning: free exports used up, output is watermarked (export #%s)\n", humanize.Comma(exp.Count))
		return
	}
	remaining := int64(cfg.Quota.FreeExports) - exp.Count
	if remaining < 0 {
		remaining = 0
	}
	fmt.Printf("Free exports:  %d remaining\n", remaining)
}
