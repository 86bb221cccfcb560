// Package config loads flatpdf.yml and environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alde/flatpdf/pkg/layout"
	"github.com/alde/flatpdf/pkg/search"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "flatpdf.yml"

type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Merge     MergeConfig     `yaml:"merge"`
	Images    ImagesConfig    `yaml:"images"`
	Quota     QuotaConfig     `yaml:"quota"`
	Watermark WatermarkConfig `yaml:"watermark"`
}

type SearchConfig struct {
	Iterations  int     `yaml:"iterations"`
	MinQuality  float64 `yaml:"min_quality"`
	MaxQuality  float64 `yaml:"max_quality"`
	Step        float64 `yaml:"step"`
	RenderScale float64 `yaml:"render_scale"`
	Workers     int     `yaml:"workers"`
}

// MergeConfig also applies to split. Their encode quality is fixed.
type MergeConfig struct {
	RenderScale float64 `yaml:"render_scale"`
}

type ImagesConfig struct {
	Quality     float64 `yaml:"quality"`
	PageSize    string  `yaml:"page_size"`
	Orientation string  `yaml:"orientation"`
	Margin      float64 `yaml:"margin"`
}

type QuotaConfig struct {
	FreeExports int    `yaml:"free_exports"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type WatermarkConfig struct {
	Label string `yaml:"label"`
	Mark  string `yaml:"mark"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sc := search.DefaultConfig()
	return &Config{
		Search: SearchConfig{
			Iterations:  sc.Iterations,
			MinQuality:  sc.MinQuality,
			MaxQuality:  sc.MaxQuality,
			Step:        sc.Step,
			RenderScale: 1.5,
			Workers:     1,
		},
		Merge: MergeConfig{
			RenderScale: 2.0,
		},
		Images: ImagesConfig{
			Quality:     0.92,
			PageSize:    "a4",
			Orientation: "auto",
			Margin:      36,
		},
		Quota: QuotaConfig{
			FreeExports: 5,
			Backend:     "file",
			Path:        defaultQuotaPath(),
			RedisPrefix: "flatpdf",
		},
		Watermark: WatermarkConfig{
			Label: "flatpdf",
			Mark:  "flatpdf",
		},
	}
}

func defaultQuotaPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "flatpdf", "quota.json")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "flatpdf", "quota.json")
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(file))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// LoadEnv loads .env files into the process environment. Missing files are
// ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from FLATPDF_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("FLATPDF_QUOTA_BACKEND"); v != "" {
		c.Quota.Backend = v
	}
	if v := getenv("FLATPDF_QUOTA_PATH"); v != "" {
		c.Quota.Path = v
	}
	if v := getenv("FLATPDF_REDIS_URL"); v != "" {
		c.Quota.RedisURL = v
	}
	if v := getenv("FLATPDF_FREE_EXPORTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FLATPDF_FREE_EXPORTS %q: %w", v, err)
		}
		c.Quota.FreeExports = n
	}
	if v := getenv("FLATPDF_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FLATPDF_WORKERS %q: %w", v, err)
		}
		c.Search.Workers = n
	}
	if v := getenv("FLATPDF_WATERMARK_LABEL"); v != "" {
		c.Watermark.Label = v
	}
	return nil
}

// Bisection returns the search bounds.
func (c SearchConfig) Bisection() search.Config {
	return search.Config{
		Iterations: c.Iterations,
		MinQuality: c.MinQuality,
		MaxQuality: c.MaxQuality,
		Step:       c.Step,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Search.Bisection().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Search.RenderScale <= 0 {
		return fmt.Errorf("search: render_scale must be positive, got %g", c.Search.RenderScale)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search: workers must not be negative, got %d", c.Search.Workers)
	}
	if c.Merge.RenderScale <= 0 {
		return fmt.Errorf("merge: render_scale must be positive, got %g", c.Merge.RenderScale)
	}
	if err := checkQuality(c.Images.Quality); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	if _, err := layout.ParsePageSize(c.Images.PageSize); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	if _, err := layout.ParseOrientation(c.Images.Orientation); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	if c.Images.Margin < 0 || c.Images.Margin > layout.MaxMargin {
		return fmt.Errorf("images: margin must be between 0 and %g, got %g", layout.MaxMargin, c.Images.Margin)
	}
	if c.Quota.FreeExports < 1 {
		return fmt.Errorf("quota: free_exports must be at least 1, got %d", c.Quota.FreeExports)
	}
	switch c.Quota.Backend {
	case "memory":
	case "file":
		if c.Quota.Path == "" {
			return errors.New("quota: path is required for the file backend")
		}
	case "redis":
		if c.Quota.RedisURL == "" {
			return errors.New("quota: redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("quota: unknown backend %q (use file, redis or memory)", c.Quota.Backend)
	}
	return nil
}

func checkQuality(q float64) error {
	if q <= 0 || q > 1 {
		return fmt.Errorf("quality must be in (0, 1], got %g", q)
	}
	return nil
}
