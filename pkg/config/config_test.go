package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Search.Iterations)
	assert.Equal(t, 0.05, cfg.Search.MinQuality)
	assert.Equal(t, 0.95, cfg.Search.MaxQuality)
	assert.Equal(t, 1.5, cfg.Search.RenderScale)
	assert.Equal(t, 2.0, cfg.Merge.RenderScale)
	assert.Equal(t, "a4", cfg.Images.PageSize)
	assert.Equal(t, 36.0, cfg.Images.Margin)
	assert.Equal(t, 5, cfg.Quota.FreeExports)
	assert.Equal(t, "file", cfg.Quota.Backend)
	assert.NotEmpty(t, cfg.Quota.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatpdf.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  iterations: 12
  max_quality: 0.9
images:
  page_size: letter
quota:
  backend: memory
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Search.Iterations)
	assert.Equal(t, 0.9, cfg.Search.MaxQuality)
	assert.Equal(t, 0.05, cfg.Search.MinQuality)
	assert.Equal(t, "letter", cfg.Images.PageSize)
	assert.Equal(t, "memory", cfg.Quota.Backend)
	assert.Equal(t, 0.92, cfg.Images.Quality)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatpdf.yml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unterminated"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FLATPDF_QUOTA_BACKEND":   "redis",
		"FLATPDF_REDIS_URL":       "redis://localhost:6379/0",
		"FLATPDF_FREE_EXPORTS":    "10",
		"FLATPDF_WORKERS":         "4",
		"FLATPDF_WATERMARK_LABEL": "trial copy",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "redis", cfg.Quota.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Quota.RedisURL)
	assert.Equal(t, 10, cfg.Quota.FreeExports)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, "trial copy", cfg.Watermark.Label)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsNonNumeric(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) string {
		if k == "FLATPDF_FREE_EXPORTS" {
			return "many"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLATPDF_TEST_LOADENV=yes\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FLATPDF_TEST_LOADENV") })

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "yes", os.Getenv("FLATPDF_TEST_LOADENV"))
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatpdf.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
merge:
  render_scale: 2.0
  quality: 0.5
`), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality")
}

func TestLoadConfigEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flatpdf.yml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted bounds", func(c *Config) { c.Search.MinQuality = 0.9; c.Search.MaxQuality = 0.1 }},
		{"zero iterations", func(c *Config) { c.Search.Iterations = 0 }},
		{"zero render scale", func(c *Config) { c.Search.RenderScale = 0 }},
		{"merge render scale", func(c *Config) { c.Merge.RenderScale = 0 }},
		{"images page size", func(c *Config) { c.Images.PageSize = "tabloid" }},
		{"images orientation", func(c *Config) { c.Images.Orientation = "diagonal" }},
		{"margin", func(c *Config) { c.Images.Margin = 100 }},
		{"backend", func(c *Config) { c.Quota.Backend = "s3" }},
		{"redis without url", func(c *Config) { c.Quota.Backend = "redis" }},
		{"file without path", func(c *Config) { c.Quota.Path = "" }},
		{"no free exports", func(c *Config) { c.Quota.FreeExports = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
