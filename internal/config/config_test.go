package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("base-url", DefaultBaseURL, "")
	fs.String("output-dir", DefaultOutputDir, "")
	fs.Int("concurrency", 1, "")
	fs.Duration("timeout", 30*time.Second, "")
	fs.String("log-level", "info", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultIndexPath, cfg.IndexPath)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://wdfw.wa.gov/hunting/management/game-harvest", cfg.IndexURL())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://file.example.gov
output_dir: from-file
concurrency: 2
timeout: 45s
log:
  level: debug
`), 0644))

	t.Setenv("HARVEST_OUTPUT_DIR", "from-env")
	t.Setenv("HARVEST_LOG_LEVEL", "warn")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--concurrency", "6"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.gov", cfg.BaseURL, "file overrides default")
	assert.Equal(t, "from-env", cfg.OutputDir, "env overrides file")
	assert.Equal(t, "warn", cfg.Log.Level, "nested keys read from env")
	assert.Equal(t, 6, cfg.Concurrency, "flag overrides file")
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoad_DiscoversLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harvest.yaml"), []byte("output_dir: local-out\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "local-out", cfg.OutputDir)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [unterminated\n"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestIndexURL(t *testing.T) {
	cfg := &Config{BaseURL: "https://wdfw.wa.gov", IndexPath: "/hunting/harvest"}
	assert.Equal(t, "https://wdfw.wa.gov/hunting/harvest", cfg.IndexURL())

	cfg.IndexPath = "https://mirror.example.org/harvest"
	assert.Equal(t, "https://mirror.example.org/harvest", cfg.IndexURL())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BaseURL:     DefaultBaseURL,
			OutputDir:   DefaultOutputDir,
			Timeout:     time.Second,
			Concurrency: 1,
			Format:      "json",
			Log:         LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"markdown format", func(c *Config) { c.Format = "Markdown" }, false},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"empty output dir", func(c *Config) { c.OutputDir = " " }, true},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestYAML(t *testing.T) {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		IndexPath:   DefaultIndexPath,
		OutputDir:   "out",
		Timeout:     90 * time.Second,
		Concurrency: 3,
		Format:      "text",
		Log:         LogConfig{Level: "debug"},
	}

	data, err := cfg.YAML()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "out", decoded["output_dir"])
	assert.Equal(t, "1m30s", decoded["timeout"])
	assert.Equal(t, 3, decoded["concurrency"])
	assert.NotContains(t, decoded, "sort")
	assert.Equal(t, map[string]interface{}{"level": "debug"}, decoded["log"])
}
