package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"out_dir": "dist",
		"theme": "compact",
		"driver": "rod",
		"port": 9090,
		"pdf_timeout": "45s",
		"no_sandbox": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "dist", cfg.OutDir)
	assert.Equal(t, "compact", cfg.Theme)
	assert.Equal(t, "rod", cfg.Driver)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "45s", cfg.PDFTimeout)
	assert.True(t, cfg.NoSandbox)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", "out_dir: build\ntheme: basic\nport: 3000\nverbose: true\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, "basic", cfg.Theme)
	assert.Equal(t, 3000, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", "port: [1, 2\n")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	themesDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "defaults", cfg: Defaults()},
		{name: "existing themes dir", cfg: Config{ThemesDir: themesDir}},
		{name: "unknown driver", cfg: Config{Driver: "selenium"}, wantErr: "'driver' must be one of [chromedp rod]"},
		{name: "port too large", cfg: Config{Port: 70000}, wantErr: "'port' must be between 1 and 65535"},
		{name: "negative port", cfg: Config{Port: -1}, wantErr: "'port' must be between 1 and 65535"},
		{name: "bad duration", cfg: Config{PDFTimeout: "soon"}, wantErr: "'pdf_timeout' is not a valid duration"},
		{name: "zero duration", cfg: Config{PDFTimeout: "0s"}, wantErr: "'pdf_timeout' must be positive"},
		{name: "missing themes dir", cfg: Config{ThemesDir: filepath.Join(themesDir, "nope")}, wantErr: "themes directory not found"},
		{name: "missing schema", cfg: Config{SchemaPath: filepath.Join(themesDir, "schema.json")}, wantErr: "schema file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RESUME_THEME":      "compact",
		"ROD_BROWSER_BIN":   "/usr/bin/chromium",
		"RESUME_NO_SANDBOX": "1",
	}
	cfg := Config{Theme: "basic"}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "compact", cfg.Theme)
	assert.Equal(t, "/usr/bin/chromium", cfg.BrowserBin)
	assert.True(t, cfg.NoSandbox)
}

func TestApplyEnv_PrefersResumeBrowserBin(t *testing.T) {
	env := map[string]string{
		"RESUME_BROWSER_BIN": "/opt/chrome",
		"ROD_BROWSER_BIN":    "/usr/bin/chromium",
		"CI":                 "true",
	}
	var cfg Config
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "/opt/chrome", cfg.BrowserBin)
	assert.True(t, cfg.NoSandbox)
}

func TestApplyEnv_Empty(t *testing.T) {
	cfg := Config{Theme: "basic", NoSandbox: true}
	cfg.ApplyEnv(func(string) string { return "" })

	assert.Equal(t, "basic", cfg.Theme)
	assert.True(t, cfg.NoSandbox)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{OutDir: "dist", Theme: "compact"}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "dist", merged.OutDir)
	assert.Equal(t, "compact", merged.Theme)
	assert.Equal(t, "chromedp", merged.Driver)
	assert.Equal(t, 8080, merged.Port)
	assert.Equal(t, "30s", merged.PDFTimeout)

	// Original untouched
	assert.Empty(t, cfg.Driver)
}

func TestPDFTimeoutDuration(t *testing.T) {
	assert.Equal(t, 45*time.Second, (&Config{PDFTimeout: "45s"}).PDFTimeoutDuration())
	assert.Equal(t, 30*time.Second, (&Config{}).PDFTimeoutDuration())
	assert.Equal(t, 30*time.Second, (&Config{PDFTimeout: "bogus"}).PDFTimeoutDuration())
}
