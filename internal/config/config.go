// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Output
	OutDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"` // Directory for the HTML and PDF files

	// Themes
	Theme     string `json:"theme,omitempty" yaml:"theme,omitempty"`           // Theme name, overrides meta.theme
	ThemesDir string `json:"themes_dir,omitempty" yaml:"themes_dir,omitempty"` // Directory of script themes

	// Validation
	SchemaPath string `json:"schema_path,omitempty" yaml:"schema_path,omitempty"` // Custom JSON Schema, defaults to the bundled one

	// Browser
	Driver     string `json:"driver,omitempty" yaml:"driver,omitempty" validate:"omitempty,oneof=chromedp rod"`
	BrowserBin string `json:"browser_bin,omitempty" yaml:"browser_bin,omitempty"` // Chrome/Chromium binary
	NoSandbox  bool   `json:"no_sandbox,omitempty" yaml:"no_sandbox,omitempty"`   // Required in most containers
	PDFTimeout string `json:"pdf_timeout,omitempty" yaml:"pdf_timeout,omitempty"` // e.g. "30s"

	// Preview
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"` // File server port in watch mode

	// Diagnostics
	Verbose bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// Defaults returns the values used when neither the config file nor flags set a field.
func Defaults() Config {
	return Config{
		OutDir:     ".",
		Driver:     "chromedp",
		PDFTimeout: "30s",
		Port:       8080,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the config file key rather than the Go field name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since every field has a default.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.PDFTimeout != "" {
		d, err := time.ParseDuration(c.PDFTimeout)
		if err != nil {
			return fmt.Errorf("config error: 'pdf_timeout' is not a valid duration: %q", c.PDFTimeout)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'pdf_timeout' must be positive")
		}
	}

	if c.ThemesDir != "" {
		if info, err := os.Stat(c.ThemesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: themes directory not found: %s", c.ThemesDir)
		}
	}

	if c.SchemaPath != "" {
		if _, err := os.Stat(c.SchemaPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: schema file not found: %s", c.SchemaPath)
		}
	}

	return nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("config error: '%s' must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Errorf("config error: '%s' must be between 1 and 65535", fe.Field())
	default:
		return fmt.Errorf("config error: '%s' failed %q validation", fe.Field(), fe.Tag())
	}
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
//
//	RESUME_THEME        theme name
//	RESUME_BROWSER_BIN  browser binary (ROD_BROWSER_BIN is honoured as a fallback)
//	RESUME_NO_SANDBOX   disable the Chrome sandbox
//	CI                  "true" also disables the sandbox
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("RESUME_THEME"); v != "" {
		c.Theme = v
	}

	if v := getenv("RESUME_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	} else if v := getenv("ROD_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}

	if v, err := strconv.ParseBool(getenv("RESUME_NO_SANDBOX")); err == nil {
		c.NoSandbox = v
	}
	if getenv("CI") == "true" {
		c.NoSandbox = true
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	if result.Theme == "" {
		result.Theme = defaults.Theme
	}
	if result.ThemesDir == "" {
		result.ThemesDir = defaults.ThemesDir
	}
	if result.SchemaPath == "" {
		result.SchemaPath = defaults.SchemaPath
	}
	if result.Driver == "" {
		result.Driver = defaults.Driver
	}
	if result.BrowserBin == "" {
		result.BrowserBin = defaults.BrowserBin
	}
	if result.PDFTimeout == "" {
		result.PDFTimeout = defaults.PDFTimeout
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// PDFTimeoutDuration parses PDFTimeout, falling back to the default when unset or invalid.
func (c *Config) PDFTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.PDFTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(Defaults().PDFTimeout)
	return d
}
