package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-render/internal/config"
	"github.com/jonathan/resume-render/internal/observability"
	"github.com/jonathan/resume-render/internal/schemas"
)

const defaultResumeFile = "resume.json"

func resumeFile(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return defaultResumeFile
}

// loadSettings resolves the configuration: config file, then environment,
// then flags the user set explicitly, then defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg.ApplyEnv(os.Getenv)

	// Only override if the flag exists on this command and was explicitly set
	overrideString(cmd, "outDir", &cfg.OutDir)
	overrideString(cmd, "theme", &cfg.Theme)
	overrideString(cmd, "themes-dir", &cfg.ThemesDir)
	overrideString(cmd, "driver", &cfg.Driver)
	overrideString(cmd, "browser-bin", &cfg.BrowserBin)
	overrideString(cmd, "schema", &cfg.SchemaPath)
	overrideString(cmd, "pdf-timeout", &cfg.PDFTimeout)
	overrideString(cmd, "log-file", &cfg.LogFile)
	overrideBool(cmd, "no-sandbox", &cfg.NoSandbox)
	overrideBool(cmd, "verbose", &cfg.Verbose)
	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return cfg, err
		}
		cfg.Port = port
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return
	}
	if v, err := cmd.Flags().GetString(name); err == nil {
		*dst = v
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return
	}
	if v, err := cmd.Flags().GetBool(name); err == nil {
		*dst = v
	}
}

func newPrinter(cmd *cobra.Command) *observability.Printer {
	return observability.NewConsolePrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func newLogger(cfg config.Config) *zap.Logger {
	return observability.NewLogger(observability.LoggerOptions{Verbose: cfg.Verbose, File: cfg.LogFile})
}

func newValidator(cfg config.Config) (*schemas.Validator, error) {
	if cfg.SchemaPath != "" {
		return schemas.NewValidatorFromFile(cfg.SchemaPath)
	}
	return schemas.NewValidator()
}
