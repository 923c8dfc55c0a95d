package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-render/internal/theme"
)

var themesCommand = &cobra.Command{
	Use:   "themes",
	Short: "List the themes that can be loaded",
	Long: `Lists built-in themes, script themes found in --themes-dir and
jsonresume-theme-* executables on PATH.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

var themesDir string

func init() {
	themesCommand.Flags().StringVar(&themesDir, "themes-dir", "", "Directory containing script themes")

	rootCmd.AddCommand(themesCommand)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	printer := newPrinter(cmd)
	for _, name := range theme.DefaultRegistry(cfg.ThemesDir).Names() {
		printer.Log(name)
	}
	return nil
}
