package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-render/internal/theme"
	"github.com/jonathan/resume-render/internal/types"
)

var initCommand = &cobra.Command{
	Use:   "init [resume.json]",
	Short: "Create a sample resume to start from",
	Long: `Writes the bundled sample resume to the given file (default resume.json).
With --theme, "meta.theme" is set so later renders pick the theme up without flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initTheme     string
	initThemesDir string
	initForce     bool
)

func init() {
	initCommand.Flags().StringVarP(&initTheme, "theme", "t", "", `Theme to record in "meta.theme"`)
	initCommand.Flags().StringVar(&initThemesDir, "themes-dir", "", "Directory containing script themes")
	initCommand.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")

	rootCmd.AddCommand(initCommand)
}

func runInit(cmd *cobra.Command, args []string) error {
	file := resumeFile(args)
	printer := newPrinter(cmd)

	if !initForce {
		if _, err := os.Stat(file); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite it", file)
		}
	}

	resume, err := types.SampleResume()
	if err != nil {
		return err
	}

	if initTheme != "" {
		if _, err := theme.DefaultRegistry(initThemesDir).Load(cmd.Context(), initTheme, resume); err != nil {
			printer.Warn(err)
		}
		resume = resume.WithTheme(initTheme)
	}

	content, err := resume.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to marshal resume: %w", err)
	}
	if err := os.WriteFile(file, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	printer.Success("Created", file)
	return nil
}
