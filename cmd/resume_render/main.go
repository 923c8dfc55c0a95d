// Package main provides the entry point for the resume_render CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_render",
	Short: "Render JSON Resume documents to HTML and PDF",
	Long: `resume_render turns a JSON Resume document into <name>.html and <name>.pdf using a
headless Chromium browser and a theme.

Run without a subcommand to render. With --watch the resume is re-rendered on every save
and a visible browser shows the result, with a button that opens the PDF in a new tab.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	verbose    bool
	logFile    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON diagnostics to this file (rotated)")
}

// reportedError marks an error that has already been shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// withDefaultCommand inserts "render" when no subcommand is named.
func withDefaultCommand(args []string) []string {
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "help", "--version":
			return args
		}
	}
	cmd, _, err := rootCmd.Find(args)
	if err == nil && cmd != rootCmd {
		return args
	}
	return append([]string{renderCommand.Name()}, args...)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.SetArgs(withDefaultCommand(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
