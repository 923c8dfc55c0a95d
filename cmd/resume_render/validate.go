package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-render/internal/types"
)

var validateCommand = &cobra.Command{
	Use:   "validate [resume.json]",
	Short: "Validate a resume against the JSON Resume schema",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

var validateSchema string

func init() {
	validateCommand.Flags().StringVar(&validateSchema, "schema", "", "Validate against this JSON Schema instead of the bundled one")

	rootCmd.AddCommand(validateCommand)
}

func runValidate(cmd *cobra.Command, args []string) error {
	file := resumeFile(args)

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	printer := newPrinter(cmd)

	validator, err := newValidator(cfg)
	if err != nil {
		return err
	}

	resume, err := types.LoadResume(file)
	if err != nil {
		printer.Error(err)
		return &reportedError{err: err}
	}
	if err := validator.Validate(resume); err != nil {
		printer.Error(err)
		return &reportedError{err: err}
	}

	printer.Success(file, "is a valid resume")
	return nil
}
