package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-render/internal/browser"
	"github.com/jonathan/resume-render/internal/observability"
	"github.com/jonathan/resume-render/internal/pipeline"
	"github.com/jonathan/resume-render/internal/preview"
	"github.com/jonathan/resume-render/internal/server"
	"github.com/jonathan/resume-render/internal/theme"
	"github.com/jonathan/resume-render/internal/watch"
)

var renderCommand = &cobra.Command{
	Use:   "render [resume.json]",
	Short: "Render a resume to HTML and PDF",
	Long: `Loads the resume (JSON or YAML), validates it against the JSON Resume schema, renders it
with a theme and exports <outDir>/<name>.html and <outDir>/<name>.pdf.

The theme comes from --theme, or from "meta.theme" in the resume. Built-in themes, Go
script themes in --themes-dir and jsonresume-theme-* executables on PATH are supported.

Configuration can be loaded from a file using --config. Command-line arguments override config file values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	renderOutDir     string
	renderTheme      string
	renderThemesDir  string
	renderWatch      bool
	renderHeadless   bool
	renderPort       int
	renderDriver     string
	renderBrowserBin string
	renderNoSandbox  bool
	renderSchema     string
	renderPDFTimeout string
)

func init() {
	renderCommand.Flags().StringVarP(&renderOutDir, "outDir", "o", ".", "Output directory for the HTML and PDF files")
	renderCommand.Flags().StringVarP(&renderTheme, "theme", "t", "", `Theme name (overrides "meta.theme")`)
	renderCommand.Flags().StringVar(&renderThemesDir, "themes-dir", "", "Directory containing script themes (<name>/theme.go)")
	renderCommand.Flags().BoolVarP(&renderWatch, "watch", "w", false, "Re-render when the resume changes")
	renderCommand.Flags().BoolVar(&renderHeadless, "headless", true, "Run the browser without a window (default: true, false with --watch)")
	renderCommand.Flags().IntVarP(&renderPort, "port", "p", 8080, "Port of the PDF preview server in watch mode")
	renderCommand.Flags().StringVar(&renderDriver, "driver", browser.DriverChromedp, "Browser driver: chromedp or rod")
	renderCommand.Flags().StringVar(&renderBrowserBin, "browser-bin", "", "Chrome/Chromium binary (auto-detected by default)")
	renderCommand.Flags().BoolVar(&renderNoSandbox, "no-sandbox", false, "Disable the Chrome sandbox (needed in most containers)")
	renderCommand.Flags().StringVar(&renderSchema, "schema", "", "Validate against this JSON Schema instead of the bundled one")
	renderCommand.Flags().StringVar(&renderPDFTimeout, "pdf-timeout", "", "Maximum time for a PDF export, e.g. 30s")

	rootCmd.AddCommand(renderCommand)
}

func runRender(cmd *cobra.Command, args []string) error {
	file := resumeFile(args)

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	headless := !renderWatch
	if cmd.Flags().Changed("headless") {
		headless = renderHeadless
	}

	printer := newPrinter(cmd)
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator, err := newValidator(cfg)
	if err != nil {
		return err
	}

	b, err := browser.Launch(ctx, browser.Options{
		Driver:    cfg.Driver,
		Headless:  headless,
		Bin:       cfg.BrowserBin,
		NoSandbox: cfg.NoSandbox,
	})
	if err != nil {
		return err
	}
	logger.Debug("browser launched", zap.String("driver", cfg.Driver), zap.Strings("args", b.Args()))

	session := preview.NewSession(b, preview.Config{
		PDFTimeout: cfg.PDFTimeoutDuration(),
		Printer:    printer,
		Logger:     logger,
	})

	renderer, err := pipeline.New(pipeline.Options{
		File:        file,
		OutDir:      cfg.OutDir,
		Theme:       cfg.Theme,
		KeepOpen:    renderWatch,
		Interactive: true,
	}, session, theme.DefaultRegistry(cfg.ThemesDir), validator, printer,
		pipeline.WithPrinter(printer), pipeline.WithLogger(logger))
	if err != nil {
		_ = session.Close()
		return err
	}

	_, renderErr := renderer.Render(ctx)

	if !renderWatch {
		if renderErr != nil {
			// Render leaves the browser open on failure
			_ = session.Close()
			return &reportedError{err: renderErr}
		}
		return nil
	}

	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("failed to close browser", zap.Error(err))
		}
	}()

	return runWatch(ctx, file, cfg.OutDir, cfg.Port, renderer, session, renderErr == nil, printer, logger)
}

func runWatch(ctx context.Context, file, outDir string, port int, renderer *pipeline.Renderer,
	session *preview.Session, rendered bool, printer *observability.Printer, logger *zap.Logger) error {
	var openURL string
	if !session.IsHeadless() {
		srv := server.New(server.Config{Dir: outDir, Port: port}, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("preview server shutdown failed", zap.Error(err))
			}
		}()

		openURL = srv.URL(renderer.Name() + ".pdf")
		if rendered {
			if err := session.AddMenu(ctx, openURL); err != nil {
				printer.Warn("failed to add preview menu:", err)
			}
		}
	}

	source, err := watch.NewFileSource(file)
	if err != nil {
		return err
	}
	defer source.Close()

	printer.Dim("Watching " + file + " for changes. Press Ctrl+C to stop.")

	loop := watch.NewLoop(source, renderer, session, openURL,
		watch.WithPrinter(printer), watch.WithLogger(logger))
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
