package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdf-qa-gen/frontend/internal/client"
	"github.com/pdf-qa-gen/frontend/internal/config"
	"github.com/pdf-qa-gen/frontend/internal/export"
	"github.com/pdf-qa-gen/frontend/internal/models"
	"github.com/pdf-qa-gen/frontend/internal/present"
	"github.com/pdf-qa-gen/frontend/internal/selector"
	"github.com/pdf-qa-gen/frontend/internal/upload"
)

// Exit codes
const (
	exitComplete = 0
	exitError    = 1
	exitUsage    = 2
)

type options struct {
	Backend    string
	ExportDir  string
	ConfigPath string
	Path       string
}

// parseFlags reads the command line. Backend falls back to the config file,
// then BACKEND_URL, then the built-in default.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("pdfqa", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pdfqa [-backend URL] [-export DIR] [-config FILE] file.pdf")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.Backend, "backend", "", "question-generation backend base URL")
	fs.StringVar(&opts.ExportDir, "export", "", "write questions.json into this directory on success")
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch fs.NArg() {
	case 0:
		fs.Usage()
		return options{}, errors.New("a PDF path is required")
	case 1:
		opts.Path = fs.Arg(0)
	default:
		return options{}, fmt.Errorf("exactly one file can be submitted, got %d", fs.NArg())
	}

	return opts, nil
}

func loadConfig(opts options) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadConfig(opts.ConfigPath)
	} else {
		cfg, err = config.FromEnvironment()
	}
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Backend.BaseURL = opts.Backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// run selects, submits and reports one PDF and returns the process exit code.
func run(ctx context.Context, opts options, cfg *config.AppConfig, stdout, stderr io.Writer, logger *slog.Logger) int {
	candidate, err := selector.FromPath(opts.Path)
	if err != nil {
		fmt.Fprintf(stderr, "pdfqa: %v\n", err)
		return exitUsage
	}

	file, err := selector.Select([]selector.File{candidate}, false)
	if err != nil {
		if rej, ok := selector.AsRejection(err); ok {
			fmt.Fprintln(stderr, rej.Message())
			return exitUsage
		}
		fmt.Fprintf(stderr, "pdfqa: %v\n", err)
		return exitUsage
	}

	controller := upload.NewController(client.New(cfg.Backend.BaseURL, client.WithLogger(logger)), logger)

	updates, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	done, err := controller.Submit(ctx, file)
	if err != nil {
		fmt.Fprintf(stderr, "pdfqa: %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "Submitting %s (%d bytes)\n", file.Name, file.Size)

	var last models.Progress
wait:
	for {
		select {
		case snap := <-updates:
			p := snap.Progress
			// once when processing starts and once when the upload is through
			if p.Status == models.StateProcessing &&
				(last.Status != p.Status || (p.UploadProgress == 100 && last.UploadProgress != 100)) {
				present.Render(stdout, p)
			}
			last = p
		case <-done:
			break wait
		}
	}

	snap := controller.Snapshot()
	present.Render(stdout, snap.Progress)

	switch snap.Status {
	case models.StateComplete:
		fmt.Fprintf(stdout, "\nGenerated %d questions:\n", len(snap.Questions))
		for i, q := range snap.Questions {
			fmt.Fprintf(stdout, "%d. %s\n", i+1, q)
		}
		if opts.ExportDir != "" {
			path, err := export.WriteFile(opts.ExportDir, snap.Questions)
			if err != nil {
				fmt.Fprintf(stderr, "pdfqa: export failed: %v\n", err)
				return exitError
			}
			fmt.Fprintf(stdout, "\nExported to %s\n", path)
		}
		return exitComplete
	case models.StateError:
		details := models.ErrorDetails{Message: models.UnknownErrorMessage, RequestID: models.NoRequestID}
		if snap.Error != nil && !snap.Error.IsZero() {
			details = *snap.Error
		}
		fmt.Fprintf(stderr, "\nERROR: %s\nRequest ID: %s\n", details.Message, details.RequestID)
		return exitError
	default:
		fmt.Fprintf(stderr, "pdfqa: submission ended in state %s\n", snap.Status)
		return exitError
	}
}
