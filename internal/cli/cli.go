package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/courseforge/adaptivity/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("adaptivity", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Adaptivity - diagnostics for adaptive lesson pages.

Usage:
  adaptivity [options] [LESSON_PATH]

Arguments:
  LESSON_PATH
    Path to a single lesson .json file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	lessonFlag := flagSet.String("lesson", "", "Path to the lesson file or directory.")
	lFlag := flagSet.String("l", "", "Path to the lesson file or directory (shorthand).")
	dataDirFlag := flagSet.String("data-dir", "", "Directory for the replay session's visit-history database. Empty disables persistence.")
	sectionFlag := flagSet.String("section", "", "Course section slug addressed by state writes.")
	previewFlag := flagSet.Bool("preview", false, "Replay each lesson in a preview session, skipping writes to the state service.")
	stateURLFlag := flagSet.String("state-url", "", "Base URL of the state service, e.g. https://lms.example.edu. Enables live writes during replay.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *lessonFlag != "" {
		path = *lessonFlag
	} else if *lFlag != "" {
		path = *lFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Lesson path determined.", "path", path)

	if path == "" {
		slog.Debug("No lesson path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		LessonPath:      path,
		DataDir:         *dataDirFlag,
		SectionSlug:     *sectionFlag,
		StateURL:        *stateURLFlag,
		Preview:         *previewFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
