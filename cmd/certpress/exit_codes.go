package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/alnah/go-certpress"
	"github.com/alnah/go-certpress/internal/certificate"
	"github.com/alnah/go-certpress/internal/config"
	"github.com/alnah/go-certpress/internal/hints"
)

// Exit codes for the certpress CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Job or command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, template or assets
	ExitIO      = 3 // Missing or malformed input, file system errors
	ExitBrowser = 4 // Browser/conversion errors
)

// ErrUsage marks command line mistakes reported by cobra.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, certpress.ErrConversionFailed) ||
		errors.Is(err, certpress.ErrBrowserConnect) ||
		errors.Is(err, certpress.ErrPageCreate) ||
		errors.Is(err, certpress.ErrPageLoad) ||
		errors.Is(err, certpress.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) ||
		errors.Is(err, config.ErrUnknownFormat) ||
		errors.Is(err, certificate.ErrTemplate) ||
		errors.Is(err, certpress.ErrInvalidAssetPath) {
		return ExitUsage
	}

	// Input and I/O errors (exit 3)
	if errors.Is(err, certpress.ErrMissingInput) ||
		errors.Is(err, certpress.ErrMalformedInput) ||
		errors.Is(err, certpress.ErrFileSystem) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns a follow-up hint for errors the user can fix, or "".
// Browser and timeout hints are already part of the error text.
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		var paths []string
		if dir, derr := os.UserConfigDir(); derr == nil {
			paths = append(paths, filepath.Join(dir, "certpress", "certpress.yaml"))
		}
		return hints.ForConfigNotFound(paths)
	case errors.Is(err, certificate.ErrTemplate):
		return hints.ForTemplate()
	case errors.Is(err, certpress.ErrMissingInput):
		return hints.ForInput()
	default:
		return ""
	}
}
