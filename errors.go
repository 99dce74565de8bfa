package certpress

import "errors"

// Sentinel errors for generation jobs. Lower packages keep their own
// sentinels; Generator wraps them with one of these.
var (
	ErrMissingInput     = errors.New("missing input")
	ErrMalformedInput   = errors.New("malformed input")
	ErrRenderFailure    = errors.New("certificate rendering failed")
	ErrConversionFailed = errors.New("document conversion failed")
	ErrFileSystem       = errors.New("file system error")
	ErrJobRunning       = errors.New("a generation job is already running")

	// Browser errors, wrapped by ErrConversionFailed.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	ErrInvalidAssetPath = errors.New("invalid asset path")
)
