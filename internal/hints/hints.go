// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-certpress/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the rod environment variables that usually fix
// a browser that will not start. getenv is os.Getenv in production.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	inCI := getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the conversion timeout.
func ForTimeout() string {
	return format("for large batches, raise conversion.timeout in the config")
}

// ForConfigNotFound points at --config and the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/certpress/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForTemplate returns hints for an unreadable certificate template.
func ForTemplate() string {
	return format("set template.path or CERTPRESS_TEMPLATE to a JPEG or PNG image")
}

// ForInput returns hints for missing or unreadable spreadsheets.
func ForInput() string {
	return format("pass both --roster and --results as XLSX or CSV files with a header row")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
