// Package workspace owns the intake and output folders used by a generation job.
//
// Every artifact path handed to the pipeline comes from Resolve, so no
// component writes outside the two configured roots.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// dirPermissions is rwxr-x---: owner full, group read+execute.
const dirPermissions = 0o750

// Sentinel errors for workspace operations.
var (
	ErrUnknownFolder = errors.New("unknown workspace folder")
	ErrPathEscape    = errors.New("file name escapes workspace folder")
	ErrFileSystem    = errors.New("workspace file system error")
)

// Folder identifies one of the two workspace roots.
type Folder int

const (
	Intake Folder = iota // uploaded spreadsheets
	Output               // certificates, document and PDF
)

func (f Folder) String() string {
	switch f {
	case Intake:
		return "intake"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("folder(%d)", int(f))
	}
}

// Workspace resolves paths inside the intake and output roots.
type Workspace struct {
	intake string
	output string
	logger *log.Logger
}

// New creates a Workspace. A nil logger discards clear diagnostics.
func New(intakeDir, outputDir string, logger *log.Logger) *Workspace {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Workspace{
		intake: filepath.Clean(intakeDir),
		output: filepath.Clean(outputDir),
		logger: logger,
	}
}

// Root returns the directory backing a folder.
func (w *Workspace) Root(folder Folder) (string, error) {
	switch folder {
	case Intake:
		return w.intake, nil
	case Output:
		return w.output, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFolder, folder)
	}
}

// Resolve joins filename onto the folder root.
// The name must be a single flat component; anything that would leave
// the root (separators, "..", empty) returns ErrPathEscape.
func (w *Workspace) Resolve(folder Folder, filename string) (string, error) {
	root, err := w.Root(folder)
	if err != nil {
		return "", err
	}
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, filename)
	}
	return filepath.Join(root, filename), nil
}

// Ensure creates the folder if absent.
func (w *Workspace) Ensure(folder Folder) error {
	root, err := w.Root(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, dirPermissions); err != nil {
		return fmt.Errorf("%w: creating %s folder: %v", ErrFileSystem, folder, err)
	}
	return nil
}

// EnsureAll creates both folders.
func (w *Workspace) EnsureAll() error {
	if err := w.Ensure(Intake); err != nil {
		return err
	}
	return w.Ensure(Output)
}

// Clear removes every entry under the folder: files, symlinks and directories.
// Individual deletion failures are logged and skipped. Only a root that exists
// but cannot be listed is reported. A missing root is already clear.
func (w *Workspace) Clear(folder Folder) error {
	root, err := w.Root(folder)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: listing %s folder: %v", ErrFileSystem, folder, err)
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		var rmErr error
		if entry.IsDir() {
			rmErr = os.RemoveAll(path)
		} else {
			// Symlinks are removed, never followed.
			rmErr = os.Remove(path)
		}
		if rmErr != nil {
			w.logger.Printf("Failed to delete %s. Reason: %v", path, rmErr)
		}
	}
	return nil
}

// ClearAll clears the output folder, then the intake folder.
// Both are attempted; errors are joined.
func (w *Workspace) ClearAll() error {
	return errors.Join(w.Clear(Output), w.Clear(Intake))
}
