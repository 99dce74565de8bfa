package assets

// Notes:
// - Symlink escape tests are skipped on Windows, where creating symlinks
//   needs elevated privileges.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeAsset creates {dir}/{sub}/{file} with content.
func writeAsset(t *testing.T, dir, sub, file, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
		t.Fatalf("failed to create %s dir: %v", sub, err)
	}
	if err := os.WriteFile(filepath.Join(dir, sub, file), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", file, err)
	}
}

// ---------------------------------------------------------------------------
// TestValidateAssetName - Single component names only
// ---------------------------------------------------------------------------

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple", "certificates", nil},
		{"hyphen and digits", "print-2", nil},
		{"empty", "", ErrInvalidAssetName},
		{"slash", "styles/certificates", ErrInvalidAssetName},
		{"backslash", `styles\certificates`, ErrInvalidAssetName},
		{"traversal", "../secret", ErrInvalidAssetName},
		{"extension", "certificates.css", ErrInvalidAssetName},
		{"nul byte", "a\x00b", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateAssetName(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEmbeddedLoader - Built-in assets
// ---------------------------------------------------------------------------

func TestEmbeddedLoader(t *testing.T) {
	t.Parallel()

	css, err := LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle(%q) error = %v", DefaultStyleName, err)
	}
	for _, want := range []string{"hr", "page-break-after: always", "img"} {
		if !strings.Contains(css, want) {
			t.Errorf("default style missing %q", want)
		}
	}

	tmpl, err := LoadTemplate(DefaultTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate(%q) error = %v", DefaultTemplateName, err)
	}
	for _, want := range []string{"{{.Style}}", "{{.Body}}", "{{.ImageWidth}}"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("default template missing %q", want)
		}
	}

	if _, err := LoadStyle("nonexistent"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(nonexistent) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := LoadTemplate("nonexistent"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(nonexistent) error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := LoadStyle("../x"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(../x) error = %v, want ErrInvalidAssetName", err)
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader - Directory overrides
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid directory", dir, nil},
		{"empty path", "", ErrInvalidBasePath},
		{"missing directory", filepath.Join(dir, "missing"), ErrInvalidBasePath},
		{"regular file", file, ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFilesystemLoader(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewFilesystemLoader(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles", "custom.css", "img { width: 5in; }")
	writeAsset(t, dir, "templates", "shell.html", "<html>{{.Body}}</html>")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	if got, err := loader.LoadStyle("custom"); err != nil || got != "img { width: 5in; }" {
		t.Errorf("LoadStyle(custom) = %q, %v", got, err)
	}
	if got, err := loader.LoadTemplate("shell"); err != nil || got != "<html>{{.Body}}</html>" {
		t.Errorf("LoadTemplate(shell) = %q, %v", got, err)
	}
	if _, err := loader.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.css")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(base, "styles", "leak.css")); err != nil {
		t.Fatal(err)
	}

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadStyle("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(leak) error = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestAssetResolver - Custom first, embedded fallback
// ---------------------------------------------------------------------------

func TestAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("HasCustomLoader() = true, want false")
		}
		if _, err := r.LoadStyle(DefaultStyleName); err != nil {
			t.Errorf("LoadStyle() error = %v", err)
		}
	})

	t.Run("custom overrides and falls back", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeAsset(t, dir, "styles", DefaultStyleName+".css", "/* custom */")

		r, err := NewAssetResolver(dir)
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if !r.HasCustomLoader() {
			t.Error("HasCustomLoader() = false, want true")
		}

		css, err := r.LoadStyle(DefaultStyleName)
		if err != nil || css != "/* custom */" {
			t.Errorf("LoadStyle() = %q, %v, want custom copy", css, err)
		}

		tmpl, err := r.LoadTemplate(DefaultTemplateName)
		if err != nil || !strings.Contains(tmpl, "{{.Body}}") {
			t.Errorf("LoadTemplate() = %q, %v, want embedded fallback", tmpl, err)
		}
	})

	t.Run("invalid name is not masked by fallback", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.LoadStyle("a/b"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle(a/b) error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("invalid base path", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}
