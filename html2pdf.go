package certpress

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-certpress/internal/document"
	"github.com/alnah/go-certpress/internal/hints"
	"github.com/alnah/go-certpress/internal/process"
)

// pdfRenderer prints a local HTML file to PDF bytes.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// Environment variables read when launching the browser.
const (
	envBrowserBin = "ROD_BROWSER_BIN"
	envNoSandbox  = "ROD_NO_SANDBOX"
	envCI         = "CI"
)

// rodRenderer drives headless Chrome through go-rod. The browser starts on
// first use and is reused until Close. Rod downloads Chromium when no
// browser is installed.
type rodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	getenv   func(string) string
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout, getenv: os.Getenv}
}

// newLauncher configures the Chrome launcher from the environment.
func (r *rodRenderer) newLauncher() *launcher.Launcher {
	l := launcher.New()

	bin := r.getenv(envBrowserBin)
	if bin != "" {
		l = l.Bin(bin)
	}

	// Containers and CI runners usually lack the namespaces the sandbox needs.
	if bin != "" || r.getenv(envCI) == "true" || r.getenv(envNoSandbox) != "" {
		l = l.NoSandbox(true)
	}
	return l
}

// ensureBrowser connects lazily. Callers hold r.mu.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := r.newLauncher()
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect(r.getenv))
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect(r.getenv))
	}

	r.browser = b
	r.launcher = l
	return nil
}

// Close shuts the browser down and kills its process group so no Chrome
// helpers outlive the server.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	// Helpers may outlive the browser process; the launcher kill below
	// covers platforms where the group kill fails.
	_ = process.KillTree(r.launcher.PID())
	r.launcher.Kill()
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}

// RenderFromFile opens filePath in a new tab and prints it with the
// certificate page geometry.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: fileURL(filePath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	tab := page.Timeout(timeout)

	if err := tab.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := tab.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// printOptions returns US Letter pages with images flush against every
// edge except the left.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(document.PageWidth),
		PaperHeight:     floatPtr(document.PageHeight),
		MarginTop:       floatPtr(document.MarginTop),
		MarginBottom:    floatPtr(document.MarginBottom),
		MarginLeft:      floatPtr(document.MarginLeft),
		MarginRight:     floatPtr(document.MarginRight),
		PrintBackground: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// fileURL turns an absolute path into a file:// URL.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
