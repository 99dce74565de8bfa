package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RewriteImagePaths turns relative img[src] values in an HTML fragment into
// absolute file:// URLs under sourceDir, so the page renders the same no
// matter where the browser loads it from. URLs, absolute paths and paths
// that resolve outside sourceDir are left untouched.
// An empty sourceDir returns the fragment unchanged.
func RewriteImagePaths(fragment, sourceDir string) (string, error) {
	if sourceDir == "" {
		return fragment, nil
	}

	absDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs, ok := resolveRelative(src, absDir); ok {
			s.SetAttr("src", pathToFileURL(abs))
		}
	})

	return doc.Find("body").Html()
}

// resolveRelative maps a relative, possibly percent-encoded src onto dir.
func resolveRelative(src, dir string) (string, bool) {
	if !isRelativePath(src) {
		return "", false
	}
	if unescaped, err := url.PathUnescape(src); err == nil {
		src = unescaped
	}

	abs := filepath.Join(dir, filepath.FromSlash(src))
	if !isPathUnderDir(abs, dir) {
		return "", false
	}
	return abs, true
}

func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false // http:, file:, data: ... but not a Windows drive letter
	}
	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

func isPathUnderDir(path, dir string) bool {
	dir = filepath.Clean(dir)
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(path)+string(filepath.Separator), dir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x -> /C:/x
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
