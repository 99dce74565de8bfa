package document

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// recordingBuilder captures builder calls as a compact trace.
type recordingBuilder struct {
	calls []string
}

func (r *recordingBuilder) AddImage(path string) { r.calls = append(r.calls, filepath.Base(path)) }
func (r *recordingBuilder) AddPageBreak() { r.calls = append(r.calls, "|") }
func (r *recordingBuilder) Save(string) error { return nil }

func makeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		if err := os.WriteFile(paths[i], []byte("jpg"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

// ---------------------------------------------------------------------------
// TestAssemble - Pairs, odd tail and page breaks
// ---------------------------------------------------------------------------

func TestAssemble_PageCount(t *testing.T) {
	t.Parallel()

	for k := 0; k <= 7; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			names := make([]string, k)
			for i := range names {
				names[i] = fmt.Sprintf("%d.jpg", i)
			}
			b := &recordingBuilder{}
			doc := Assemble(makeImages(t, dir, names...), b, nil)

			wantPages := (k + 1) / 2
			if len(doc.Pages) != wantPages {
				t.Errorf("pages = %d, want %d", len(doc.Pages), wantPages)
			}
			breaks := 0
			for _, c := range b.calls {
				if c == "|" {
					breaks++
				}
			}
			if breaks != wantPages {
				t.Errorf("page breaks = %d, want %d", breaks, wantPages)
			}
			if doc.ImageCount() != k {
				t.Errorf("ImageCount() = %d, want %d", doc.ImageCount(), k)
			}
			for i, p := range doc.Pages {
				if !p.Break {
					t.Errorf("page %d has no break", i)
				}
			}
		})
	}
}

func TestAssemble_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := &recordingBuilder{}
	Assemble(makeImages(t, dir, "a.jpg", "b.jpg", "c.jpg"), b, nil)

	want := []string{"a.jpg", "b.jpg", "|", "c.jpg", "|"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
}

func TestAssemble_MissingImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := makeImages(t, dir, "a.jpg", "c.jpg")
	images := []string{paths[0], filepath.Join(dir, "gone.jpg"), paths[1]}

	var logBuf bytes.Buffer
	b := &recordingBuilder{}
	doc := Assemble(images, b, log.New(&logBuf, "", 0))

	want := []string{"a.jpg", "|", "c.jpg", "|"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
	if len(doc.Pages) != 2 || len(doc.Pages[0].Slots) != 1 {
		t.Errorf("pages = %+v", doc.Pages)
	}
	if !strings.Contains(logBuf.String(), "File not found: "+filepath.Join(dir, "gone.jpg")) {
		t.Errorf("log = %q, want File not found line", logBuf.String())
	}
}

// ---------------------------------------------------------------------------
// TestMarkdownBuilder - Document text
// ---------------------------------------------------------------------------

func TestMarkdownBuilder_Save(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	images := makeImages(t, dir, "Jane Doe.jpg", "Bob.jpg", "Carol.jpg")

	b := NewMarkdownBuilder()
	Assemble(images, b, nil)

	path := filepath.Join(dir, FileName)
	if err := b.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "![](<Jane Doe.jpg>)\n\n![](<Bob.jpg>)\n\n***\n\n![](<Carol.jpg>)\n\n***\n\n"
	if string(got) != want {
		t.Errorf("document =\n%s\nwant\n%s", got, want)
	}
}

func TestMarkdownBuilder_OutsideDir(t *testing.T) {
	t.Parallel()

	b := NewMarkdownBuilder()
	b.AddImage(filepath.Join(string(filepath.Separator), "elsewhere", "a.jpg"))

	got := b.Markdown(filepath.Join(string(filepath.Separator), "out"))
	if !strings.Contains(got, "elsewhere/a.jpg") || strings.Contains(got, "..") {
		t.Errorf("Markdown() = %q, want absolute reference", got)
	}
}

func TestMarkdownBuilder_PercentInName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(string(filepath.Separator), "out")
	b := NewMarkdownBuilder()
	b.AddImage(filepath.Join(dir, "A%20B.jpg"))
	b.AddImage(filepath.Join(dir, "100% done.jpg"))

	got := b.Markdown(dir)
	want := "![](<A%2520B.jpg>)\n\n![](<100%25 done.jpg>)\n\n"
	if got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestMarkdownBuilder_SaveError(t *testing.T) {
	t.Parallel()

	b := NewMarkdownBuilder()
	err := b.Save(filepath.Join(t.TempDir(), "missing", FileName))
	if !errors.Is(err, ErrSave) {
		t.Errorf("Save() error = %v, want ErrSave", err)
	}
}
