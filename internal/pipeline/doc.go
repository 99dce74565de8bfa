// Package pipeline turns an assembled certificate document into a
// self-contained HTML page ready for printing.
//
// Stages:
//   - Markdown normalization (line endings, blank lines)
//   - Markdown to HTML via Goldmark
//   - Relative image paths rewritten to absolute file:// URLs
//   - Wrapping in the HTML shell with the print stylesheet
//
// PDF printing is done by the root certpress package with headless Chrome
// (go-rod), which owns page size and margins.
package pipeline
