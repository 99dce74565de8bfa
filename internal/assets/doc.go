// Package assets provides the print stylesheet and HTML shell used to turn
// an assembled certificate document into a PDF.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed copies shipped with the binary
//	    ├── FilesystemLoader  - overrides read from a directory on disk
//	    └── AssetResolver     - custom first, embedded on "not found"
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── certificates.css
//	└── templates/
//	    └── document.html    # html/template with .Title .Style .ImageWidth .Body
//
// Asset names are single path components without dots. FilesystemLoader
// resolves symlinks and refuses paths that leave basePath.
package assets
