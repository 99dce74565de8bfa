package assets

// Names of the built-in assets.
const (
	DefaultStyleName    = "certificates"
	DefaultTemplateName = "document"
)

// defaultLoader serves the embedded copies.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name from the embedded assets.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name from the embedded assets.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
