package assets

// AssetLoader loads named styles and templates.
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css.
	// Returns ErrStyleNotFound or ErrInvalidAssetName.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns templates/{name}.html.
	// Returns ErrTemplateNotFound or ErrInvalidAssetName.
	LoadTemplate(name string) (string, error)
}
