package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects empty names and names containing separators or
// dots, so a name always maps to exactly one file in its folder.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
