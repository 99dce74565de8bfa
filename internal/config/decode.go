package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// MaxInputSize limits config input to prevent memory exhaustion (1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData         = errors.New("config: nil or empty data")
	ErrInputTooLarge   = errors.New("config: input exceeds maximum size")
	ErrUnknownFormat   = errors.New("config: unknown file format")
	ErrUnknownTOMLKeys = errors.New("config: unknown keys")
)

// Format identifies a config file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Decode parses data into v, rejecting unknown fields in both formats.
func Decode(format Format, data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}

	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		return nil
	case FormatTOML:
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return fmt.Errorf("toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("%w: %s", ErrUnknownTOMLKeys, strings.Join(keys, ", "))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encode renders v in the given format. Used by `certpress config` to print
// the effective configuration.
func Encode(format Format, v any) ([]byte, error) {
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
		return out, nil
	case FormatTOML:
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		return []byte(buf.String()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
