// Package config loads and validates certpress configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alnah/go-certpress/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
)

// Environment variables that override file values.
const (
	EnvAddr      = "CERTPRESS_ADDR"
	EnvTemplate  = "CERTPRESS_TEMPLATE"
	EnvIntakeDir = "CERTPRESS_INTAKE_DIR"
	EnvOutputDir = "CERTPRESS_OUTPUT_DIR"
	EnvWorkers   = "CERTPRESS_WORKERS"
)

// appDirName is the directory searched under the user config dir.
const appDirName = "certpress"

// Config holds all configuration for the server and the generation pipeline.
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Workspace  WorkspaceConfig  `yaml:"workspace" toml:"workspace"`
	Template   TemplateConfig   `yaml:"template" toml:"template"`
	Columns    ColumnsConfig    `yaml:"columns" toml:"columns"`
	Render     RenderConfig     `yaml:"render" toml:"render"`
	Conversion ConversionConfig `yaml:"conversion" toml:"conversion"`
	Assets     AssetsConfig     `yaml:"assets" toml:"assets"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr        string `yaml:"addr" toml:"addr" validate:"required"`
	CORSOrigins string `yaml:"corsOrigins" toml:"corsOrigins"`                           // comma-separated, "*" allows all
	BodyLimitMB int    `yaml:"bodyLimitMB" toml:"bodyLimitMB" validate:"gte=1,lte=1024"` // multipart upload cap
}

// WorkspaceConfig defines the two folders owned by the workspace manager.
type WorkspaceConfig struct {
	IntakeDir string `yaml:"intakeDir" toml:"intakeDir" validate:"required"`
	OutputDir string `yaml:"outputDir" toml:"outputDir" validate:"required,nefield=IntakeDir"`
}

// TemplateConfig locates the certificate background image.
type TemplateConfig struct {
	Path string `yaml:"path" toml:"path" validate:"required"`
}

// ColumnsConfig maps spreadsheet headers to record fields.
type ColumnsConfig struct {
	PersonName string `yaml:"personName" toml:"personName" validate:"required"`
	GroupID    string `yaml:"groupID" toml:"groupID" validate:"required"`
	GroupName  string `yaml:"groupName" toml:"groupName" validate:"required"`
	ResultFlag string `yaml:"resultFlag" toml:"resultFlag" validate:"required"`
	Remark1    string `yaml:"remark1" toml:"remark1" validate:"required"`
	Remark2    string `yaml:"remark2" toml:"remark2" validate:"required"`
	PassValue  string `yaml:"passValue" toml:"passValue" validate:"required"`
}

// RenderConfig controls certificate rendering.
type RenderConfig struct {
	Workers int `yaml:"workers" toml:"workers" validate:"gte=0,lte=64"` // 0 = auto
}

// ConversionConfig controls document to PDF conversion.
type ConversionConfig struct {
	Timeout time.Duration `yaml:"timeout" toml:"timeout" validate:"gte=0"` // 0 = default
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" toml:"basePath"` // Empty = use embedded assets
}

// DefaultConfig returns the configuration used when no file is given.
// Folder and column names follow the original exports.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":5000",
			CORSOrigins: "*",
			BodyLimitMB: 32,
		},
		Workspace: WorkspaceConfig{
			IntakeDir: "uploads",
			OutputDir: "gens",
		},
		Template: TemplateConfig{
			Path: "certificate-template.jpg",
		},
		Columns: ColumnsConfig{
			PersonName: "NAME",
			GroupID:    "COLL_NO",
			GroupName:  "COLL_NAME",
			ResultFlag: "RSLT",
			Remark1:    "FREM",
			Remark2:    "RES",
			PassValue:  "P",
		},
	}
}

var validate = newValidator()

// newValidator reports field paths using config key names instead of Go names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks required fields and value ranges.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually (flags, tests).
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrConfigInvalid, trimRoot(fe.Namespace()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	if strings.TrimSpace(c.Columns.PassValue) == "" {
		return fmt.Errorf("%w: columns.passValue is blank", ErrConfigInvalid)
	}
	return nil
}

// trimRoot drops the leading "Config." from validator namespaces.
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// ApplyEnv overrides file values with environment variables.
// lookup is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvTemplate); ok && v != "" {
		c.Template.Path = v
	}
	if v, ok := lookup(EnvIntakeDir); ok && v != "" {
		c.Workspace.IntakeDir = v
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.Workspace.OutputDir = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrConfigInvalid, EnvWorkers, v)
		}
		c.Render.Workers = n
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Missing keys keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	format, err := FormatFromPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := Decode(format, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, <user config dir>/certpress/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".toml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
