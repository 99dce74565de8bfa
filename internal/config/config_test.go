package config

// Notes:
// - LoadConfig tests write real files into t.TempDir()
// - resolveConfigPath by name is exercised through t.Chdir, so those tests
//   do not run in parallel

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig - Defaults follow the original exports
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.Workspace.IntakeDir != "uploads" {
		t.Errorf("Workspace.IntakeDir = %q, want %q", cfg.Workspace.IntakeDir, "uploads")
	}
	if cfg.Workspace.OutputDir != "gens" {
		t.Errorf("Workspace.OutputDir = %q, want %q", cfg.Workspace.OutputDir, "gens")
	}
	if cfg.Columns.GroupID != "COLL_NO" || cfg.Columns.PassValue != "P" {
		t.Errorf("Columns = %+v, want COLL_NO/P defaults", cfg.Columns)
	}
	if cfg.Render.Workers != 0 {
		t.Errorf("Render.Workers = %d, want 0 (auto)", cfg.Render.Workers)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Tag and custom validation
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{
			name:      "empty addr",
			mutate:    func(c *Config) { c.Server.Addr = "" },
			wantField: "server.addr",
		},
		{
			name:      "body limit zero",
			mutate:    func(c *Config) { c.Server.BodyLimitMB = 0 },
			wantField: "server.bodyLimitMB",
		},
		{
			name: "intake equals output",
			mutate: func(c *Config) {
				c.Workspace.IntakeDir = "same"
				c.Workspace.OutputDir = "same"
			},
			wantField: "workspace.outputDir",
		},
		{
			name:      "missing template",
			mutate:    func(c *Config) { c.Template.Path = "" },
			wantField: "template.path",
		},
		{
			name:      "missing group column",
			mutate:    func(c *Config) { c.Columns.GroupID = "" },
			wantField: "columns.groupID",
		},
		{
			name:      "negative workers",
			mutate:    func(c *Config) { c.Render.Workers = -1 },
			wantField: "render.workers",
		},
		{
			name:      "negative timeout",
			mutate:    func(c *Config) { c.Conversion.Timeout = -time.Second },
			wantField: "conversion.timeout",
		},
		{
			name:      "blank pass value",
			mutate:    func(c *Config) { c.Columns.PassValue = "   " },
			wantField: "columns.passValue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("Validate() = %v, want ErrConfigInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantField)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - YAML and TOML files
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("yaml overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "certpress.yaml", `
server:
  addr: ":8080"
workspace:
  intakeDir: in
  outputDir: out
render:
  workers: 3
conversion:
  timeout: 45s
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
		}
		if cfg.Workspace.IntakeDir != "in" || cfg.Workspace.OutputDir != "out" {
			t.Errorf("Workspace = %+v, want in/out", cfg.Workspace)
		}
		if cfg.Render.Workers != 3 {
			t.Errorf("Render.Workers = %d, want 3", cfg.Render.Workers)
		}
		if cfg.Conversion.Timeout != 45*time.Second {
			t.Errorf("Conversion.Timeout = %v, want 45s", cfg.Conversion.Timeout)
		}
		if cfg.Columns.PersonName != "NAME" {
			t.Errorf("Columns.PersonName = %q, want default NAME", cfg.Columns.PersonName)
		}
	})

	t.Run("toml overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "certpress.toml", `
[template]
path = "/srv/template.png"

[columns]
passValue = "PASS"
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Template.Path != "/srv/template.png" {
			t.Errorf("Template.Path = %q, want %q", cfg.Template.Path, "/srv/template.png")
		}
		if cfg.Columns.PassValue != "PASS" {
			t.Errorf("Columns.PassValue = %q, want PASS", cfg.Columns.PassValue)
		}
	})

	t.Run("unknown yaml key rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "bad.yaml", "server:\n  port: 80\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown toml key rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "bad.toml", "[server]\nport = 80\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "certpress.json", "{}")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "invalid.yaml", "render:\n  workers: 500\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigInvalid) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigInvalid", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("LoadConfig() error = %v, want ErrEmptyConfigName", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prod.toml", "[server]\naddr = \":9000\"\n")
	// a directory with a config name is not a candidate
	if err := os.Mkdir(filepath.Join(dir, "prod.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := LoadConfig("prod")
	if err != nil {
		t.Fatalf("LoadConfig(prod) error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}

	_, err = LoadConfig("staging")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(staging) error = %v, want ErrConfigNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_ApplyEnv - Environment overrides
// ---------------------------------------------------------------------------

func TestConfig_ApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvAddr:      ":7000",
		EnvTemplate:  "/tmp/t.jpg",
		EnvIntakeDir: "/data/in",
		EnvOutputDir: "",
		EnvWorkers:   "2",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want :7000", cfg.Server.Addr)
	}
	if cfg.Template.Path != "/tmp/t.jpg" {
		t.Errorf("Template.Path = %q, want /tmp/t.jpg", cfg.Template.Path)
	}
	if cfg.Workspace.IntakeDir != "/data/in" {
		t.Errorf("Workspace.IntakeDir = %q, want /data/in", cfg.Workspace.IntakeDir)
	}
	if cfg.Workspace.OutputDir != "gens" {
		t.Errorf("Workspace.OutputDir = %q, want default gens (empty env ignored)", cfg.Workspace.OutputDir)
	}
	if cfg.Render.Workers != 2 {
		t.Errorf("Render.Workers = %d, want 2", cfg.Render.Workers)
	}
}

func TestConfig_ApplyEnv_BadWorkers(t *testing.T) {
	t.Parallel()

	lookup := func(k string) (string, bool) {
		if k == EnvWorkers {
			return "many", true
		}
		return "", false
	}

	err := DefaultConfig().ApplyEnv(lookup)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("ApplyEnv() error = %v, want ErrConfigInvalid", err)
	}
}

// ---------------------------------------------------------------------------
// TestDecode - Size and format guards
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	var cfg Config

	if err := Decode(FormatYAML, nil, &cfg); !errors.Is(err, ErrNilData) {
		t.Errorf("Decode(nil) = %v, want ErrNilData", err)
	}

	big := make([]byte, MaxInputSize+1)
	if err := Decode(FormatYAML, big, &cfg); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Decode(big) = %v, want ErrInputTooLarge", err)
	}

	if err := Decode(Format("ini"), []byte("a=b"), &cfg); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode(ini) = %v, want ErrUnknownFormat", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.toml", FormatTOML, false},
		{"a.json", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestEncode_RoundTripYAML(t *testing.T) {
	t.Parallel()

	out, err := Encode(FormatYAML, DefaultConfig())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded := &Config{}
	if err := Decode(FormatYAML, out, decoded); err != nil {
		t.Fatalf("Decode(Encode()) error = %v\n%s", err, out)
	}
	if decoded.Columns != DefaultConfig().Columns {
		t.Errorf("Columns after round trip = %+v, want %+v", decoded.Columns, DefaultConfig().Columns)
	}
}
