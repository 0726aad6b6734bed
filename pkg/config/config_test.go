package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	opts := Default().Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[pack]
top_k = 5
seed = 7

[coloring]
fallback = "extend"
budget = "250ms"

[canvas]
bounds = [-10.0, -5.0, 10.0, 5.0]

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pack.TopK != 5 || cfg.Pack.Seed != 7 {
		t.Errorf("pack = %+v", cfg.Pack)
	}
	if cfg.Coloring.Budget != 250*time.Millisecond {
		t.Errorf("budget = %v, want 250ms", cfg.Coloring.Budget)
	}
	if cfg.Coloring.Colors != 4 {
		t.Errorf("colors = %d, want default 4", cfg.Coloring.Colors)
	}
	if cfg.Server.Concurrency != 1 {
		t.Errorf("concurrency = %d, want default 1", cfg.Server.Concurrency)
	}

	opts := cfg.Options()
	if opts.Fallback != "extend" || opts.BudgetMS != 250 || opts.Target != [4]float64{-10, -5, 10, 5} {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code apperrors.Code
	}{
		{"Syntax", "[pack\n", apperrors.ErrCodeInvalidConfig},
		{"UnknownKey", "[pack]\ntopk = 3\n", apperrors.ErrCodeInvalidConfig},
		{"BadFallback", "[coloring]\nfallback = \"retry\"\n", apperrors.ErrCodeInvalidConfig},
		{"BadRegion", "[partition]\nregion = \"circle\"\n", apperrors.ErrCodeInvalidConfig},
		{"RedisWithoutAddr", "[cache]\nbackend = \"redis\"\n", apperrors.ErrCodeInvalidConfig},
		{"InvertedCanvas", "[canvas]\nbounds = [1.0, 0.0, -1.0, 1.0]\n", apperrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !apperrors.Is(err, tt.code) {
				t.Fatalf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidPath) {
		t.Errorf("missing file error = %v, want %s", err, apperrors.ErrCodeInvalidPath)
	}
}

func TestFindEnv(t *testing.T) {
	t.Setenv(EnvPath, "/etc/graphmap.toml")
	if got := Find(); got != "/etc/graphmap.toml" {
		t.Errorf("Find() = %q", got)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}
