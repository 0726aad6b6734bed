// Package config loads graphmap.toml.
//
// The file has one section per concern:
//
//	[pack]       cluster packing and local layout
//	[partition]  clip region and simplification
//	[coloring]   color count, search ceiling and fallback policy
//	[canvas]     target rectangle
//	[output]     export and tile generation
//	[server]     HTTP API
//	[cache]      result cache backend
//	[store]      run store backend
//
// Every key is optional; [Default] supplies the values a missing key takes.
// Command-line flags override the loaded values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/pipeline"
)

// FileName is the configuration file looked up by [Find].
const FileName = "graphmap.toml"

// EnvPath names the environment variable that overrides [Find].
const EnvPath = "GRAPHMAP_CONFIG"

// Config is the decoded configuration file.
type Config struct {
	Pack      Pack      `toml:"pack"`
	Partition Partition `toml:"partition"`
	Coloring  Coloring  `toml:"coloring"`
	Canvas    Canvas    `toml:"canvas"`
	Output    Output    `toml:"output"`
	Server    Server    `toml:"server"`
	Cache     Cache     `toml:"cache"`
	Store     Store     `toml:"store"`
}

type Pack struct {
	TopK          int     `toml:"top_k" validate:"gte=0"`
	Seed          uint64  `toml:"seed"`
	Ticks         int     `toml:"ticks" validate:"gte=0"`
	Iterations    int     `toml:"iterations" validate:"gte=0"`
	Strength      float64 `toml:"strength" validate:"gte=0,lte=1"`
	VelocityDecay float64 `toml:"velocity_decay" validate:"gte=0,lt=1"`
	Padding       float64 `toml:"padding" validate:"gte=0"`
	Resolution    float64 `toml:"resolution" validate:"gte=0"`
	Relayout      bool    `toml:"relayout"`
}

type Partition struct {
	Region   string  `toml:"region" validate:"oneof=bbox hull"`
	Padding  float64 `toml:"padding" validate:"gte=0"`
	Simplify float64 `toml:"simplify" validate:"gte=0"`
}

type Coloring struct {
	Colors   int           `toml:"colors" validate:"gte=1,lte=64"`
	MaxSteps int           `toml:"max_steps" validate:"gte=0"`
	Budget   time.Duration `toml:"budget" validate:"gte=0"`
	Fallback string        `toml:"fallback" validate:"oneof=best-effort extend fail"`
}

// Canvas holds the target rectangle as minX, minY, maxX, maxY.
type Canvas struct {
	Bounds [4]float64 `toml:"bounds"`
}

type Output struct {
	Dir            string   `toml:"dir"`
	KeyColumn      string   `toml:"key_column"`
	DOT            bool     `toml:"dot"`
	SVG            bool     `toml:"svg"`
	Tiles          bool     `toml:"tiles"`
	Tippecanoe     string   `toml:"tippecanoe"`
	TippecanoeArgs []string `toml:"tippecanoe_args"`
}

type Server struct {
	Addr            string        `toml:"addr" validate:"required"`
	Concurrency     int64         `toml:"concurrency" validate:"gte=1"`
	CORSOrigins     []string      `toml:"cors_origins"`
	MaxBodyBytes    int64         `toml:"max_body_bytes" validate:"gte=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" validate:"gte=0"`
}

type Cache struct {
	Backend       string        `toml:"backend" validate:"oneof=file redis none"`
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl" validate:"gte=0"`
	RedisAddr     string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db" validate:"gte=0"`
	// KeyPrefix scopes cache keys when several deployments share a backend.
	KeyPrefix     string        `toml:"key_prefix"`
}

type Store struct {
	Backend    string `toml:"backend" validate:"oneof=file mongo none"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Pack: Pack{Seed: pipeline.DefaultSeed},
		Partition: Partition{
			Region: pipeline.DefaultRegion,
		},
		Coloring: Coloring{
			Colors:   4,
			Fallback: pipeline.DefaultFallback,
		},
		Output: Output{
			Dir:       "out",
			KeyColumn: "bgg_id",
		},
		Server: Server{
			Addr:            ":8080",
			Concurrency:     1,
			MaxBodyBytes:    64 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: Cache{Backend: "file", TTL: 7 * 24 * time.Hour},
		Store: Store{Backend: "file"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the file at path over [Default]. Keys the file sets replace the
// defaults; unknown keys are an error so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "config file %s not found", path)
		}
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// LoadOrDefault loads path, or returns [Default] when path is empty.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Find returns the first configuration file that exists: $GRAPHMAP_CONFIG,
// ./graphmap.toml, then graphmap/graphmap.toml under the user config dir.
// It returns "" when there is none.
func Find() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "graphmap", FileName))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: invalid value %v (%s)",
				strings.ToLower(fe.Namespace()), fe.Value(), fe.ActualTag())
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid config")
	}
	b := c.Canvas.Bounds
	if b != ([4]float64{}) && (b[0] >= b[2] || b[1] >= b[3]) {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "canvas.bounds %v: min must be below max", b)
	}
	return nil
}

// Options returns the render options the file describes.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Resolution:    c.Pack.Resolution,
		Relayout:      c.Pack.Relayout,
		TopK:          c.Pack.TopK,
		Seed:          c.Pack.Seed,
		Ticks:         c.Pack.Ticks,
		Iterations:    c.Pack.Iterations,
		Strength:      c.Pack.Strength,
		VelocityDecay: c.Pack.VelocityDecay,
		Padding:       c.Pack.Padding,
		Target:        c.Canvas.Bounds,
		Region:        c.Partition.Region,
		RegionPadding: c.Partition.Padding,
		Simplify:      c.Partition.Simplify,
		Colors:        c.Coloring.Colors,
		MaxSteps:      c.Coloring.MaxSteps,
		BudgetMS:      int(c.Coloring.Budget / time.Millisecond),
		Fallback:      c.Coloring.Fallback,
	}
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
