// Package config loads fitsview settings.
//
// Settings are validated against an embedded CUE schema that also carries
// the defaults. Files may be written in CUE or YAML; YAML is decoded with
// gopkg.in/yaml.v3 and unified with the schema the same way.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fitsview/internal/render"
)

//go:embed schema.cue
var schemaCUE string

// Config holds every setting. Field names follow the schema.
type Config struct {
	Background string        `json:"background"`
	Surface    SurfaceConfig `json:"surface"`
	Export     ExportConfig  `json:"export"`
	Journal    JournalConfig `json:"journal"`
	Log        LogConfig     `json:"log"`
}

// SurfaceConfig selects the drawing surface.
type SurfaceConfig struct {
	ID    string `json:"id"`
	Scale int    `json:"scale"`
}

// ExportConfig controls rendered image output.
type ExportConfig struct {
	Format string `json:"format"`
}

// JournalConfig points at the session journal. An empty path disables it.
type JournalConfig struct {
	Path string `json:"path,omitempty"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `json:"level"`
}

// Default returns the schema defaults.
func Default() *Config {
	cfg, err := decode(cuecontext.New(), "", nil)
	if err != nil {
		// The embedded schema is fixed; failing here is a build defect.
		panic(fmt.Sprintf("config: default config invalid: %v", err))
	}
	return cfg
}

// Load reads and validates the file at path. An empty path returns
// Default(). The extension selects the syntax: .cue, .yaml or .yml.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeNotFound, Path: path, Message: "config file not found"}
		}
		return nil, &Error{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}

	ctx := cuecontext.New()
	var user cue.Value
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		user = ctx.CompileBytes(raw, cue.Filename(path))
		if err := user.Err(); err != nil {
			return nil, newCUEError(ErrCodeParseFailed, path, err)
		}
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, &Error{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
		}
		if doc == nil {
			doc = map[string]any{}
		}
		user = ctx.Encode(doc)
		if err := user.Err(); err != nil {
			return nil, newCUEError(ErrCodeParseFailed, path, err)
		}
	default:
		return nil, &Error{Code: ErrCodeUnsupported, Path: path, Message: fmt.Sprintf("unsupported config extension %q", ext)}
	}

	return decode(ctx, path, &user)
}

// decode unifies user (when given) with #Config and extracts the result.
func decode(ctx *cue.Context, path string, user *cue.Value) (*Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, newCUEError(ErrCodeInvalid, "schema.cue", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config"))
	if user != nil {
		v = v.Unify(*user)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, newCUEError(ErrCodeInvalid, path, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, newCUEError(ErrCodeInvalid, path, err)
	}
	return &cfg, nil
}

// BackgroundColor parses Background.
func (c *Config) BackgroundColor() (color.Color, error) {
	hex := strings.TrimPrefix(c.Background, "#")
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return nil, &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("background %q is not #rrggbb", c.Background)}
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// ImageFormat returns the export format.
func (c *Config) ImageFormat() (render.ImageFormat, error) {
	return render.ParseImageFormat(c.Export.Format)
}

// SlogLevel maps Log.Level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
