package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"aster/internal/diag"
	"aster/internal/pii"
)

// ErrInvalidConfig marks aster.toml content that decodes but makes no sense.
var ErrInvalidConfig = errors.New("invalid project config")

// Typecheck mirrors the [typecheck] section.
type Typecheck struct {
	Manifest          string   `toml:"manifest"`
	LeakThreshold     string   `toml:"leak_threshold"`
	WarnUnusedEffects bool     `toml:"warn_unused_effects"`
	AuditPii          bool     `toml:"audit_pii"`
	FilterCodes       []string `toml:"filter_codes"`
	Jobs              int      `toml:"jobs"`
}

// Frontend mirrors the [frontend] section.
type Frontend struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout string   `toml:"timeout"`
}

type configFile struct {
	Typecheck Typecheck `toml:"typecheck"`
	Frontend  Frontend  `toml:"frontend"`
}

// Config is a decoded aster.toml. Paths inside it are resolved against Root.
type Config struct {
	Path string
	Root string

	Typecheck Typecheck
	Frontend  Frontend

	// Parsed forms of the string-typed keys; valid only when IsSet says so.
	LeakLevel       pii.Level
	Codes           []diag.Code
	FrontendTimeout time.Duration

	meta toml.MetaData
}

// IsSet reports whether the file spelled out the given key, e.g.
// IsSet("typecheck", "warn_unused_effects"). A nil config has nothing set.
func (c *Config) IsSet(key ...string) bool {
	if c == nil {
		return false
	}
	return c.meta.IsDefined(key...)
}

// LoadConfig parses aster.toml at path.
func LoadConfig(path string) (*Config, error) {
	var raw configFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalidConfig, strings.Join(keys, ", "))
	}
	cfg := &Config{
		Path:      path,
		Root:      filepath.Dir(path),
		Typecheck: raw.Typecheck,
		Frontend:  raw.Frontend,
		meta:      meta,
	}

	if m := strings.TrimSpace(cfg.Typecheck.Manifest); m != "" && !filepath.IsAbs(m) {
		cfg.Typecheck.Manifest = filepath.Join(cfg.Root, filepath.FromSlash(m))
	}
	if cfg.IsSet("typecheck", "leak_threshold") {
		lvl, err := pii.ParseLevel(cfg.Typecheck.LeakThreshold)
		if err != nil {
			return nil, fmt.Errorf("%s: [typecheck].leak_threshold: %w", path, err)
		}
		cfg.LeakLevel = lvl
	}
	for _, name := range cfg.Typecheck.FilterCodes {
		code, ok := diag.LookupCode(name)
		if !ok {
			return nil, fmt.Errorf("%s: %w: [typecheck].filter_codes: unknown code %q", path, ErrInvalidConfig, name)
		}
		cfg.Codes = append(cfg.Codes, code)
	}
	if cfg.Typecheck.Jobs < 0 {
		return nil, fmt.Errorf("%s: %w: [typecheck].jobs must not be negative", path, ErrInvalidConfig)
	}
	if cfg.IsSet("frontend", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(cfg.Frontend.Timeout))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: %w: [frontend].timeout %q", path, ErrInvalidConfig, cfg.Frontend.Timeout)
		}
		cfg.FrontendTimeout = d
	}
	return cfg, nil
}

// Discover finds aster.toml above startDir and loads it. ok is false when
// no file exists.
func Discover(startDir string) (cfg *Config, ok bool, err error) {
	path, ok, err := FindAsterToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}
