package driver

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"aster/internal/capability"
	"aster/internal/diag"
	"aster/internal/pii"
	"aster/internal/project"
)

const (
	// EnvFrontend names the command that turns a source file into Core IR.
	EnvFrontend = "ASTER_FRONTEND"
	// EnvFrontendTimeout bounds the frontend run, e.g. "10s".
	EnvFrontendTimeout = "ASTER_FRONTEND_TIMEOUT"
	// EnvLeakThreshold overrides the PII leak threshold.
	EnvLeakThreshold = "ASTER_LEAK_THRESHOLD"

	// DefaultFrontendTimeout is used when nothing else sets one.
	DefaultFrontendTimeout = 30 * time.Second
)

// ErrInvalidSetting marks a configuration value that cannot be used.
var ErrInvalidSetting = errors.New("invalid setting")

// FlagError reports a bad command-line value. The CLI treats it as a usage
// error rather than a configuration failure.
type FlagError struct {
	Flag string
	Err  error
}

func (e *FlagError) Error() string { return fmt.Sprintf("--%s: %v", e.Flag, e.Err) }

func (e *FlagError) Unwrap() error { return e.Err }

// Flags are the command-line values; a nil pointer means the flag was not
// given.
type Flags struct {
	Manifest          *string
	LeakThreshold     *string
	WarnUnusedEffects *bool
	AuditPii          *bool
	FilterCodes       []string
	Jobs              *int
}

// Settings is the effective configuration of one typecheck run.
type Settings struct {
	ManifestPath      string
	LeakThreshold     pii.Level
	WarnUnusedEffects bool
	AuditPii          bool
	FilterCodes       []diag.Code
	Jobs              int
	Frontend          Frontend
	// Config is the aster.toml the settings were read from, if any.
	Config *project.Config
}

// DefaultSettings are used when neither flags, environment nor aster.toml
// say otherwise.
func DefaultSettings() Settings {
	return Settings{
		LeakThreshold:     pii.L2,
		WarnUnusedEffects: true,
		Frontend:          Frontend{Timeout: DefaultFrontendTimeout},
	}
}

// LookupEnv matches os.LookupEnv; tests pass a map-backed one.
type LookupEnv func(key string) (string, bool)

// ResolveSettings merges the sources with precedence flags > environment >
// aster.toml > defaults. cfg may be nil; env nil means os.LookupEnv.
func ResolveSettings(flags Flags, env LookupEnv, cfg *project.Config) (Settings, error) {
	if env == nil {
		env = os.LookupEnv
	}
	getenv := func(key string) (string, bool) {
		v, ok := env(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	s := DefaultSettings()
	s.Config = cfg

	// aster.toml
	if cfg != nil {
		tc := cfg.Typecheck
		if cfg.IsSet("typecheck", "manifest") {
			s.ManifestPath = tc.Manifest
		}
		if cfg.IsSet("typecheck", "leak_threshold") {
			s.LeakThreshold = cfg.LeakLevel
		}
		if cfg.IsSet("typecheck", "warn_unused_effects") {
			s.WarnUnusedEffects = tc.WarnUnusedEffects
		}
		if cfg.IsSet("typecheck", "audit_pii") {
			s.AuditPii = tc.AuditPii
		}
		if cfg.IsSet("typecheck", "jobs") {
			s.Jobs = tc.Jobs
		}
		s.FilterCodes = append(s.FilterCodes, cfg.Codes...)
		if cfg.IsSet("frontend", "command") {
			s.Frontend.Command = cfg.Frontend.Command
			s.Frontend.Args = cfg.Frontend.Args
		}
		if cfg.IsSet("frontend", "timeout") {
			s.Frontend.Timeout = cfg.FrontendTimeout
		}
	}

	// environment
	if v, ok := getenv(capability.EnvManifest); ok {
		s.ManifestPath = v
	}
	if v, ok := getenv(EnvLeakThreshold); ok {
		lvl, err := pii.ParseLevel(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvLeakThreshold, err)
		}
		s.LeakThreshold = lvl
	}
	if v, ok := getenv(EnvFrontend); ok {
		fields := strings.Fields(v)
		s.Frontend.Command, s.Frontend.Args = fields[0], fields[1:]
	}
	if v, ok := getenv(EnvFrontendTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Settings{}, fmt.Errorf("%s: %w: %q is not a positive duration", EnvFrontendTimeout, ErrInvalidSetting, v)
		}
		s.Frontend.Timeout = d
	}

	// flags
	if flags.Manifest != nil {
		s.ManifestPath = strings.TrimSpace(*flags.Manifest)
	}
	if flags.LeakThreshold != nil {
		lvl, err := pii.ParseLevel(*flags.LeakThreshold)
		if err != nil {
			return Settings{}, &FlagError{Flag: "leak-threshold", Err: err}
		}
		s.LeakThreshold = lvl
	}
	if flags.WarnUnusedEffects != nil {
		s.WarnUnusedEffects = *flags.WarnUnusedEffects
	}
	if flags.AuditPii != nil {
		s.AuditPii = *flags.AuditPii
	}
	if flags.Jobs != nil {
		if *flags.Jobs < 0 {
			return Settings{}, &FlagError{Flag: "jobs", Err: fmt.Errorf("%w: must not be negative", ErrInvalidSetting)}
		}
		s.Jobs = *flags.Jobs
	}
	if len(flags.FilterCodes) > 0 {
		codes, err := ParseCodes(flags.FilterCodes)
		if err != nil {
			return Settings{}, &FlagError{Flag: "filter-codes", Err: err}
		}
		s.FilterCodes = codes
	}
	return s, nil
}

// ParseCodes resolves code IDs or names, case-insensitively. Entries may
// themselves be comma-separated.
func ParseCodes(values []string) ([]diag.Code, error) {
	var out []diag.Code
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			code, ok := diag.LookupCode(part)
			if !ok {
				return nil, fmt.Errorf("%w: unknown diagnostic code %q", ErrInvalidSetting, part)
			}
			out = append(out, code)
		}
	}
	return out, nil
}

// LoadManifest reads the manifest at s.ManifestPath. No path yields a nil
// manifest, which denies every capability.
func (s Settings) LoadManifest() (*capability.Manifest, error) {
	if s.ManifestPath == "" {
		return nil, nil
	}
	m, err := capability.Load(s.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load capability manifest: %w", err)
	}
	return m, nil
}
