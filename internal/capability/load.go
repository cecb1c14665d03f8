package capability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvManifest names the environment variable holding the manifest path.
const EnvManifest = "ASTER_CAPS"

// ErrManifestFormat is wrapped by every decode failure.
var ErrManifestFormat = errors.New("malformed capability manifest")

type manifestFile struct {
	Capabilities struct {
		Allow []string `json:"allow" toml:"allow" yaml:"allow"`
		Deny  []string `json:"deny"  toml:"deny"  yaml:"deny"`
	} `json:"capabilities" toml:"capabilities" yaml:"capabilities"`
}

// Load reads a manifest, choosing the decoder by extension:
// .toml, .yaml/.yml, anything else is JSON.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capability manifest: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "toml" && format != "yaml" && format != "yml" {
		format = "json"
	}
	m, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.source = path
	return m, nil
}

// Decode parses a manifest from r in the given format ("json", "toml", "yaml").
func Decode(r io.Reader, format string) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw manifestFile
	switch format {
	case "toml":
		err = decodeTOML(data, &raw)
	case "yaml", "yml":
		err = decodeYAML(data, &raw)
	case "json", "":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestFormat, err)
	}
	return build(raw)
}

// LoadFromEnv loads the manifest named by ASTER_CAPS.
// An unset or blank variable yields (nil, nil): no manifest, deny everything.
func LoadFromEnv() (*Manifest, error) {
	path := strings.TrimSpace(os.Getenv(EnvManifest))
	if path == "" {
		return nil, nil
	}
	return Load(path)
}

func build(raw manifestFile) (*Manifest, error) {
	allow, err := ParseList(raw.Capabilities.Allow)
	if err != nil {
		return nil, fmt.Errorf("capabilities.allow: %w", err)
	}
	deny, err := ParseList(raw.Capabilities.Deny)
	if err != nil {
		return nil, fmt.Errorf("capabilities.deny: %w", err)
	}
	return NewManifest(allow, deny), nil
}

func decodeTOML(data []byte, raw *manifestFile) error {
	meta, err := toml.Decode(string(data), raw)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, raw *manifestFile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(raw); err != nil {
		// пустой документ = пустой манифест
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
