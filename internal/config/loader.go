package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/maps"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const envPrefix = "DRAFTMILL_"

// yamlParser wraps the koanf YAML parser to stringify integer map keys.
// Heading levels are written as bare ints in YAML ("1:", "2:"), which
// would otherwise surface as map[interface{}]interface{} and block
// koanf's layer merging.
type yamlParser struct {
	koanf.Parser
}

func newYAMLParser() koanf.Parser {
	return yamlParser{kyaml.Parser()}
}

func (p yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out, err := p.Parser.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	maps.IntfaceKeysToStrings(out)
	return out, nil
}

// LoadConversion reads a styling config file, layered over the built-in
// defaults and under DRAFTMILL_* environment overrides. Nested keys use a
// double underscore: DRAFTMILL_STYLES__HEADINGS__1__NUMBERING.
func LoadConversion(path string) (*Conversion, error) {
	k, err := defaultLayer()
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), newYAMLParser()); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}
	return unmarshalConversion(k)
}

// ParseConversion parses YAML bytes layered over the defaults, so partial
// documents that only state what differs are accepted.
func ParseConversion(b []byte) (*Conversion, error) {
	k, err := defaultLayer()
	if err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(b), newYAMLParser()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return unmarshalConversion(k)
}

// MergeYAML applies a partial YAML overlay on top of base and validates
// the result. base is not modified.
func MergeYAML(base *Conversion, overlay []byte) (*Conversion, error) {
	k := koanf.New(".")
	bb, err := yaml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("marshal base config: %w", err)
	}
	if err := k.Load(rawbytes.Provider(bb), newYAMLParser()); err != nil {
		return nil, fmt.Errorf("load base config: %w", err)
	}
	if err := k.Load(rawbytes.Provider(overlay), newYAMLParser()); err != nil {
		return nil, fmt.Errorf("parse overlay: %w", err)
	}
	return unmarshalConversion(k)
}

// ApplyOverrides sets flat dotted keys ("document.default_font.size") on
// top of base. Values may be strings; they are coerced to the field type.
func ApplyOverrides(base *Conversion, overrides map[string]interface{}) (*Conversion, error) {
	k := koanf.New(".")
	bb, err := yaml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("marshal base config: %w", err)
	}
	if err := k.Load(rawbytes.Provider(bb), newYAMLParser()); err != nil {
		return nil, fmt.Errorf("load base config: %w", err)
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}
	return unmarshalConversion(k)
}

// YAML serializes the config after validating it.
func (c *Conversion) YAML() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return b, nil
}

// WriteDefault writes the built-in config to path as a starting point for
// hand editing, and returns it.
func WriteDefault(path string) (*Conversion, error) {
	cfg := DefaultConversion()
	b, err := cfg.YAML()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return nil, fmt.Errorf("write config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultLayer() (*koanf.Koanf, error) {
	k := koanf.New(".")
	b, err := yaml.Marshal(DefaultConversion())
	if err != nil {
		return nil, fmt.Errorf("marshal default config: %w", err)
	}
	if err := k.Load(rawbytes.Provider(b), newYAMLParser()); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}
	return k, nil
}

func unmarshalConversion(k *koanf.Koanf) (*Conversion, error) {
	var cfg Conversion
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
