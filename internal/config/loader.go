package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	pkgconfig "github.com/goran-ethernal/ScanKit/pkg/config"
	"gopkg.in/yaml.v3"
)

type decodeFunc func(data []byte, cfg *pkgconfig.Config) error

var decoders = map[string]struct {
	format string
	decode decodeFunc
}{
	".yaml": {"YAML", decodeYAML},
	".yml":  {"YAML", decodeYAML},
	".json": {"JSON", decodeJSON},
	".toml": {"TOML", decodeTOML},
}

// LoadFromFile loads configuration from a file, auto-detecting the format by extension.
// Supported formats: .yaml, .yml, .json, .toml
// Secrets can be kept out of the file: ${VAR} references are expanded from the environment.
func LoadFromFile(path string) (*pkgconfig.Config, error) {
	ext := strings.ToLower(filepath.Ext(path))

	d, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json, .toml)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Load(data, d.format)
}

// Load decodes configuration bytes in the given format ("YAML", "JSON" or "TOML"),
// applies defaults and validates the result.
func Load(data []byte, format string) (*pkgconfig.Config, error) {
	var decode decodeFunc
	for _, d := range decoders {
		if d.format == strings.ToUpper(format) {
			decode = d.decode
			break
		}
	}
	if decode == nil {
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	var cfg pkgconfig.Config
	if err := decode([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", strings.ToUpper(format), err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func decodeYAML(data []byte, cfg *pkgconfig.Config) error {
	return yaml.Unmarshal(data, cfg)
}

func decodeJSON(data []byte, cfg *pkgconfig.Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func decodeTOML(data []byte, cfg *pkgconfig.Config) error {
	_, err := toml.Decode(string(data), cfg)
	return err
}
