package config

import (
	"context"
	"strings"

	"github.com/BurntSushi/toml"
	"gitlab.com/tozd/go/errors"
)

// 🔧 TOMLParser implements the Parser interface for TOML files
type TOMLParser struct{}

func init() {
	Register(&TOMLParser{})
}

func (p *TOMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".toml")
}

// 📝 Parse parses the config from TOML. Keys that do not map to a field are
// rejected, matching the YAML and JSON parsers.
func (p *TOMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("parsing TOML: unknown keys %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}
