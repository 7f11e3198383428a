package preferences

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matst80/slask-storefront/pkg/types"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a preferences document from disk. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadFile(path string) (*types.Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ResolveYaml(data)
	default:
		return Resolve(data)
	}
}

func ResolveYaml(data []byte) (*types.Preferences, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}
	return ResolveDocument(doc), nil
}
