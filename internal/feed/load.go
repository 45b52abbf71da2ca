package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// itemsKey is the mapping key holding the item list in object-shaped feed files.
const itemsKey = "items"

// Feed file errors.
var (
	ErrUnsupportedFeed = errors.New("unsupported feed file extension")
	ErrInvalidFeed     = errors.New("feed must be a list of items or a mapping with an 'items' list")
)

// Load reads the items of a feed file. The file is either a top-level list or
// a mapping whose "items" key holds the list. JSON is read with the YAML
// decoder, which accepts it as a subset.
func Load(path string) ([]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFeed, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes feed content.
func Parse(data []byte) ([]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	switch v := doc.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	case map[string]any:
		items, ok := v[itemsKey]
		if !ok || items == nil {
			return []any{}, nil
		}
		list, ok := items.([]any)
		if !ok {
			return nil, ErrInvalidFeed
		}
		return list, nil
	default:
		return nil, ErrInvalidFeed
	}
}
