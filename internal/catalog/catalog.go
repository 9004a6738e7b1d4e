// Package catalog holds the ASC 606 review categories and their trigger
// phrases.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/rainier/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog is returned when a category table fails validation
var ErrInvalidCatalog = errors.New("invalid category table")

// Default returns a fresh copy of the built-in category table
func Default() []model.Category {
	out := make([]model.Category, len(builtin))
	for i, c := range builtin {
		c.Phrases = append([]string(nil), c.Phrases...)
		out[i] = c
	}
	return out
}

// file is the on-disk layout of an override table
type file struct {
	Categories []model.Category `yaml:"categories"`
}

// LoadYAML reads an override table from path. The table replaces the built-in
// one entirely; categories keep their file order.
func LoadYAML(path string) ([]model.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML category table
func Parse(data []byte) ([]model.Category, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := Validate(f.Categories); err != nil {
		return nil, err
	}
	for i := range f.Categories {
		f.Categories[i].Phrases = cleanPhrases(f.Categories[i].Phrases)
	}
	return f.Categories, nil
}

// Validate checks that every category has an ID and a name and that IDs are unique
func Validate(categories []model.Category) error {
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return fmt.Errorf("%w: category %d has no id", ErrInvalidCatalog, i)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: category %q has no name", ErrInvalidCatalog, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidCatalog, id)
		}
		seen[id] = true
	}
	return nil
}

// Load returns the override table at path, or the built-in table when path is empty
func Load(path string) ([]model.Category, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadYAML(path)
}

func cleanPhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
