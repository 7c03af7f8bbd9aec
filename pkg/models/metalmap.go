package models

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed metal_categories.yaml
var metalMapRawData []byte

// metalMapFile is the top-level structure of the embedded YAML.
type metalMapFile struct {
	Metals []struct {
		Metal      MetalType      `yaml:"metal"`
		Categories []CategoryType `yaml:"categories"`
	} `yaml:"metals"`
}

var (
	metalMapOnce sync.Once
	metalMap     map[MetalType][]CategoryType
	metalMapErr  error
)

// loadMetalMap parses the embedded compatibility table once.
func loadMetalMap() {
	var f metalMapFile
	if err := yaml.Unmarshal(metalMapRawData, &f); err != nil {
		metalMapErr = fmt.Errorf("metal map: parse yaml: %w", err)
		return
	}
	metalMap = make(map[MetalType][]CategoryType, len(f.Metals))
	for _, e := range f.Metals {
		metalMap[e.Metal] = e.Categories
	}
}

// CategoriesFor returns the categories valid for the given metal, in display
// order. Unknown or empty metals yield an empty slice, never an error.
func CategoriesFor(metal MetalType) []CategoryType {
	metalMapOnce.Do(loadMetalMap)
	if metalMapErr != nil {
		return []CategoryType{}
	}
	cats, ok := metalMap[metal]
	if !ok {
		return []CategoryType{}
	}
	cp := make([]CategoryType, len(cats))
	copy(cp, cats)
	return cp
}

// CategoryValidFor reports whether category belongs to the metal's
// compatibility set.
func CategoryValidFor(metal MetalType, category CategoryType) bool {
	for _, c := range CategoriesFor(metal) {
		if c == category {
			return true
		}
	}
	return false
}
