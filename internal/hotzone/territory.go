package hotzone

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// ErrUnknownTerritory is returned for territory ids the store does not hold.
// It wraps domain.ErrInvalidRequest.
var ErrUnknownTerritory = fmt.Errorf("unknown territory: %w", domain.ErrInvalidRequest)

// Territory is a named canvassing rectangle.
type Territory struct {
	ID     string           `yaml:"id"`
	Name   string           `yaml:"name"`
	Bounds domain.GeoBounds `yaml:"bounds"`
}

type territoryFile struct {
	Territories []Territory `yaml:"territories"`
}

// YAMLStore is a read-only TerritoryStore loaded from a YAML document:
//
//	territories:
//	  - id: north-dallas
//	    name: North Dallas
//	    bounds: {north: 33.05, south: 32.90, east: -96.70, west: -96.90}
type YAMLStore struct {
	byID map[string]Territory
}

// LoadTerritories reads and parses a territory file.
func LoadTerritories(path string) (*YAMLStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read territories %s: %w", path, err)
	}
	return ParseTerritories(data)
}

// ParseTerritories parses a territory document. Ids must be unique and
// every rectangle valid.
func ParseTerritories(data []byte) (*YAMLStore, error) {
	var f territoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse territories: %w", err)
	}

	store := &YAMLStore{byID: make(map[string]Territory, len(f.Territories))}
	for i, t := range f.Territories {
		if t.ID == "" {
			return nil, fmt.Errorf("territory %d: missing id", i)
		}
		if _, dup := store.byID[t.ID]; dup {
			return nil, fmt.Errorf("territory %q: duplicate id", t.ID)
		}
		if err := t.Bounds.Validate(); err != nil {
			return nil, fmt.Errorf("territory %q: %w", t.ID, err)
		}
		store.byID[t.ID] = t
	}
	return store, nil
}

// Territory returns the rectangle for id.
func (s *YAMLStore) Territory(_ context.Context, id string) (domain.GeoBounds, error) {
	t, ok := s.byID[id]
	if !ok {
		return domain.GeoBounds{}, fmt.Errorf("%q: %w", id, ErrUnknownTerritory)
	}
	return t.Bounds, nil
}

// IDs lists the loaded territory ids in sorted order.
func (s *YAMLStore) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
