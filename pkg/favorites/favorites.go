// Package favorites keeps the client-local set of favorited game ids.
package favorites

import (
	"encoding/json"
	"fmt"

	"game-catalog/pkg/storage"
)

// StorageKey is where the JSON array of ids is kept
const StorageKey = "pineapple_favorites"

// Store reads and writes favorites through a storage.Store
type Store struct {
	backend storage.Store
}

// New creates a favorites store on top of backend
func New(backend storage.Store) *Store {
	return &Store{backend: backend}
}

// List returns the stored ids in insertion order. A missing or malformed
// value reads as an empty list.
func (s *Store) List() []string {
	raw, ok := s.backend.Get(StorageKey)
	if !ok || raw == "" {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return []string{}
	}
	return ids
}

// Set returns the stored ids as a lookup set
func (s *Store) Set() map[string]bool {
	ids := s.List()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// IsFavorite reports whether id is stored
func (s *Store) IsFavorite(id string) bool {
	for _, fav := range s.List() {
		if fav == id {
			return true
		}
	}
	return false
}

// Toggle removes every occurrence of id if present, otherwise appends it.
// It returns the new favorite state of id.
func (s *Store) Toggle(id string) (bool, error) {
	ids := s.List()
	kept := make([]string, 0, len(ids)+1)
	found := false
	for _, fav := range ids {
		if fav == id {
			found = true
			continue
		}
		kept = append(kept, fav)
	}
	if !found {
		kept = append(kept, id)
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return found, fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.backend.Set(StorageKey, string(data)); err != nil {
		return found, fmt.Errorf("save favorites: %w", err)
	}
	return !found, nil
}

// Clear drops all favorites
func (s *Store) Clear() error {
	return s.backend.Remove(StorageKey)
}
