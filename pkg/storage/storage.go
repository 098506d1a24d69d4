// Package storage holds the small key-value stores that stand in for a
// browser's local and session storage.
package storage

// Store is a string key-value store
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool)
	// Set stores value under key
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
