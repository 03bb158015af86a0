// Package theme persists the visitor's light/dark display preference.
package theme

import (
	"errors"
	"strconv"
)

// Key is the storage key of the preference.
const Key = "darkMode"

// ErrNotSet is returned by a Store when no value exists for a key.
var ErrNotSet = errors.New("theme: preference not set")

// Store is durable key/value storage local to one visitor.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Load reads the preference once. A missing, unparsable or unreadable value
// means light mode.
func Load(s Store) bool {
	if s == nil {
		return false
	}
	raw, err := s.Get(Key)
	if err != nil {
		return false
	}
	dark, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return dark
}

// Toggle flips current and writes the new value back. The new value is
// returned even when the write fails.
func Toggle(s Store, current bool) (bool, error) {
	next := !current
	return next, Save(s, next)
}

// Save writes dark as "true" or "false".
func Save(s Store, dark bool) error {
	if s == nil {
		return nil
	}
	return s.Set(Key, Encode(dark))
}

// Encode returns the stored string form of a preference.
func Encode(dark bool) string {
	return strconv.FormatBool(dark)
}

// Class returns the class name applied to the root element.
func Class(dark bool) string {
	if dark {
		return "dark"
	}
	return ""
}
