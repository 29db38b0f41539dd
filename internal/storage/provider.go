// Package storage maps item names onto files directly inside a storage root.
package storage

// Provider is the interface for item file operations. Every name is a bare
// file name relative to the storage root.
type Provider interface {
	// Root returns the storage root, always ending in a path separator.
	Root() string
	// Exists reports whether an item file is present.
	Exists(name string) (bool, error)
	// Create makes an empty item file. It fails with apperr.ErrAlreadyExists
	// when the file is already there.
	Create(name string) error
	// Delete removes an item file. It fails with apperr.ErrNotFound when the
	// file is absent.
	Delete(name string) error
	// Entries returns the names of all item files in enumeration order.
	Entries() ([]string, error)
}
