package imagecache

import "time"

// Entry describes one stored object.
type Entry struct {
	Name    string
	ModTime time.Time
}

// Store is the blob backend for cached avatars. DiskStore is the only
// implementation here; an object-store backend only needs these five calls.
type Store interface {
	// Exists reports whether name is already stored.
	Exists(name string) bool
	// Put persists data under name. When overwrite is false and the entry
	// exists, Put is a no-op.
	Put(name string, data []byte, contentType string, overwrite bool) error
	// PublicURL returns the reference front-end consumers can use directly.
	PublicURL(name string) string
	// List returns stored entries whose name starts with prefix ("" for all).
	List(prefix string) ([]Entry, error)
	Remove(name string) error
}
