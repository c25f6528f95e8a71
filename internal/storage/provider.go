// Package storage defines the library file-system abstraction.
package storage

import "time"

// Entry describes one stored file.
type Entry struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for library file operations. Paths are relative
// to the library root.
type Provider interface {
	// List returns every file under dir whose name ends in suffix. A missing
	// dir yields an empty list.
	List(dir, suffix string) ([]Entry, error)
	// Names returns the paths of the files directly in dir whose name ends
	// in suffix, without reading them. A missing dir yields nil.
	Names(dir, suffix string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether path names an existing file.
	Exists(path string) (bool, error)
}
