package storage

import (
	"errors"
	"path/filepath"
)

const (
	// Ext is the extension for every persisted object.
	Ext = ".json"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a persisted object,
// Dir is relative to the root of the storage implementation.
type Key struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

// NewKey creates a key for the given name under the given directory path elements.
func NewKey(name string, dir ...string) Key {
	return Key{
		Dir:  filepath.Join(dir...),
		Name: name,
	}
}

// Path returns the relative file path of the key.
func (k Key) Path() string {
	return filepath.Join(k.Dir, k.Name+Ext)
}

func (k Key) String() string {
	return k.Path()
}

// Persistence stores and loads arbitrary values for the given key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
