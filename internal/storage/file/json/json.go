package json

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/drakos74/syllable/internal/storage"
)

// Save saves the given json struct into the given path with the provided filename.
func Save(filePath string, fileName string, value interface{}) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	// create the output file
	p := filepath.Join(filePath, fileName)
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", p, err)
	}
	defer f.Close()

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode '%+v': %w", p, err)
	}

	// write the file
	_, err = f.Write(b)
	if err != nil {
		return fmt.Errorf("could not write bytes to file '%v' : %w", p, err)
	}

	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {

	p := filepath.Join(filePath, fileName)

	data, err := ioutil.ReadFile(p)
	if err != nil {
		return fmt.Errorf("could not read file '%s' %s: %w", p, err.Error(), storage.NotFoundErr)
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal '%s' %s: %w", p, err.Error(), storage.CouldNotLoadErr)
	}

	return nil
}

// BlobStorage persists every key as a json file under the root directory.
type BlobStorage struct {
	root string
}

// NewJsonBlob creates a new json file storage rooted at the given directory.
func NewJsonBlob(root ...string) *BlobStorage {
	return &BlobStorage{root: filepath.Join(root...)}
}

func (s *BlobStorage) Store(k storage.Key, value interface{}) error {
	return Save(filepath.Join(s.root, k.Dir), k.Name+storage.Ext, value)
}

func (s *BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(filepath.Join(s.root, k.Dir), k.Name+storage.Ext, value)
}

// File loads a json file given by its full path.
func File(path string, value interface{}) error {
	return Load(filepath.Dir(path), filepath.Base(path), value)
}
