package json

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/syllable/internal/storage"
	"github.com/stretchr/testify/assert"
)

type artifact struct {
	Name   string    `json:"name"`
	Scores []float64 `json:"scores"`
}

func TestBlobStorage(t *testing.T) {

	root := t.TempDir()
	s := NewJsonBlob(root, "select_output")

	k := storage.NewKey("svm_100samples_replicate0", "svm")
	err := s.Store(k, artifact{Name: "svm", Scores: []float64{0.5, 0.75}})
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "select_output", "svm", "svm_100samples_replicate0.json"))
	assert.NoError(t, err)

	var a artifact
	err = s.Load(k, &a)
	assert.NoError(t, err)
	assert.Equal(t, "svm", a.Name)
	assert.Equal(t, []float64{0.5, 0.75}, a.Scores)

	err = s.Load(storage.NewKey("missing"), &a)
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}

func TestLocalStorage(t *testing.T) {

	s := NewLocalStorage()

	k := storage.NewKey("summary")
	err := s.Store(k, artifact{Name: "knn"})
	assert.NoError(t, err)
	assert.Equal(t, []storage.Key{k}, s.Keys())

	var a artifact
	err = s.Load(k, &a)
	assert.NoError(t, err)
	assert.Equal(t, "knn", a.Name)

	err = s.Load(storage.NewKey("other"), &a)
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}
