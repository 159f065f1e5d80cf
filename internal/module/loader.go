package module

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNotFound is returned (wrapped) by loaders when a path does not exist.
var ErrNotFound = errors.New("file not found")

// FileLoader returns the raw text of a script. The interpreter never touches
// the disk except through this interface.
type FileLoader interface {
	Load(path string) (string, error)
}

// OSLoader reads scripts from the local file system.
type OSLoader struct{}

func (OSLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrNotFound, "open %s", path)
		}
		return "", errors.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

// MapLoader serves scripts from memory, keyed by cleaned path.
type MapLoader map[string]string

func (m MapLoader) Load(path string) (string, error) {
	src, ok := m[filepath.Clean(path)]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "open %s", path)
	}
	return src, nil
}
