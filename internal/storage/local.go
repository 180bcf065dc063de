package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStore writes uploaded images to a directory on disk and hands back
// the relative path as the opaque blob locator consumed by the pic service.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Save stores an upload and returns its locator. The name embeds the owner
// and a timestamp so concurrent uploads of the same filename cannot collide.
func (s *LocalStore) Save(ownerID, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s-%d-%s", ownerID, time.Now().UnixNano(), filepath.Base(filename))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
