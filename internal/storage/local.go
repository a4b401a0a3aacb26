package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps images in a directory on disk. The HTTP layer serves the
// same directory under /images/.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}

	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, u Upload) (string, error) {
	err := u.Validate()
	if err != nil {
		return "", err
	}

	_, ext, _ := DetectImage(u.Data)
	key := newKey(ext)

	name, err := keyName(key)
	if err != nil {
		return "", err
	}

	err = os.WriteFile(filepath.Join(s.dir, name), u.Data, 0o644)
	if err != nil {
		return "", err
	}

	return key, nil
}

// Delete removes a stored image. Removing an image that is already gone is
// not an error.
func (s *LocalStore) Delete(ctx context.Context, path string) error {
	name, err := keyName(path)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
