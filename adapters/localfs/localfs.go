// Package localfs persists run artifacts on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/finextract/storage"
)

type Store struct {
	root string
}

// NewStore creates a DataStore rooted at dir. The directory is created if it
// does not exist.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, storage.NewStorageError("NewStore", "", nil, storage.ErrCodeInvalidArgument, "root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storage.NewStorageError("NewStore", dir, err, storage.ErrCodeInternal, "failed to create root directory")
	}
	return &Store{root: dir}, nil
}

// resolve maps a key to a path under root, rejecting escapes.
func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", storage.NewStorageError("resolve", key, nil, storage.ErrCodeInvalidArgument, "invalid key")
	}
	return filepath.Join(s.root, clean), nil
}

func (s *Store) Put(ctx context.Context, key string, data io.Reader, options ...storage.PutOption) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storage.NewStorageError("Put", key, err, storage.ErrCodeInternal, "context cancelled")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return storage.NewStorageError("Put", key, err, storage.ErrCodeInternal, "failed to create directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return storage.NewStorageError("Put", key, err, storage.ErrCodeInternal, "failed to create file")
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return storage.NewStorageError("Put", key, err, storage.ErrCodeInternal, "failed to write file")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.NewStorageError("Get", key, err, storage.ErrCodeNotFound, "object not found")
		}
		return nil, storage.NewStorageError("Get", key, err, storage.ErrCodeInternal, "failed to open file")
	}
	return f, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storage.NewStorageError("Delete", key, err, storage.ErrCodeInternal, "failed to delete file")
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, storage.NewStorageError("List", prefix, err, storage.ErrCodeInternal, "failed to list files")
	}

	return objects, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storage.NewStorageError("Exists", key, err, storage.ErrCodeInternal, "failed to stat file")
	}
	return true, nil
}
