// Package filesystem implements storagedriver.StorageDriver over a
// local directory tree, mapping storage keys directly onto relative
// file paths rooted at a configured base directory.
package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rkstgr/papermake-sub000/storagedriver"
)

// Driver is a filesystem-backed storagedriver.StorageDriver.
type Driver struct {
	rootDir string
}

var _ storagedriver.StorageDriver = (*Driver)(nil)

// New returns a driver rooted at rootDir, creating it if necessary.
func New(rootDir string) (*Driver, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, err
	}
	return &Driver{rootDir: rootDir}, nil
}

func (d *Driver) fullPath(key string) (string, error) {
	if strings.Contains(key, "..") {
		return "", &storagedriver.InvalidKeyError{Key: key, Reason: "contains '..'"}
	}
	return filepath.Join(d.rootDir, filepath.FromSlash(key)), nil
}

func (d *Driver) Put(_ context.Context, key string, contents []byte) error {
	p, err := d.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	p, err := d.fullPath(key)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storagedriver.NotFoundError{Key: key}
		}
		return nil, err
	}
	return b, nil
}

func (d *Driver) Exists(_ context.Context, key string) (bool, error) {
	p, err := d.fullPath(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (d *Driver) Delete(_ context.Context, key string) error {
	p, err := d.fullPath(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *Driver) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(d.rootDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
