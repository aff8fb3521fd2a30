// Package inmemory implements storagedriver.StorageDriver over a
// process-local map, for tests and local CLI use without a real
// backend configured.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rkstgr/papermake-sub000/storagedriver"
)

// Driver is an in-memory storagedriver.StorageDriver. The zero value
// is not usable; use New.
type Driver struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storagedriver.StorageDriver = (*Driver)(nil)

// New returns an empty in-memory driver.
func New() *Driver {
	return &Driver{data: make(map[string][]byte)}
}

func (d *Driver) Put(_ context.Context, key string, contents []byte) error {
	cp := make([]byte, len(contents))
	copy(cp, contents)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[key] = cp
	return nil
}

func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.data[key]
	if !ok {
		return nil, &storagedriver.NotFoundError{Key: key}
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (d *Driver) Exists(_ context.Context, key string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.data[key]
	return ok, nil
}

func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.data, key)
	return nil
}

func (d *Driver) List(_ context.Context, prefix string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var keys []string
	for k := range d.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
