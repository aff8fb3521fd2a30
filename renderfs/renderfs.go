// Package renderfs implements the render filesystem: a synchronous
// file-lookup facade over the blob store, backed by a resolved
// manifest. Because blob store calls may suspend but the compiler's
// callback must not, the filesystem preloads every file the manifest
// declares before the compiler ever calls GetFile.
package renderfs

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkstgr/papermake-sub000/caddress"
	"github.com/rkstgr/papermake-sub000/manifest"
	"github.com/rkstgr/papermake-sub000/storagedriver"
)

// FileNotFoundError reports a path absent from the manifest's file
// set. It is the only error class GetFile ever surfaces.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("renderfs: file not found: %s", e.Path)
}

// FS serves a resolved manifest's files to the document compiler. It
// is owned by a single render and not safe to share across renders.
type FS struct {
	manifest *manifest.Manifest
	files    map[string][]byte
}

// Load fetches every file declared in m from driver, eagerly, so the
// later GetFile calls the compiler makes are synchronous and cannot
// fail for any reason other than FileNotFoundError.
func Load(ctx context.Context, driver storagedriver.StorageDriver, m *manifest.Manifest) (*FS, error) {
	files := make(map[string][]byte, len(m.Files))
	for path, digest := range m.Files {
		contents, err := driver.Get(ctx, caddress.BlobKey(digest))
		if err != nil {
			return nil, fmt.Errorf("renderfs: loading %q (digest %s): %w", path, digest, err)
		}
		files[path] = contents
	}
	return &FS{manifest: m, files: files}, nil
}

// GetFile returns the bytes stored at path, matching the manifest's
// declared digest. A leading "/" is stripped before lookup. Any path
// not present in the manifest yields FileNotFoundError, never any
// other error class.
func (fs *FS) GetFile(path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "/")
	contents, ok := fs.files[path]
	if !ok {
		return nil, &FileNotFoundError{Path: path}
	}
	return contents, nil
}

// Entrypoint returns the bytes of the manifest's designated entry
// file.
func (fs *FS) Entrypoint() ([]byte, error) {
	return fs.GetFile(fs.manifest.Entrypoint)
}
