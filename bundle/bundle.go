// Package bundle implements the in-memory staging object for a
// template prior to publish: entrypoint bytes, metadata, and any
// number of auxiliary files, validated before the registry core ever
// touches the blob store.
package bundle

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Entrypoint is the fixed relative path every bundle's primary source
// file is staged under.
const Entrypoint = "main.typ"

// Metadata describes the template being published.
type Metadata struct {
	Name   string
	Author string
}

// Bundle is a pre-publish staging object: the entrypoint's bytes plus
// any number of additional files (schemas, images, fonts, imports)
// under relative paths, plus descriptive metadata.
type Bundle struct {
	EntrypointBytes []byte
	Metadata        Metadata
	Files           map[string][]byte // extra files, path -> bytes; entrypoint excluded
}

// New constructs a Bundle from an entrypoint and metadata, with no
// extra files. Use AddFile to stage additional files before Validate.
func New(entrypoint []byte, metadata Metadata) *Bundle {
	return &Bundle{
		EntrypointBytes: entrypoint,
		Metadata:        metadata,
		Files:           make(map[string][]byte),
	}
}

// AddFile stages an additional file under path, which must not be
// the entrypoint path.
func (b *Bundle) AddFile(path string, contents []byte) error {
	if path == Entrypoint {
		return fmt.Errorf("bundle: %q is reserved for the entrypoint", Entrypoint)
	}
	if b.Files == nil {
		b.Files = make(map[string][]byte)
	}
	b.Files[path] = contents
	return nil
}

// Size returns the total byte size of the entrypoint plus every
// staged extra file.
func (b *Bundle) Size() int {
	total := len(b.EntrypointBytes)
	for _, contents := range b.Files {
		total += len(contents)
	}
	return total
}

// HasSchema reports whether a schema.json file is staged.
func (b *Bundle) HasSchema() bool {
	_, ok := b.Files["schema.json"]
	return ok
}

// ValidationError reports why a bundle failed Validate.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "bundle: invalid: " + e.Reason
}

// Validate checks every invariant a bundle must satisfy before
// publish is allowed to touch the blob store: a valid UTF-8
// entrypoint, non-empty metadata, well-formed relative paths for
// every extra file, and (if present) a JSON-parseable schema.json.
func (b *Bundle) Validate() error {
	if !utf8.Valid(b.EntrypointBytes) {
		return &ValidationError{Reason: "entrypoint is not valid UTF-8"}
	}
	if strings.TrimSpace(b.Metadata.Name) == "" {
		return &ValidationError{Reason: "metadata.name must be non-empty"}
	}
	if strings.TrimSpace(b.Metadata.Author) == "" {
		return &ValidationError{Reason: "metadata.author must be non-empty"}
	}
	for path := range b.Files {
		if err := validPath(path); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("file %q: %s", path, err)}
		}
	}
	if schema, ok := b.Files["schema.json"]; ok {
		var v any
		if err := json.Unmarshal(schema, &v); err != nil {
			return &ValidationError{Reason: "schema.json is not valid JSON: " + err.Error()}
		}
	}
	return nil
}

// validPath requires a relative path: non-empty, no leading slash,
// no ".." segment.
func validPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("must be relative, not start with '/'")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return fmt.Errorf("contains an empty path segment")
		}
		if seg == ".." {
			return fmt.Errorf("contains a '..' segment")
		}
	}
	return nil
}

// AllFiles returns every file the bundle will publish, including the
// entrypoint, keyed by relative path.
func (b *Bundle) AllFiles() map[string][]byte {
	out := make(map[string][]byte, len(b.Files)+1)
	for path, contents := range b.Files {
		out[path] = contents
	}
	out[Entrypoint] = b.EntrypointBytes
	return out
}
