// Package manifest implements the serialized map binding a template
// identity at one point in time: entrypoint, ordered path->digest
// mapping, and metadata. Serialization is canonical so that two
// logically identical manifests always hash to the same digest.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rkstgr/papermake-sub000/bundle"
	"github.com/rkstgr/papermake-sub000/caddress"
)

// Metadata describes the template a manifest identifies.
type Metadata struct {
	Name   string `json:"name"`
	Author string `json:"author"`
}

// wireManifest is the exact JSON wire shape: no additional top-level
// keys are permitted on read.
type wireManifest struct {
	Entrypoint string            `json:"entrypoint"`
	Files      map[string]string `json:"files"`
	Metadata   Metadata          `json:"metadata"`
}

// Manifest binds a template's file set and metadata. It keeps the
// exact canonical bytes it was built or parsed from alongside the
// struct, so Serialize never needs to re-derive them and Digest is
// always the digest of what was actually stored.
type Manifest struct {
	Entrypoint string
	Files      map[string]string // relative path -> digest
	Metadata   Metadata

	canonical []byte
}

// ValidationError reports why a manifest failed validation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "manifest: invalid: " + e.Reason
}

// New validates files, metadata, and the presence of the entrypoint,
// then builds the canonical serialized form.
func New(files map[string]string, metadata Metadata) (*Manifest, error) {
	return build(bundle.Entrypoint, files, metadata)
}

func build(entrypoint string, files map[string]string, metadata Metadata) (*Manifest, error) {
	if err := validate(entrypoint, files, metadata); err != nil {
		return nil, err
	}
	m := &Manifest{Entrypoint: entrypoint, Files: files, Metadata: metadata}
	canonical, err := m.marshal()
	if err != nil {
		return nil, err
	}
	m.canonical = canonical
	return m, nil
}

func validate(entrypoint string, files map[string]string, metadata Metadata) error {
	if len(files) == 0 {
		return &ValidationError{Reason: "files must be non-empty"}
	}
	if _, ok := files[entrypoint]; !ok {
		return &ValidationError{Reason: fmt.Sprintf("files must contain the entrypoint %q", entrypoint)}
	}
	for path, digest := range files {
		if err := validPath(path); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("path %q: %s", path, err)}
		}
		if !caddress.IsValid(digest) {
			return &ValidationError{Reason: fmt.Sprintf("path %q has a malformed digest %q", path, digest)}
		}
	}
	if strings.TrimSpace(metadata.Name) == "" {
		return &ValidationError{Reason: "metadata.name must be non-empty"}
	}
	if strings.TrimSpace(metadata.Author) == "" {
		return &ValidationError{Reason: "metadata.author must be non-empty"}
	}
	return nil
}

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

// marshal produces the canonical wire bytes: pretty-printed JSON.
// encoding/json sorts map[string]string keys lexically when encoding,
// which is the stable ordering digest determinism depends on, so no
// extra sort step is needed here.
func (m *Manifest) marshal() ([]byte, error) {
	w := wireManifest{Entrypoint: m.Entrypoint, Files: m.Files, Metadata: m.Metadata}
	return json.MarshalIndent(w, "", "  ")
}

// Serialize returns the canonical bytes of the manifest, suitable for
// hashing and storage under its manifest key.
func (m *Manifest) Serialize() []byte {
	return m.canonical
}

// Digest returns the content digest of the manifest's canonical bytes.
func (m *Manifest) Digest() string {
	return caddress.Hash(m.canonical)
}

// Deserialize parses bytes into a Manifest, rejecting unknown
// top-level keys and re-running every validation New performs, so a
// tampered or malformed manifest is never accepted.
func Deserialize(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireManifest
	if err := dec.Decode(&w); err != nil {
		return nil, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}

	m, err := build(w.Entrypoint, w.Files, w.Metadata)
	if err != nil {
		return nil, err
	}
	m.canonical = append([]byte(nil), data...)
	return m, nil
}

// AddFile returns a copy of the manifest with path bound to digest,
// re-validated as a whole.
func (m *Manifest) AddFile(path, digest string) (*Manifest, error) {
	files := make(map[string]string, len(m.Files)+1)
	for p, d := range m.Files {
		files[p] = d
	}
	files[path] = digest
	return build(m.Entrypoint, files, m.Metadata)
}

// RemoveFile returns a copy of the manifest with path removed. It
// refuses to remove the entrypoint.
func (m *Manifest) RemoveFile(path string) (*Manifest, error) {
	if path == m.Entrypoint {
		return nil, &ValidationError{Reason: "cannot remove the entrypoint"}
	}
	files := make(map[string]string, len(m.Files))
	for p, d := range m.Files {
		if p != path {
			files[p] = d
		}
	}
	return build(m.Entrypoint, files, m.Metadata)
}
