// Package caddress implements content-address utilities: hashing,
// storage key derivation, and integrity verification for the
// template registry's blob, manifest, and reference layout.
package caddress

import (
	"strings"

	digest "github.com/opencontainers/go-digest"
)

// Algorithm is the only hash algorithm the registry supports.
const Algorithm = digest.SHA256

// Hash returns the SHA-256 digest of content in canonical textual
// form: "sha256:" followed by 64 lowercase hex characters.
func Hash(content []byte) string {
	return Algorithm.FromBytes(content).String()
}

// IsValid reports whether d has the well-formed digest shape:
// algorithm prefix, separator, and a hex value of the expected
// length for that algorithm.
func IsValid(d string) bool {
	parsed, err := digest.Parse(d)
	if err != nil {
		return false
	}
	return parsed.Algorithm() == Algorithm
}

// Verify recomputes the hash of content and compares it against
// expected. It never suspends and never returns an I/O error: a
// malformed expected digest simply fails to verify.
func Verify(content []byte, expected string) bool {
	return Hash(content) == expected
}

// stripPrefix removes the "sha256:" prefix from d, tolerating an
// already-bare hex value.
func stripPrefix(d string) string {
	if idx := strings.IndexByte(d, ':'); idx >= 0 {
		return d[idx+1:]
	}
	return d
}

// BlobKey returns the storage key for a content blob: blobs/sha256/<hex>.
func BlobKey(d string) string {
	return "blobs/sha256/" + stripPrefix(d)
}

// ManifestKey returns the storage key for a manifest blob:
// manifests/sha256/<hex>.
func ManifestKey(d string) string {
	return "manifests/sha256/" + stripPrefix(d)
}

// RefKey returns the storage key for a mutable tag reference:
// refs/<namespacePath>/<tag>. namespacePath is either "name" or
// "namespace/name".
func RefKey(namespacePath, tag string) string {
	return "refs/" + namespacePath + "/" + tag
}

// DataKey returns the storage key for render input data:
// data/sha256/<hex>.
func DataKey(d string) string {
	return "data/sha256/" + stripPrefix(d)
}

// PdfKey returns the storage key for a rendered PDF: pdfs/sha256/<hex>.
func PdfKey(d string) string {
	return "pdfs/sha256/" + stripPrefix(d)
}
