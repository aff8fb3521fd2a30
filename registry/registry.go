// Package registry implements the registry core: publish, resolve,
// and list-templates, orchestrating the content-address, reference,
// bundle, and manifest packages over a storagedriver.StorageDriver.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rkstgr/papermake-sub000/bundle"
	"github.com/rkstgr/papermake-sub000/caddress"
	"github.com/rkstgr/papermake-sub000/internal/dcontext"
	"github.com/rkstgr/papermake-sub000/manifest"
	"github.com/rkstgr/papermake-sub000/reference"
	"github.com/rkstgr/papermake-sub000/storagedriver"
)

// listConcurrency bounds the number of manifest loads list-templates
// runs at once.
const listConcurrency = 8

// Registry is the content-addressed template registry core. It owns
// the logical blobs/, manifests/, refs/ namespace within the
// configured storage driver.
type Registry struct {
	driver storagedriver.StorageDriver
}

// New returns a Registry backed by driver.
func New(driver storagedriver.StorageDriver) *Registry {
	return &Registry{driver: driver}
}

// TemplateNotFoundError reports that a reference's tag has no
// matching ref in storage.
type TemplateNotFoundError struct {
	Reference string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("registry: template not found: %s", e.Reference)
}

// HashMismatchError reports that a digest-pinned reference resolved
// to a different digest than the one it pinned.
type HashMismatchError struct {
	Reference string
	Expected  string
	Actual    string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("registry: hash mismatch for %s: expected %s, got %s", e.Reference, e.Expected, e.Actual)
}

// InvalidReferenceError wraps a reference parse failure.
type InvalidReferenceError struct {
	Reference string
	Err       error
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("registry: invalid reference %q: %s", e.Reference, e.Err)
}

func (e *InvalidReferenceError) Unwrap() error { return e.Err }

// Publish stages a bundle's files as content-addressed blobs, builds
// and stores its manifest, and moves the given tag to point at it.
// Blob writes happen-before the manifest write, which happens-before
// the ref write, so a reader resolving the tag never observes blobs
// missing for the manifest it points to.
func (r *Registry) Publish(ctx context.Context, b *bundle.Bundle, namespacePath, tag string) (string, error) {
	log := dcontext.GetLogger(ctx)

	if err := b.Validate(); err != nil {
		return "", err
	}

	files := make(map[string]string)
	for path, contents := range b.AllFiles() {
		digest := caddress.Hash(contents)
		if err := r.driver.Put(ctx, caddress.BlobKey(digest), contents); err != nil {
			return "", fmt.Errorf("registry: writing blob for %q: %w", path, err)
		}
		files[path] = digest
	}

	m, err := manifest.New(files, manifest.Metadata{Name: b.Metadata.Name, Author: b.Metadata.Author})
	if err != nil {
		return "", err
	}

	manifestDigest := m.Digest()
	if err := r.driver.Put(ctx, caddress.ManifestKey(manifestDigest), m.Serialize()); err != nil {
		return "", fmt.Errorf("registry: writing manifest: %w", err)
	}

	refKey := caddress.RefKey(namespacePath, tag)
	if err := r.driver.Put(ctx, refKey, []byte(manifestDigest)); err != nil {
		return "", fmt.Errorf("registry: moving tag %s: %w", refKey, err)
	}

	log.WithFields(map[string]any{
		"namespace_path":  namespacePath,
		"tag":             tag,
		"manifest_digest": manifestDigest,
	}).Info("registry: published template")

	return manifestDigest, nil
}

// Resolve parses referenceText and follows its tag to a manifest
// digest, verifying any digest pin it carries.
func (r *Registry) Resolve(ctx context.Context, referenceText string) (string, error) {
	ref, err := reference.Parse(referenceText)
	if err != nil {
		return "", &InvalidReferenceError{Reference: referenceText, Err: err}
	}

	refKey := caddress.RefKey(ref.NamespacePath(), ref.Tag)
	contents, err := r.driver.Get(ctx, refKey)
	if err != nil {
		if storagedriver.IsNotFound(err) {
			return "", &TemplateNotFoundError{Reference: referenceText}
		}
		return "", fmt.Errorf("registry: reading ref %s: %w", refKey, err)
	}

	digest := string(contents)
	if ref.HasDigest() && ref.Digest != digest {
		return "", &HashMismatchError{Reference: referenceText, Expected: ref.Digest, Actual: digest}
	}

	return digest, nil
}

// LoadManifest fetches and deserializes the manifest stored under
// digest.
func (r *Registry) LoadManifest(ctx context.Context, digest string) (*manifest.Manifest, error) {
	contents, err := r.driver.Get(ctx, caddress.ManifestKey(digest))
	if err != nil {
		return nil, fmt.Errorf("registry: reading manifest %s: %w", digest, err)
	}
	return manifest.Deserialize(contents)
}

// TemplateSummary is one entry of list-templates' result: a template
// identity with its known tags and the metadata of its representative
// manifest.
type TemplateSummary struct {
	FullName string
	Tags     []string
	Metadata manifest.Metadata
}

// ListTemplates enumerates every ref key, groups by namespace path,
// and loads each group's representative manifest (the "latest" tag if
// present, else the alphabetically first tag) concurrently. Entries
// whose manifest fails to load are skipped rather than failing the
// whole operation, since listing is a discovery operation.
func (r *Registry) ListTemplates(ctx context.Context) ([]TemplateSummary, error) {
	keys, err := r.driver.List(ctx, "refs/")
	if err != nil {
		return nil, fmt.Errorf("registry: listing refs: %w", err)
	}

	groups := make(map[string][]string)
	for _, key := range keys {
		namespacePath, tag, ok := splitRefKey(key)
		if !ok {
			continue
		}
		groups[namespacePath] = append(groups[namespacePath], tag)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	slots := make([]*TemplateSummary, len(names))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)

	for i, name := range names {
		i, name := i, name
		tags := append([]string(nil), groups[name]...)
		sort.Strings(tags)

		g.Go(func() error {
			repTag := representativeTag(tags)
			digest, err := r.driver.Get(gctx, caddress.RefKey(name, repTag))
			if err != nil {
				dcontext.GetLogger(ctx).WithError(err).Warnf("registry: skipping %s: cannot read ref", name)
				return nil
			}

			m, err := r.LoadManifest(gctx, string(digest))
			if err != nil {
				dcontext.GetLogger(ctx).WithError(err).Warnf("registry: skipping %s: cannot load manifest", name)
				return nil
			}

			mu.Lock()
			slots[i] = &TemplateSummary{FullName: name, Tags: tags, Metadata: m.Metadata}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := make([]TemplateSummary, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			summaries = append(summaries, *s)
		}
	}
	return summaries, nil
}

// representativeTag picks "latest" if present, else the
// alphabetically first tag (tags is already sorted).
func representativeTag(tags []string) string {
	for _, t := range tags {
		if t == reference.DefaultTag {
			return t
		}
	}
	if len(tags) == 0 {
		return reference.DefaultTag
	}
	return tags[0]
}

// splitRefKey parses "refs/<namespacePath>/<tag>" into its namespace
// path and tag: the final path segment is the tag, everything between
// "refs/" and the tag is the namespace path.
func splitRefKey(key string) (namespacePath, tag string, ok bool) {
	const prefix = "refs/"
	if !strings.HasPrefix(key, prefix) {
		return "", "", false
	}
	rest := key[len(prefix):]
	idx := strings.LastIndexByte(rest, '/')
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}
