// Package render implements render orchestration: wraps registry's
// resolve/manifest-load with the render filesystem and external
// compiler, optional PDF persistence, and render-log appends on both
// success and failure.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rkstgr/papermake-sub000/caddress"
	"github.com/rkstgr/papermake-sub000/compiler"
	"github.com/rkstgr/papermake-sub000/internal/dcontext"
	"github.com/rkstgr/papermake-sub000/reference"
	"github.com/rkstgr/papermake-sub000/registry"
	"github.com/rkstgr/papermake-sub000/renderfs"
	"github.com/rkstgr/papermake-sub000/renderlog"
	"github.com/rkstgr/papermake-sub000/storagedriver"
)

// CompilationError surfaces a compiler failure with its concatenated
// diagnostic messages.
type CompilationError struct {
	Diagnostics []compiler.Diagnostic
}

func (e *CompilationError) Error() string {
	msg := "render: compilation failed"
	for _, d := range e.Diagnostics {
		msg += fmt.Sprintf("; %s", d.Message)
	}
	return msg
}

// Orchestrator ties the registry core, render filesystem, compiler,
// and render log together into one render operation.
type Orchestrator struct {
	Driver     storagedriver.StorageDriver
	Registry   *registry.Registry
	Compiler   compiler.Compiler
	Log        renderlog.Store
	PersistPDF bool // the "pdf-persist" configuration option
}

// New returns an Orchestrator wired to the given collaborators.
func New(driver storagedriver.StorageDriver, reg *registry.Registry, comp compiler.Compiler, log renderlog.Store, persistPDF bool) *Orchestrator {
	return &Orchestrator{Driver: driver, Registry: reg, Compiler: comp, Log: log, PersistPDF: persistPDF}
}

// Result is the outcome of a render operation.
type Result struct {
	PDF            []byte
	ManifestDigest string
	DataDigest     string
	DurationMS     uint32
}

// Render resolves referenceText to a manifest, compiles its
// entrypoint against data, optionally persists the PDF blob, and
// appends a render-log record regardless of outcome.
func (o *Orchestrator) Render(ctx context.Context, referenceText string, data map[string]any) (*Result, error) {
	log := dcontext.GetLogger(ctx)
	start := time.Now()

	ref, parseErr := reference.Parse(referenceText)
	dataDigest, digestErr := hashData(data)

	record := func(manifestDigest, pdfDigest, errText string, success bool, pdfSize int) {
		name, tag := "", ""
		if parseErr == nil {
			name, tag = ref.Name, ref.Tag
		}
		durationMS := uint32(time.Since(start).Milliseconds())
		var rec renderlog.Record
		if success {
			rec = renderlog.NewSuccess(referenceText, name, tag, manifestDigest, dataDigest, pdfDigest, durationMS, uint32(pdfSize))
		} else {
			rec = renderlog.NewFailure(referenceText, name, tag, manifestDigest, dataDigest, errText, durationMS)
		}
		if err := o.Log.Append(ctx, rec); err != nil {
			log.WithError(err).Warn("render: failed to append render-log record")
		}
	}

	if digestErr != nil {
		record("", "", digestErr.Error(), false, 0)
		return nil, digestErr
	}

	manifestDigest, err := o.Registry.Resolve(ctx, referenceText)
	if err != nil {
		record("", "", err.Error(), false, 0)
		return nil, err
	}

	m, err := o.Registry.LoadManifest(ctx, manifestDigest)
	if err != nil {
		record(manifestDigest, "", err.Error(), false, 0)
		return nil, err
	}

	fs, err := renderfs.Load(ctx, o.Driver, m)
	if err != nil {
		record(manifestDigest, "", err.Error(), false, 0)
		return nil, err
	}

	entryBytes, err := fs.Entrypoint()
	if err != nil {
		record(manifestDigest, "", err.Error(), false, 0)
		return nil, err
	}
	if !utf8.Valid(entryBytes) {
		err := fmt.Errorf("render: entrypoint is not valid UTF-8")
		record(manifestDigest, "", err.Error(), false, 0)
		return nil, err
	}

	pdf, diagnostics, err := o.Compiler.Compile(ctx, string(entryBytes), fs.GetFile, data)
	if err != nil {
		record(manifestDigest, "", err.Error(), false, 0)
		return nil, err
	}
	if pdf == nil {
		cerr := &CompilationError{Diagnostics: diagnostics}
		record(manifestDigest, "", cerr.Error(), false, 0)
		return nil, cerr
	}

	pdfDigest := caddress.Hash(pdf)
	if o.PersistPDF {
		if err := o.Driver.Put(ctx, caddress.PdfKey(pdfDigest), pdf); err != nil {
			log.WithError(err).Warn("render: failed to persist PDF blob")
		}
	}

	durationMS := uint32(time.Since(start).Milliseconds())
	record(manifestDigest, pdfDigest, "", true, len(pdf))

	return &Result{PDF: pdf, ManifestDigest: manifestDigest, DataDigest: dataDigest, DurationMS: durationMS}, nil
}

// hashData computes the content digest of data's canonical JSON
// serialization, so identical render inputs always hash identically
// regardless of key insertion order (map keys are sorted by
// encoding/json, the same property manifest relies on for its own
// canonical form).
func hashData(data map[string]any) (string, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("render: serializing data: %w", err)
	}
	return caddress.Hash(encoded), nil
}
