// Package compiler declares the external document-compiler boundary
// the registry core depends on: turning an entrypoint's text plus a
// file-lookup callback and render data into PDF bytes.
// The core never implements a compiler itself and only sees this
// interface. The only implementation in this module is Fake, which
// cmd/registry's render command also uses.
package compiler

import "context"

// FileLookup is the callback a Compiler invokes to resolve imports
// and assets referenced by the entrypoint, backed by a render
// filesystem.
type FileLookup func(path string) ([]byte, error)

// Diagnostic is one compiler-reported issue, such as a parse or type
// error pinpointed to a location in the source.
type Diagnostic struct {
	Message string
	File    string
	Line    int
	Column  int
}

// Compiler turns an entrypoint's source text into PDF bytes, given a
// file-lookup callback for imports/assets and arbitrary render data.
type Compiler interface {
	Compile(ctx context.Context, entryText string, lookup FileLookup, data map[string]any) (pdf []byte, diagnostics []Diagnostic, err error)
}
