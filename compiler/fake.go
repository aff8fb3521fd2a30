package compiler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Fake is a deterministic stand-in Compiler for tests that don't
// depend on a real Typst toolchain. It "compiles" by resolving any
// #import "path" lines through lookup,
// concatenating their bytes after the entry text, and wrapping the
// result to look like a PDF. Entry text containing the marker
// "FAIL" instead produces a diagnostic and no PDF, so tests can
// exercise the compilation-failure path.
type Fake struct{}

// Compile implements Compiler.
func (Fake) Compile(_ context.Context, entryText string, lookup FileLookup, data map[string]any) ([]byte, []Diagnostic, error) {
	if strings.Contains(entryText, "FAIL") {
		return nil, []Diagnostic{{Message: "forced failure marker found", Line: 1, Column: 1}}, nil
	}

	var body bytes.Buffer
	body.WriteString(entryText)

	for _, line := range strings.Split(entryText, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, `#import "`) {
			continue
		}
		path := strings.TrimSuffix(strings.TrimPrefix(line, `#import "`), `"`)
		contents, err := lookup(path)
		if err != nil {
			return nil, []Diagnostic{{Message: fmt.Sprintf("cannot resolve import %q: %s", path, err), File: path}}, nil
		}
		body.Write(contents)
	}

	fmt.Fprintf(&body, "\n%%data:%v", data)

	pdf := append([]byte("%PDF-1.7\n"), body.Bytes()...)
	return pdf, nil, nil
}
