// Package version exposes the module's import path and build
// version, overridable at link time via -ldflags.
package version

import (
	"fmt"
	"io"
	"os"
)

var mainpkg = "github.com/rkstgr/papermake-sub000"

var version = "v0.1.0+unknown"

var revision = ""

// Package returns the canonical project import path the binary was
// built under.
func Package() string {
	return mainpkg
}

// Version returns the module version the running binary was built
// from.
func Version() string {
	return version
}

// Revision returns the VCS revision used to build the program, if
// set at link time.
func Revision() string {
	return revision
}

// FprintVersion writes "<cmd> <project> <version>" to w, followed by
// a newline.
func FprintVersion(w io.Writer) {
	fmt.Fprintln(w, os.Args[0], Package(), Version())
}

// PrintVersion writes the version information to stdout.
func PrintVersion() {
	FprintVersion(os.Stdout)
}
