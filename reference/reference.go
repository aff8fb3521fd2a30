// Package reference implements the registry's textual reference
// grammar: [namespace/]name[:tag][@digest], parsed right-to-left so
// the delimiters stay unambiguous, and its formatted round-trip.
package reference

import (
	"strings"

	"github.com/rkstgr/papermake-sub000/caddress"
)

// DefaultTag is substituted when a reference omits a tag.
const DefaultTag = "latest"

const (
	minSegmentLen = 1
	maxNameLen    = 255
	maxTagLen     = 128
)

// Reference is the parsed structural form of a textual reference.
type Reference struct {
	Namespace string // optional; empty when the reference is unscoped
	Name      string
	Tag       string
	Digest    string // optional; empty when the reference carries no digest
}

// NamespacePath returns the "[namespace/]name" portion used as the
// prefix of a refs/ storage key.
func (r Reference) NamespacePath() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "/" + r.Name
}

// FullName is an alias for NamespacePath, matching the "[ns/]name"
// display form used by list-templates.
func (r Reference) FullName() string {
	return r.NamespacePath()
}

// IsLatest reports whether the reference resolves the "latest" tag.
func (r Reference) IsLatest() bool {
	return r.Tag == DefaultTag
}

// HasDigest reports whether the reference carries an explicit digest
// pin.
func (r Reference) HasDigest() bool {
	return r.Digest != ""
}

// WithTag returns a copy of r with its tag replaced and any digest
// pin cleared, since a different tag may point elsewhere.
func (r Reference) WithTag(tag string) Reference {
	r.Tag = tag
	r.Digest = ""
	return r
}

// WithDigest returns a copy of r pinned to the given digest.
func (r Reference) WithDigest(d string) Reference {
	r.Digest = d
	return r
}

// String formats the reference back to its textual form:
// [ns/]name:tag[@digest].
func (r Reference) String() string {
	var b strings.Builder
	if r.Namespace != "" {
		b.WriteString(r.Namespace)
		b.WriteByte('/')
	}
	b.WriteString(r.Name)
	b.WriteByte(':')
	b.WriteString(r.Tag)
	if r.Digest != "" {
		b.WriteByte('@')
		b.WriteString(r.Digest)
	}
	return b.String()
}

// ParseError reports why a reference failed to parse. Kind is one of
// the fixed taxonomy values below.
type ParseError struct {
	Kind  string
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return "reference: " + e.Kind + ": " + e.Msg + " (input " + e.Input + ")"
}

// Error kinds, total over all inputs.
const (
	ErrInvalidFormat    = "InvalidFormat"
	ErrInvalidNamespace = "InvalidNamespace"
	ErrInvalidName      = "InvalidName"
	ErrInvalidTag       = "InvalidTag"
	ErrInvalidDigest    = "InvalidDigest"
)

func fail(kind, input, msg string) error {
	return &ParseError{Kind: kind, Input: input, Msg: msg}
}

// Parse parses a textual reference into its structural form.
func Parse(text string) (Reference, error) {
	original := text
	text = strings.ToLower(text)

	if strings.HasPrefix(text, "@") {
		return Reference{}, fail(ErrInvalidFormat, original, "reference cannot start with '@'")
	}

	rest := text
	var dgst string
	if idx := strings.LastIndexByte(rest, '@'); idx >= 0 {
		dgst = rest[idx+1:]
		rest = rest[:idx]
		if dgst == "" {
			return Reference{}, fail(ErrInvalidDigest, original, "empty digest")
		}
		if !caddress.IsValid(dgst) {
			return Reference{}, fail(ErrInvalidDigest, original, "malformed digest")
		}
	}

	tag := DefaultTag
	if idx := strings.LastIndexByte(rest, ':'); idx >= 0 {
		tag = rest[idx+1:]
		rest = rest[:idx]
		if tag == "" {
			return Reference{}, fail(ErrInvalidTag, original, "empty tag")
		}
		if !validSegment(tag, maxTagLen) {
			return Reference{}, fail(ErrInvalidTag, original, "invalid tag characters or length")
		}
	}

	var namespace, name string
	if idx := strings.LastIndexByte(rest, '/'); idx >= 0 {
		namespace = rest[:idx]
		name = rest[idx+1:]
		if namespace == "" {
			return Reference{}, fail(ErrInvalidNamespace, original, "empty namespace")
		}
		if !validSegment(namespace, maxNameLen) {
			return Reference{}, fail(ErrInvalidNamespace, original, "invalid namespace characters or length")
		}
	} else {
		name = rest
	}

	if name == "" {
		return Reference{}, fail(ErrInvalidFormat, original, "missing name")
	}
	if !validSegment(name, maxNameLen) {
		return Reference{}, fail(ErrInvalidName, original, "invalid name characters or length")
	}

	return Reference{Namespace: namespace, Name: name, Tag: tag, Digest: dgst}, nil
}

// validSegment validates a namespace/name/tag segment: 1..maxLen
// lowercase alphanumeric, '.', '-', '_', not beginning or ending with
// '.', '-', or '_'.
func validSegment(s string, maxLen int) bool {
	if len(s) < minSegmentLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
		default:
			return false
		}
	}
	first, last := s[0], s[len(s)-1]
	if first == '.' || first == '-' || first == '_' {
		return false
	}
	if last == '.' || last == '-' || last == '_' {
		return false
	}
	return true
}
