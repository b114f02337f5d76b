// FILE: lixenwraith/yamlsettings/path.go
package settings

import (
	"fmt"
	"strings"
)

// PathSeparator separates the segments of a dotted property path.
const PathSeparator = "."

// Path is a property path split into its segments, e.g. ["server", "port"] for "server.port".
type Path []string

// ParsePath splits a dotted path into segments.
// Empty paths and empty segments (leading, trailing or double dots) are rejected.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return nil, fmt.Errorf("property path cannot be empty")
	}

	segments := strings.Split(path, PathSeparator)
	for _, segment := range segments {
		if !isValidKeySegment(segment) {
			return nil, fmt.Errorf("invalid path segment %q in path %q", segment, path)
		}
	}
	return Path(segments), nil
}

// MustParsePath is like ParsePath but panics on an invalid path.
// Intended for package-level property declarations.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}
	return p
}

// String joins the segments back into dotted form.
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Equal reports whether both paths have identical segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Parent returns all but the last segment. The parent of a single-segment path is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1]
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path with segment appended. The receiver is not modified.
func (p Path) Child(segment string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, segment)
}

// CommonPrefix returns the longest run of identical leading segments of a and b.
func CommonPrefix(a, b Path) Path {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i:i]
}

// SuffixAfter returns the segments of p that remain after dropping the first n.
func SuffixAfter(p Path, n int) Path {
	if n <= 0 {
		return p
	}
	if n >= len(p) {
		return Path{}
	}
	return p[n:]
}
