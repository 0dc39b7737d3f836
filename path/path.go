// Package path implements the immutable hierarchical name value used
// throughout nsfs: Path. A Path is a sequence of non-empty components; its
// canonical string form always begins with "/", and repeated or trailing
// slashes are collapsed away on construction.
package path

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path is an immutable, hierarchical name. The zero value is the root path.
type Path struct {
	components []string
}

// Root returns the root path, the singleton "/".
func Root() Path {
	return Path{}
}

// New parses s into a Path. s must be non-empty, start with "/", and contain
// no ":" anywhere. Repeated and trailing "/" are collapsed.
func New(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("empty string: %w", ErrInvalidPath)
	}
	if s[0] != '/' {
		return Path{}, fmt.Errorf("%q does not start with /: %w", s, ErrInvalidPath)
	}
	if strings.ContainsRune(s, ':') {
		return Path{}, fmt.Errorf("%q contains ':': %w", s, ErrInvalidPath)
	}
	var components []string
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue
		}
		components = append(components, c)
	}
	return Path{components: components}, nil
}

// Join returns a new Path with name appended as the last component. name must
// be non-empty and contain neither "/" nor ":".
func (p Path) Join(name string) (Path, error) {
	if name == "" {
		return Path{}, fmt.Errorf("empty component: %w", ErrInvalidPath)
	}
	if strings.ContainsAny(name, "/:") {
		return Path{}, fmt.Errorf("%q: %w", name, ErrInvalidPath)
	}
	components := make([]string, len(p.components)+1)
	copy(components, p.components)
	components[len(p.components)] = name
	return Path{components: components}, nil
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// Parent returns the path without its last component. It fails with
// ErrRootHasNoParent at the root.
func (p Path) Parent() (Path, error) {
	if p.IsRoot() {
		return Path{}, ErrRootHasNoParent
	}
	return Path{components: p.components[:len(p.components)-1]}, nil
}

// Last returns the final component of p. It fails with ErrRootHasNoParent at
// the root.
func (p Path) Last() (string, error) {
	if p.IsRoot() {
		return "", ErrRootHasNoParent
	}
	return p.components[len(p.components)-1], nil
}

// Components returns the path's components, in order. The returned slice
// must not be mutated by callers.
func (p Path) Components() []string {
	return p.components
}

// Iterator yields a Path's components once, in order. It is not removable.
type Iterator struct {
	components []string
	next       int
}

// Iterator returns a single-pass iterator over p's components.
func (p Path) Iterator() *Iterator {
	return &Iterator{components: p.components}
}

// HasNext reports whether Next would return another component.
func (it *Iterator) HasNext() bool {
	return it.next < len(it.components)
}

// Next returns the next component, or ok=false when exhausted.
func (it *Iterator) Next() (component string, ok bool) {
	if it.next >= len(it.components) {
		return "", false
	}
	component = it.components[it.next]
	it.next++
	return component, true
}

// IsSubpath reports whether other's component sequence is a prefix of p's
// (including the case where the two are equal).
func (p Path) IsSubpath(other Path) bool {
	if len(other.components) > len(p.components) {
		return false
	}
	for i, c := range other.components {
		if p.components[i] != c {
			return false
		}
	}
	return true
}

// Equals reports whether p and other have the same canonical string form.
func (p Path) Equals(other Path) bool {
	return p.String() == other.String()
}

// Compare orders paths: a path orders before any extension of itself, ties
// break equal, and otherwise components compare lexically in sequence. It
// gives a total order suitable for sorting.
func (p Path) Compare(other Path) int {
	n := len(p.components)
	if len(other.components) < n {
		n = len(other.components)
	}
	for i := 0; i < n; i++ {
		if p.components[i] != other.components[i] {
			if p.components[i] < other.components[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p.components) == len(other.components):
		return 0
	case len(p.components) < len(other.components):
		return -1
	default:
		return 1
	}
}

// String renders the canonical form of p, always starting with "/".
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.components, "/")
}

// List walks rootDir on local disk and returns every contained regular file,
// as a Path relative to rootDir. It fails with ErrNotFound if rootDir does
// not exist, and ErrNotADirectory if rootDir names a regular file.
func List(rootDir string) ([]Path, error) {
	fi, err := os.Stat(rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", rootDir, ErrNotFound)
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%q: %w", rootDir, ErrNotADirectory)
	}
	var paths []Path
	err = filepath.Walk(rootDir, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rootDir, name)
		if err != nil {
			return err
		}
		p, err := New("/" + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
