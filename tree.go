// FILE: lixenwraith/yamlsettings/tree.go
package settings

import (
	"fmt"
)

// PropertyEntry is a registered property together with its leaf comments.
type PropertyEntry struct {
	Path     Path
	Property Property
	Comments []string
}

// PathTree is an ordered collection of properties keyed by their dotted path.
// Iteration order is registration order; the writer relies on it to group
// entries with a shared prefix under one parent block.
type PathTree struct {
	entries []*PropertyEntry
	index   map[string]int // dotted path -> position in entries
	parents map[string]struct{}
}

// NewPathTree creates an empty tree.
func NewPathTree() *PathTree {
	return &PathTree{
		index:   make(map[string]int),
		parents: make(map[string]struct{}),
	}
}

// Register adds a property under its path.
// Registering the same path again replaces the entry but keeps its original position.
// A path may not be both a property and the parent of another property.
func (t *PathTree) Register(property Property, comments ...string) error {
	if property == nil {
		return fmt.Errorf("cannot register nil property")
	}

	path, err := ParsePath(property.Path())
	if err != nil {
		return err
	}

	entry := &PropertyEntry{
		Path:     path,
		Property: property,
		Comments: append([]string(nil), comments...),
	}

	key := path.String()
	if pos, exists := t.index[key]; exists {
		t.entries[pos] = entry
		return nil
	}

	if _, isParent := t.parents[key]; isParent {
		return fmt.Errorf("path '%s' is already a parent of registered properties", key)
	}
	for parent := path.Parent(); len(parent) > 0; parent = parent.Parent() {
		if _, isLeaf := t.index[parent.String()]; isLeaf {
			return fmt.Errorf("path '%s' is below registered property '%s'", key, parent)
		}
	}
	for parent := path.Parent(); len(parent) > 0; parent = parent.Parent() {
		t.parents[parent.String()] = struct{}{}
	}

	t.index[key] = len(t.entries)
	t.entries = append(t.entries, entry)
	return nil
}

// Get returns the entry registered for the dotted path.
func (t *PathTree) Get(path string) (*PropertyEntry, bool) {
	pos, exists := t.index[path]
	if !exists {
		return nil, false
	}
	return t.entries[pos], true
}

// Entries returns the entries in registration order.
func (t *PathTree) Entries() []*PropertyEntry {
	out := make([]*PropertyEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Properties returns the registered properties in registration order.
func (t *PathTree) Properties() []Property {
	out := make([]Property, len(t.entries))
	for i, entry := range t.entries {
		out[i] = entry.Property
	}
	return out
}

// Len returns the number of registered entries.
func (t *PathTree) Len() int {
	return len(t.entries)
}
