// FILE: lixenwraith/yamlsettings/migration.go
package settings

import (
	"slices"
	"strings"
)

// MigrationService inspects freshly loaded values and may rewrite them.
// A true result makes Settings save the file afterwards.
type MigrationService interface {
	CheckAndMigrate(r Resource, tree *PathTree) bool
}

// MigrationFunc adapts a function to MigrationService.
type MigrationFunc func(r Resource, tree *PathTree) bool

func (f MigrationFunc) CheckAndMigrate(r Resource, tree *PathTree) bool {
	return f(r, tree)
}

// PlainMigration requests a save when any registered property is absent or invalid,
// so the file is completed with defaults.
type PlainMigration struct{}

func (PlainMigration) CheckAndMigrate(r Resource, tree *PathTree) bool {
	return len(MissingProperties(r, tree)) > 0
}

// MovedProperty migrates a renamed setting: a value found at the old path is
// moved to the new one unless the new path already has a value.
type MovedProperty struct {
	From string
	To   string
}

func (m MovedProperty) CheckAndMigrate(r Resource, tree *PathTree) bool {
	old := r.Object(m.From)
	if old == nil {
		return false
	}
	if !r.Contains(m.To) {
		r.SetValue(m.To, old)
	}
	r.SetValue(m.From, nil)
	return true
}

// ChainedMigration runs every service in order. It reports true if any did.
type ChainedMigration []MigrationService

func (c ChainedMigration) CheckAndMigrate(r Resource, tree *PathTree) bool {
	changed := false
	for _, service := range c {
		if service.CheckAndMigrate(r, tree) {
			changed = true
		}
	}
	return changed
}

// MissingProperties returns the paths of properties without a valid value in r.
func MissingProperties(r Reader, tree *PathTree) []string {
	var missing []string
	for _, entry := range tree.Entries() {
		if _, ok, err := entry.Property.Lookup(r); !ok || err != nil {
			missing = append(missing, entry.Path.String())
		}
	}
	return missing
}

// UnknownPaths returns the leaf paths in r that no registered property covers, sorted.
// Values below a registered path, such as bean fields, are covered.
func UnknownPaths(r Reader, tree *PathTree) []string {
	root, ok := asStringMap(r.Object(""))
	if !ok {
		return nil
	}

	var unknown []string
	for path := range flattenMap(root, "") {
		if !coveredByTree(tree, path) {
			unknown = append(unknown, path)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func coveredByTree(tree *PathTree, path string) bool {
	for {
		if _, ok := tree.Get(path); ok {
			return true
		}
		i := strings.LastIndex(path, PathSeparator)
		if i < 0 {
			return false
		}
		path = path[:i]
	}
}
