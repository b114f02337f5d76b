// File: lixenwraith/yamlsettings/convenience.go
package settings

import (
	"errors"
	"fmt"
)

// Quick creates a Settings instance for a YAML file with the default migration,
// which completes the file with defaults. It is the shortest way to get started.
// A missing file is created when any holder registers a property.
func Quick(file string, holders ...any) (*Settings, error) {
	return NewBuilder().
		WithFile(file).
		WithHolders(holders...).
		Build()
}

// MustQuick is like Quick but panics on error.
// As with MustBuild, a missing file that was not created is not an error.
func MustQuick(file string, holders ...any) *Settings {
	s, err := Quick(file, holders...)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("settings initialization failed: %v", err))
	}
	return s
}

// RenderDefaults renders the properties of holders with their default values.
func RenderDefaults(holders ...any) (string, error) {
	tree := NewPathTree()
	comments := NewCommentRegistry()
	for _, holder := range holders {
		if err := RegisterStruct(tree, comments, holder); err != nil {
			return "", err
		}
	}
	return NewWriter(nil).Render(tree, comments, nil)
}
