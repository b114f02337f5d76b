// FILE: lixenwraith/yamlsettings/register_test.go
package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commonHolder struct {
	Name *TypedProperty[string] `comment:"Application name"`
}

type dbHolder struct {
	URL   *TypedProperty[string] `comment:"Connection URL|Read from the environment in production"`
	Conns *TypedProperty[int]
}

type appHolder struct {
	commonHolder
	Port     *TypedProperty[int]
	Database dbHolder
	helper   *TypedProperty[int]
	Note     string
}

func (appHolder) SectionComments() map[string][]string {
	return map[string][]string{
		"":         {"Demo settings"},
		"database": {"Database access"},
	}
}

func newAppHolder() appHolder {
	return appHolder{
		commonHolder: commonHolder{Name: NewStringProperty("app.name", "demo")},
		Port:         NewIntProperty("app.port", 8080),
		Database: dbHolder{
			URL:   NewStringProperty("database.url", "postgres://localhost"),
			Conns: NewIntProperty("database.conns", 4),
		},
		helper: NewIntProperty("app.helper", 1),
	}
}

func TestRegisterStruct(t *testing.T) {
	t.Run("FieldsInOrder", func(t *testing.T) {
		tree := NewPathTree()
		comments := NewCommentRegistry()
		require.NoError(t, RegisterStruct(tree, comments, newAppHolder()))

		var paths []string
		for _, entry := range tree.Entries() {
			paths = append(paths, entry.Path.String())
		}
		assert.Equal(t, []string{"app.name", "app.port", "database.url", "database.conns"}, paths)

		entry, ok := tree.Get("database.url")
		require.True(t, ok)
		assert.Equal(t, []string{"Connection URL", "Read from the environment in production"}, entry.Comments)

		assert.Equal(t, []string{"Demo settings"}, comments.Section(""))
		assert.Equal(t, []string{"Database access"}, comments.Section("database"))
	})

	t.Run("Pointer", func(t *testing.T) {
		holder := newAppHolder()
		tree := NewPathTree()
		require.NoError(t, RegisterStruct(tree, NewCommentRegistry(), &holder))
		assert.Equal(t, 4, tree.Len())
	})

	t.Run("Rendered", func(t *testing.T) {
		out, err := RenderDefaults(newAppHolder())
		require.NoError(t, err)
		expected := "# Demo settings\n" +
			"\n" +
			"app:\n" +
			"    # Application name\n" +
			"    name: 'demo'\n" +
			"    port: 8080\n" +
			"\n" +
			"database:\n" +
			"    # Database access\n" +
			"    # Connection URL\n" +
			"    # Read from the environment in production\n" +
			"    url: 'postgres://localhost'\n" +
			"    conns: 4\n"
		assert.Equal(t, expected, out)
	})

	t.Run("Errors", func(t *testing.T) {
		tree := NewPathTree()
		assert.Error(t, RegisterStruct(tree, nil, 5))
		assert.Error(t, RegisterStruct(tree, nil, (*appHolder)(nil)))

		err := RegisterStruct(tree, nil, appHolder{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "property is nil")
	})
}

// constantProperty implements Property with value receivers.
type constantProperty struct {
	path  string
	value int
}

func (c constantProperty) Path() string { return c.path }
func (c constantProperty) Kind() PropertyKind { return KindScalar }
func (c constantProperty) DefaultValue() any { return c.value }
func (c constantProperty) Lookup(Reader) (any, bool, error) {
	return c.value, true, nil
}
func (c constantProperty) ToRaw(value any) (any, error) { return value, nil }

func TestRegisterStructValueProperty(t *testing.T) {
	holder := struct {
		Fixed constantProperty
		Port  *TypedProperty[int]
	}{
		Fixed: constantProperty{path: "app.fixed", value: 7},
		Port:  NewIntProperty("app.port", 80),
	}

	tree := NewPathTree()
	require.NotPanics(t, func() {
		require.NoError(t, RegisterStruct(tree, nil, holder))
	})
	assert.Equal(t, 2, tree.Len())

	entry, ok := tree.Get("app.fixed")
	require.True(t, ok)
	assert.Equal(t, 7, entry.Property.DefaultValue())
}
