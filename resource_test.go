// FILE: lixenwraith/yamlsettings/resource_test.go
package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTreeGetters(t *testing.T) {
	r := NewMemoryResource(map[string]any{
		"server": map[string]any{
			"host":  "localhost",
			"port":  8080,
			"ratio": 0.5,
			"tls":   map[any]any{"enabled": true},
			"ports": []any{1, 2},
		},
		"count": "12",
	}, nil)

	require.NotNil(t, r.String("server.host"))
	assert.Equal(t, "localhost", *r.String("server.host"))
	require.NotNil(t, r.Int("server.port"))
	assert.Equal(t, 8080, *r.Int("server.port"))
	require.NotNil(t, r.Float("server.port"))
	assert.Equal(t, 8080.0, *r.Float("server.port"))
	require.NotNil(t, r.Bool("server.tls.enabled"))
	assert.True(t, *r.Bool("server.tls.enabled"))
	assert.Equal(t, []any{1, 2}, r.List("server.ports"))

	assert.Nil(t, r.Int("server.ratio"), "fractional values are not integers")
	assert.Nil(t, r.Int("count"), "numeric strings are not numbers")
	assert.Nil(t, r.String("server.port"))
	assert.Nil(t, r.Bool("server.host"))
	assert.Nil(t, r.List("server.host"))
	assert.Nil(t, r.Object("server.host.deeper"))

	assert.True(t, r.Contains("server.tls"))
	assert.False(t, r.Contains("server.missing"))
}

func TestValueTreeSetValue(t *testing.T) {
	r := NewMemoryResource(map[string]any{"a": map[string]any{"b": 1, "c": 2}}, nil)

	r.SetValue("a.d.e", "new")
	assert.Equal(t, "new", r.Object("a.d.e"))

	r.SetValue("a.b", nil)
	assert.False(t, r.Contains("a.b"))
	assert.True(t, r.Contains("a.c"))

	r.SetValue("a.c", map[string]any{"x": 1})
	assert.Equal(t, 1, r.Object("a.c.x"))

	require.NoError(t, r.Reload())
	assert.Equal(t, 1, r.Object("a.b"), "reload restores the initial content")
	assert.Nil(t, r.Object("a.d"))

	r.SetValue("", nil)
	assert.False(t, r.Contains("a"))
}

func TestFileResourceReload(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("YAML", func(t *testing.T) {
		path := write("app.yml", "server:\n    port: 9000\n    hosts: [a, b]\n")
		r := NewFileResource(path, nil)
		require.NoError(t, r.Reload())
		assert.Equal(t, 9000, *r.Int("server.port"))
		assert.Equal(t, []any{"a", "b"}, r.List("server.hosts"))
	})

	t.Run("EmptyYAML", func(t *testing.T) {
		path := write("empty.yaml", "")
		r := NewFileResource(path, nil)
		require.NoError(t, r.Reload())
		assert.False(t, r.Contains("anything"))
	})

	t.Run("TOML", func(t *testing.T) {
		path := write("legacy.toml", "[server]\nport = 9000\nname = \"x\"\n")
		r := NewFileResource(path, nil)
		require.NoError(t, r.Reload())
		assert.Equal(t, 9000, *r.Int("server.port"))
		assert.Equal(t, "x", *r.String("server.name"))
	})

	t.Run("JSON", func(t *testing.T) {
		path := write("legacy.json", `{"server": {"port": 9000}}`)
		r := NewFileResource(path, nil)
		require.NoError(t, r.Reload())
		assert.Equal(t, 9000, *r.Int("server.port"))
	})

	t.Run("ContentSniffing", func(t *testing.T) {
		path := write("app.conf", "server:\n    port: 9000\n")
		r := NewFileResource(path, nil)
		require.NoError(t, r.Reload())
		assert.Equal(t, 9000, *r.Int("server.port"))
	})

	t.Run("Missing", func(t *testing.T) {
		r := NewFileResource(filepath.Join(tmpDir, "missing.yml"), nil)
		err := r.Reload()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigNotFound)

		var resourceErr *ResourceError
		require.ErrorAs(t, err, &resourceErr)
		assert.Equal(t, "read", resourceErr.Op)
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		path := write("invalid.yml", "server: [unclosed\n")
		r := NewFileResource(path, nil)
		err := r.Reload()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConfigNotFound)
		assert.Contains(t, err.Error(), "invalid YAML")
	})

	t.Run("Import", func(t *testing.T) {
		legacy := write("import.toml", "[server]\nport = 7000\n")
		r := NewFileResource(filepath.Join(tmpDir, "import.yml"), nil).WithImport(legacy)
		require.NoError(t, r.Reload())
		assert.True(t, r.Imported())
		assert.Equal(t, 7000, *r.Int("server.port"))
	})

	t.Run("ImportMissingToo", func(t *testing.T) {
		r := NewFileResource(filepath.Join(tmpDir, "none.yml"), nil).
			WithImport(filepath.Join(tmpDir, "none.toml"))
		assert.ErrorIs(t, r.Reload(), ErrConfigNotFound)
		assert.False(t, r.Imported())
	})
}

func TestFileResourceExport(t *testing.T) {
	tmpDir := t.TempDir()
	tree := newTree(t,
		NewStringProperty("server.host", "localhost"),
		NewIntProperty("server.port", 8080),
	)

	t.Run("WritesRenderedTree", func(t *testing.T) {
		path := filepath.Join(tmpDir, "nested", "app.yml")
		r := NewFileResource(path, nil)
		r.SetValue("server.port", 9090)
		require.NoError(t, r.Export(tree, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "\nserver:\n    host: 'localhost'\n    port: 9090\n", string(data))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files are left behind")

		reread := NewFileResource(path, nil)
		require.NoError(t, reread.Reload())
		assert.Equal(t, 9090, *reread.Int("server.port"))
		assert.Equal(t, "localhost", *reread.String("server.host"))
	})

	t.Run("RejectsNonYAMLDestination", func(t *testing.T) {
		path := filepath.Join(tmpDir, "app.toml")
		r := NewFileResource(path, nil)
		err := r.Export(tree, nil)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("ImportedValuesAreWritten", func(t *testing.T) {
		legacy := filepath.Join(tmpDir, "old.json")
		require.NoError(t, os.WriteFile(legacy, []byte(`{"server": {"host": "imported"}}`), 0644))

		path := filepath.Join(tmpDir, "new.yml")
		r := NewFileResource(path, nil).WithImport(legacy)
		require.NoError(t, r.Reload())
		require.NoError(t, r.Export(tree, nil))
		assert.False(t, r.Imported())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "host: 'imported'")
	})
}

func TestMemoryResourceExport(t *testing.T) {
	r := NewMemoryResource(nil, nil)
	r.SetValue("name", "mem")
	require.NoError(t, r.Export(newTree(t, NewStringProperty("name", "")), nil))
	assert.Equal(t, "\nname: 'mem'\n", r.Rendered())
}
