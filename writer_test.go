// FILE: lixenwraith/yamlsettings/writer_test.go
package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTree(t *testing.T, props ...Property) *PathTree {
	t.Helper()
	tree := NewPathTree()
	for _, p := range props {
		require.NoError(t, tree.Register(p))
	}
	return tree
}

func TestWriterRender(t *testing.T) {
	w := NewWriter(nil)

	t.Run("CollapsesCommonPrefix", func(t *testing.T) {
		tree := newTree(t,
			NewIntProperty("a.b", 1),
			NewStringProperty("a.c", "x"),
			NewBoolProperty("d", true),
		)

		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "\na:\n    b: 1\n    c: 'x'\n\nd: true\n", out)
		assert.Equal(t, 1, strings.Count(out, "a:\n"))
	})

	t.Run("DeepNesting", func(t *testing.T) {
		tree := newTree(t,
			NewStringProperty("server.tls.cert", "c.pem"),
			NewStringProperty("server.tls.key", "k.pem"),
			NewIntProperty("server.port", 80),
			NewIntProperty("server.limits.conns", 10),
		)

		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		expected := "\n" +
			"server:\n" +
			"    tls:\n" +
			"        cert: 'c.pem'\n" +
			"        key: 'k.pem'\n" +
			"    port: 80\n" +
			"    limits:\n" +
			"        conns: 10\n"
		assert.Equal(t, expected, out)
	})

	t.Run("NonContiguousPrefixRepeatsBlock", func(t *testing.T) {
		tree := newTree(t,
			NewIntProperty("a.x", 1),
			NewIntProperty("b", 2),
			NewIntProperty("a.y", 3),
		)

		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "a:\n"))
	})

	t.Run("Comments", func(t *testing.T) {
		tree := NewPathTree()
		require.NoError(t, tree.Register(NewIntProperty("server.port", 8080), "Port to listen on"))
		require.NoError(t, tree.Register(NewStringProperty("name", "app")))

		comments := NewCommentRegistry()
		comments.SetSection("", "Application settings")
		comments.SetSection("server", "HTTP server", "")
		comments.AddLeaf("server.port", "Use 0 for a random port")
		comments.AddLeaf("name", "Display name")

		out, err := w.Render(tree, comments, nil)
		require.NoError(t, err)
		expected := "# Application settings\n" +
			"\n" +
			"server:\n" +
			"    # HTTP server\n" +
			"    #\n" +
			"    # Port to listen on\n" +
			"    # Use 0 for a random port\n" +
			"    port: 8080\n" +
			"\n" +
			"# Display name\n" +
			"name: 'app'\n"
		assert.Equal(t, expected, out)
	})

	t.Run("ValuesFromReader", func(t *testing.T) {
		port := NewIntProperty("server.port", 8080)
		host := NewStringProperty("server.host", "localhost")
		tree := newTree(t, host, port)

		r := NewMemoryResource(map[string]any{
			"server": map[string]any{
				"host": "example.com",
				"port": "not a number",
			},
		}, nil)

		out, err := w.Render(tree, nil, r)
		require.NoError(t, err)
		assert.Contains(t, out, "host: 'example.com'")
		assert.Contains(t, out, "port: 8080", "invalid values fall back to the default")
	})

	t.Run("StringLists", func(t *testing.T) {
		tree := newTree(t,
			NewStringListProperty("filters.include", "*.go", "it's"),
			NewStringListProperty("filters.exclude"),
		)

		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		expected := "\n" +
			"filters:\n" +
			"    include:\n" +
			"    - '*.go'\n" +
			"    - 'it''s'\n" +
			"    exclude: []\n"
		assert.Equal(t, expected, out)
	})

	t.Run("Beans", func(t *testing.T) {
		type endpoint struct {
			Host string
			Port int
		}
		tree := newTree(t, NewBeanProperty("upstream.primary", endpoint{Host: "db", Port: 5432}, nil))

		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		expected := "\n" +
			"upstream:\n" +
			"    primary:\n" +
			"        host: 'db'\n" +
			"        port: 5432\n"
		assert.Equal(t, expected, out)
	})
}

func TestWriterRoundTrip(t *testing.T) {
	tree := newTree(t,
		NewStringProperty("app.name", "demo"),
		NewIntProperty("app.workers", 4),
		NewFloatProperty("app.ratio", 0.75),
		NewBoolProperty("app.debug", false),
		NewDurationProperty("app.timeout", 90*time.Second),
		NewStringListProperty("app.tags", "a", "true", "1"),
		NewStringProperty("app.quoted", "yes: no # not a comment"),
		NewIntProperty("port", 8080),
	)

	out, err := NewWriter(nil).Render(tree, nil, nil)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))

	r := NewMemoryResource(parsed, nil)
	for _, entry := range tree.Entries() {
		value, ok, err := entry.Property.Lookup(r)
		require.NoError(t, err, entry.Path.String())
		require.True(t, ok, entry.Path.String())
		assert.Equal(t, entry.Property.DefaultValue(), value, entry.Path.String())
	}
}

func TestWriterMultiLineValues(t *testing.T) {
	encoder := NewEncoder(nil)
	encoder.AddRule(func(p Property, value any) (string, bool, error) {
		if p.Path() != "a.text" {
			return "", false, nil
		}
		return "first\n\nsecond", true, nil
	})
	w := NewWriter(encoder)

	t.Run("BlankLinesAreNotIndented", func(t *testing.T) {
		tree := newTree(t, NewIntProperty("a.text", 0))
		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "\na:\n    text: first\n\n    second\n", out)
	})

	t.Run("NoWhitespaceOnlyLines", func(t *testing.T) {
		const note = "line one\nline two"
		tree := newTree(t, NewStringProperty("a.b.note", note))
		out, err := w.Render(tree, nil, nil)
		require.NoError(t, err)
		for i, line := range strings.Split(out, "\n") {
			if strings.TrimSpace(line) == "" {
				assert.Empty(t, line, "line %d holds only whitespace", i)
			}
		}

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, note, NewStringProperty("a.b.note", "").Get(NewMemoryResource(decoded, nil)))
	})
}
