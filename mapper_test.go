// FILE: lixenwraith/yamlsettings/mapper_test.go
package settings

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type tlsSettings struct {
	Cert string
	Key  string `yaml:",optional"`
}

type serverBean struct {
	ID      uuid.UUID `yaml:"id"`
	Host    string    `comment:"Host name"`
	Ports   []int
	Timeout time.Duration
	Level   logLevel
	TLS     *tlsSettings `yaml:"tls"`
	Labels  map[string]string
	Weight  float64
}

const serverID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func newServerMapper() *Mapper {
	registry := NewConversionRegistry()
	RegisterEnum(registry, levelDebug, levelInfo, levelWarn)
	return NewMapper(registry)
}

func serverRaw() map[string]any {
	return map[string]any{
		"id":      serverID,
		"host":    "example.com",
		"ports":   []any{80, 443},
		"timeout": "30s",
		"level":   "WARN",
		"tls":     map[string]any{"cert": "c.pem"},
		"labels":  map[string]any{"env": "prod"},
		"weight":  2,
	}
}

func TestMapperMap(t *testing.T) {
	m := newServerMapper()

	t.Run("Complete", func(t *testing.T) {
		var bean serverBean
		require.NoError(t, m.Map(serverRaw(), &bean))

		assert.Equal(t, uuid.MustParse(serverID), bean.ID)
		assert.Equal(t, "example.com", bean.Host)
		assert.Equal(t, []int{80, 443}, bean.Ports)
		assert.Equal(t, 30*time.Second, bean.Timeout)
		assert.Equal(t, levelWarn, bean.Level)
		require.NotNil(t, bean.TLS)
		assert.Equal(t, "c.pem", bean.TLS.Cert)
		assert.Empty(t, bean.TLS.Key)
		assert.Equal(t, map[string]string{"env": "prod"}, bean.Labels)
		assert.Equal(t, 2.0, bean.Weight)
	})

	t.Run("FromYAML", func(t *testing.T) {
		doc := `
id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8
host: example.com
ports: [8080]
timeout: 90
level: debug
labels:
    tier: web
weight: 0.5
`
		var raw map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(doc), &raw))

		var bean serverBean
		require.NoError(t, m.Map(raw, &bean))
		assert.Equal(t, 90*time.Second, bean.Timeout, "plain integers are seconds")
		assert.Equal(t, levelDebug, bean.Level)
		assert.Nil(t, bean.TLS)
		assert.Equal(t, 0.5, bean.Weight)
	})

	t.Run("PresetValuesAreDefaults", func(t *testing.T) {
		raw := serverRaw()
		delete(raw, "host")
		delete(raw, "weight")

		bean := serverBean{Host: "preset", Weight: 1.5}
		require.NoError(t, m.Map(raw, &bean))
		assert.Equal(t, "preset", bean.Host)
		assert.Equal(t, 1.5, bean.Weight)
	})

	t.Run("MissingRequiredValue", func(t *testing.T) {
		raw := serverRaw()
		delete(raw, "host")

		var bean serverBean
		err := m.MapAt("server", raw, &bean)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingValue)

		var mappingErr *MappingError
		require.ErrorAs(t, err, &mappingErr)
		assert.Equal(t, "server.host", mappingErr.Path)
	})

	t.Run("ConversionErrorPath", func(t *testing.T) {
		raw := serverRaw()
		raw["ports"] = []any{80, "x"}

		var bean serverBean
		err := m.MapAt("server", raw, &bean)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConversion)
		assert.Contains(t, err.Error(), "server.ports[1]")
	})

	t.Run("FractionalInteger", func(t *testing.T) {
		raw := serverRaw()
		raw["ports"] = []any{80.5}

		var bean serverBean
		err := m.Map(raw, &bean)
		assert.ErrorIs(t, err, ErrConversion)
	})

	t.Run("UnknownEnumName", func(t *testing.T) {
		raw := serverRaw()
		raw["level"] = "verbose"

		var bean serverBean
		err := m.Map(raw, &bean)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "debug, info, warn")
	})

	t.Run("WrongShape", func(t *testing.T) {
		var bean serverBean
		assert.ErrorIs(t, m.Map("not a map", &bean), ErrConversion)
	})

	t.Run("NonPointerTarget", func(t *testing.T) {
		assert.Error(t, m.Map(serverRaw(), serverBean{}))
		assert.Error(t, m.Map(serverRaw(), (*serverBean)(nil)))
	})

	t.Run("AccessorBean", func(t *testing.T) {
		raw := map[string]any{
			"id":         7,
			"temporary":  true,
			"name":       "child",
			"ratio":      0.25,
			"importance": 2,
		}
		var bean childBean
		require.NoError(t, m.Map(raw, &bean))
		assert.Equal(t, 7, bean.GetId())
		assert.True(t, bean.IsTemporary())
		assert.Equal(t, "child", bean.Name)
		assert.Equal(t, 0.25, bean.Ratio)
		assert.Equal(t, 2, bean.Importance)
	})
}

func TestMapperExport(t *testing.T) {
	m := newServerMapper()
	bean := serverBean{
		ID:      uuid.MustParse(serverID),
		Host:    "example.com",
		Ports:   []int{80},
		Timeout: time.Minute,
		Level:   levelInfo,
		Labels:  map[string]string{"b": "2", "a": "1"},
		Weight:  2.5,
	}

	t.Run("KeyOrder", func(t *testing.T) {
		node, err := m.Export(bean)
		require.NoError(t, err)
		require.Equal(t, yaml.MappingNode, node.Kind)

		var keys []string
		for i := 0; i < len(node.Content); i += 2 {
			keys = append(keys, node.Content[i].Value)
		}
		assert.Equal(t, []string{"id", "host", "ports", "timeout", "level", "tls", "labels", "weight"}, keys)
	})

	t.Run("ToTree", func(t *testing.T) {
		tree, err := m.ToTree(&bean)
		require.NoError(t, err)

		expected := map[string]any{
			"id":      serverID,
			"host":    "example.com",
			"ports":   []any{80},
			"timeout": "1m0s",
			"level":   "info",
			"tls":     nil,
			"labels":  map[string]any{"a": "1", "b": "2"},
			"weight":  2.5,
		}
		assert.Equal(t, expected, tree)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		tree, err := m.ToTree(bean)
		require.NoError(t, err)

		var back serverBean
		require.NoError(t, m.Map(tree, &back))
		assert.Equal(t, bean, back)
	})
}
