// FILE: lixenwraith/yamlsettings/mapper.go
package settings

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Mapper converts raw decoded YAML trees into Go values and back.
// Structs are mapped property by property as resolved by its Resolver;
// leaf values go through its ConversionRegistry.
type Mapper struct {
	resolver *Resolver
	registry *ConversionRegistry
}

// NewMapper creates a mapper. A nil registry is replaced by NewConversionRegistry().
func NewMapper(registry *ConversionRegistry, opts ...ResolverOption) *Mapper {
	if registry == nil {
		registry = NewConversionRegistry()
	}
	opts = append([]ResolverOption{WithLeafTypes(registry)}, opts...)
	return &Mapper{
		resolver: NewResolver(opts...),
		registry: registry,
	}
}

// Resolver returns the resolver used for bean types.
func (m *Mapper) Resolver() *Resolver { return m.resolver }

// Registry returns the conversion registry used for leaf values.
func (m *Mapper) Registry() *ConversionRegistry { return m.registry }

// Map hydrates target, a non-nil pointer, from a raw decoded value.
// Values already present in target serve as defaults for absent properties.
func (m *Mapper) Map(raw any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("map target must be non-nil pointer, got %T", target)
	}
	return m.mapValue("", raw, rv.Elem())
}

// MapAt is like Map but prefixes error paths with root, e.g. the property path of a bean property.
func (m *Mapper) MapAt(root string, raw any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("map target must be non-nil pointer, got %T", target)
	}
	return m.mapValue(root, raw, rv.Elem())
}

// mapValue writes raw into dst, which must be settable.
func (m *Mapper) mapValue(path string, raw any, dst reflect.Value) error {
	t := dst.Type()

	if raw == nil {
		if (TypeInfo{Type: t}).Nillable() {
			dst.Set(reflect.Zero(t))
			return nil
		}
		return mappingErr(path, ErrMissingValue, "null value for %s", t)
	}

	if m.registry.IsLeaf(t) {
		v, err := m.registry.Convert(raw, t)
		if err != nil {
			return mappingErr(path, err, "cannot convert %T to %s", raw, t)
		}
		dst.Set(v)
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := dst
		if dst.IsNil() {
			elem = reflect.New(t.Elem())
		}
		if err := m.mapValue(path, raw, elem.Elem()); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case reflect.Interface:
		rv := reflect.ValueOf(raw)
		if !rv.Type().AssignableTo(t) {
			return mappingErr(path, ErrConversion, "cannot assign %T to %s", raw, t)
		}
		dst.Set(rv)
		return nil

	case reflect.Slice:
		items, ok := asList(raw)
		if !ok {
			return mappingErr(path, ErrConversion, "expected list for %s, got %T", t, raw)
		}
		out := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			if err := m.mapValue(indexPath(path, i), item, out.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	case reflect.Array:
		items, ok := asList(raw)
		if !ok || len(items) != t.Len() {
			return mappingErr(path, ErrConversion, "expected list of %d elements for %s", t.Len(), t)
		}
		for i, item := range items {
			if err := m.mapValue(indexPath(path, i), item, dst.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		src, ok := asStringMap(raw)
		if !ok {
			return mappingErr(path, ErrConversion, "expected map for %s, got %T", t, raw)
		}
		out := reflect.MakeMapWithSize(t, len(src))
		for key, value := range src {
			childPath := joinPath(path, key)
			k, err := m.registry.Convert(key, t.Key())
			if err != nil {
				return mappingErr(childPath, err, "invalid key for %s", t)
			}
			elem := reflect.New(t.Elem()).Elem()
			if err := m.mapValue(childPath, value, elem); err != nil {
				return err
			}
			out.SetMapIndex(k, elem)
		}
		dst.Set(out)
		return nil

	case reflect.Struct:
		return m.mapBean(path, raw, dst)
	}

	return mappingErr(path, ErrConversion, "unsupported type %s", t)
}

// mapBean hydrates a struct property by property.
func (m *Mapper) mapBean(path string, raw any, dst reflect.Value) error {
	t := dst.Type()
	descriptors, err := m.resolver.Properties(t)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		return mappingErr(path, ErrConversion, "type %s has no properties", t)
	}

	src, ok := asStringMap(raw)
	if !ok {
		return mappingErr(path, ErrConversion, "expected map for %s, got %T", t, raw)
	}

	for _, d := range descriptors {
		childPath := joinPath(path, d.ExportName())

		current, err := d.Value(dst)
		if err != nil {
			return mappingErr(childPath, err, "cannot read property")
		}

		value, present := src[d.ExportName()]
		if !present || value == nil {
			if d.Optional() || (current.IsValid() && !current.IsZero()) {
				continue
			}
			return mappingErr(childPath, ErrMissingValue, "no value and no default for %s", d.TypeInfo())
		}

		next := reflect.New(d.TypeInfo().Type).Elem()
		if current.IsValid() {
			next.Set(current)
		}
		if err := m.mapValue(childPath, value, next); err != nil {
			return err
		}
		if err := d.SetValue(dst, next); err != nil {
			return mappingErr(childPath, err, "cannot write property")
		}
	}
	return nil
}

// Export dehydrates value into a YAML node. Bean properties keep their resolved order.
func (m *Mapper) Export(value any) (*yaml.Node, error) {
	return m.exportValue("", reflect.ValueOf(value))
}

// ToTree dehydrates value into plain maps, slices and scalars.
func (m *Mapper) ToTree(value any) (any, error) {
	node, err := m.Export(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := node.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode exported tree: %w", err)
	}
	return out, nil
}

func (m *Mapper) exportValue(path string, v reflect.Value) (*yaml.Node, error) {
	if !v.IsValid() {
		return nullNode(), nil
	}
	t := v.Type()

	if m.registry.IsLeaf(t) {
		raw, err := m.registry.Export(v)
		if err != nil {
			return nil, mappingErr(path, err, "cannot export %s", t)
		}
		node := &yaml.Node{}
		if err := node.Encode(raw); err != nil {
			return nil, mappingErr(path, err, "cannot encode %s", t)
		}
		return node, nil
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nullNode(), nil
		}
		return m.exportValue(path, v.Elem())

	case reflect.Slice, reflect.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < v.Len(); i++ {
			item, err := m.exportValue(indexPath(path, i), v.Index(i))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, item)
		}
		return node, nil

	case reflect.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := v.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
			byName[names[i]] = k
		}
		sort.Strings(names)
		for _, name := range names {
			item, err := m.exportValue(joinPath(path, name), v.MapIndex(byName[name]))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, keyNode(name), item)
		}
		return node, nil

	case reflect.Struct:
		return m.exportBean(path, v)
	}

	return nil, mappingErr(path, ErrConversion, "unsupported type %s", t)
}

func (m *Mapper) exportBean(path string, v reflect.Value) (*yaml.Node, error) {
	t := v.Type()
	descriptors, err := m.resolver.Properties(t)
	if err != nil {
		return nil, err
	}

	if !v.CanAddr() {
		addressable := reflect.New(t).Elem()
		addressable.Set(v)
		v = addressable
	}

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, d := range descriptors {
		childPath := joinPath(path, d.ExportName())
		value, err := d.Value(v)
		if err != nil {
			return nil, mappingErr(childPath, err, "cannot read property")
		}
		item, err := m.exportValue(childPath, value)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode(d.ExportName()), item)
	}
	return node, nil
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + PathSeparator + segment
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
