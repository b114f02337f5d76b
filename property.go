// FILE: lixenwraith/yamlsettings/property.go
package settings

import (
	"fmt"
	"reflect"
	"time"
)

// PropertyKind tells the encoder how a property's value is written.
type PropertyKind int

const (
	// KindScalar is a single value written with the default encoding.
	KindScalar PropertyKind = iota
	// KindStringList is written as a block sequence of quoted strings.
	KindStringList
	// KindEnum is written as its quoted name.
	KindEnum
	// KindBean is a struct value mapped through a Mapper.
	KindBean
)

// Property is a setting with a fixed dotted path and a default value.
type Property interface {
	// Path returns the dotted path of the property, e.g. "server.port".
	Path() string
	// Kind returns how the value is encoded.
	Kind() PropertyKind
	// DefaultValue returns the value used when the resource has none.
	DefaultValue() any
	// Lookup reads the value from r. ok is false when the resource has no value;
	// err is set when a value exists but cannot be converted.
	Lookup(r Reader) (value any, ok bool, err error)
	// ToRaw converts a value of the property into its raw tree form.
	ToRaw(value any) (any, error)
}

// TypedProperty is a Property with a value of type T.
type TypedProperty[T any] struct {
	path  string
	def   T
	kind  PropertyKind
	read  func(raw any) (T, error)
	toRaw func(value T) (any, error)

	// bean properties only
	mapper    *Mapper
	ownMapper bool
}

// beanProperty is implemented by properties whose value goes through a Mapper.
type beanProperty interface {
	beanMapper() *Mapper
	useMapper(m *Mapper)
}

func newTypedProperty[T any](path string, def T, kind PropertyKind, read func(raw any) (T, error)) *TypedProperty[T] {
	MustParsePath(path)
	return &TypedProperty[T]{
		path: path,
		def:  def,
		kind: kind,
		read: read,
		toRaw: func(value T) (any, error) {
			return value, nil
		},
	}
}

func (p *TypedProperty[T]) Path() string { return p.path }

func (p *TypedProperty[T]) Kind() PropertyKind { return p.kind }

func (p *TypedProperty[T]) DefaultValue() any { return p.def }

// Default returns the typed default value.
func (p *TypedProperty[T]) Default() T { return p.def }

func (p *TypedProperty[T]) Lookup(r Reader) (any, bool, error) {
	return p.lookup(r)
}

func (p *TypedProperty[T]) lookup(r Reader) (T, bool, error) {
	var zero T
	raw := r.Object(p.path)
	if raw == nil {
		return zero, false, nil
	}
	v, err := p.read(raw)
	if err != nil {
		return zero, true, err
	}
	return v, true, nil
}

// Get returns the value from r, or the default when it is absent or invalid.
func (p *TypedProperty[T]) Get(r Reader) T {
	v, ok, err := p.lookup(r)
	if !ok || err != nil {
		return p.def
	}
	return v
}

func (p *TypedProperty[T]) ToRaw(value any) (any, error) {
	typed, ok := value.(T)
	if !ok {
		return nil, fmt.Errorf("property '%s' expects %T, got %T", p.path, p.def, value)
	}
	return p.toRaw(typed)
}

// leafReader converts raw values with a built-in converter.
func leafReader[T any](path string, c Converter) func(raw any) (T, error) {
	t := reflect.TypeFor[T]()
	return func(raw any) (T, error) {
		var zero T
		if rv := reflect.ValueOf(raw); rv.Type() == t {
			return rv.Interface().(T), nil
		}
		v, err := c.FromRaw(raw, t)
		if err != nil {
			return zero, mappingErr(path, err, "invalid value %v", raw)
		}
		return v.Interface().(T), nil
	}
}

// NewStringProperty creates a string property.
func NewStringProperty(path, def string) *TypedProperty[string] {
	return newTypedProperty(path, def, KindScalar, leafReader[string](path, scalarConverter{}))
}

// NewIntProperty creates an integer property. Fractional numbers are rejected.
func NewIntProperty(path string, def int) *TypedProperty[int] {
	return newTypedProperty(path, def, KindScalar, leafReader[int](path, scalarConverter{}))
}

// NewBoolProperty creates a boolean property.
func NewBoolProperty(path string, def bool) *TypedProperty[bool] {
	return newTypedProperty(path, def, KindScalar, leafReader[bool](path, scalarConverter{}))
}

// NewFloatProperty creates a floating point property.
func NewFloatProperty(path string, def float64) *TypedProperty[float64] {
	return newTypedProperty(path, def, KindScalar, leafReader[float64](path, scalarConverter{}))
}

// NewDurationProperty creates a duration property, written as e.g. '1m30s'.
func NewDurationProperty(path string, def time.Duration) *TypedProperty[time.Duration] {
	p := newTypedProperty(path, def, KindScalar, leafReader[time.Duration](path, durationConverter{}))
	p.toRaw = func(value time.Duration) (any, error) {
		return value.String(), nil
	}
	return p
}

// NewStringListProperty creates a list-of-strings property.
// Scalar list items are read in their string form.
func NewStringListProperty(path string, def ...string) *TypedProperty[[]string] {
	if def == nil {
		def = []string{}
	}
	return newTypedProperty(path, def, KindStringList, func(raw any) ([]string, error) {
		items, ok := asList(raw)
		if !ok {
			return nil, mappingErr(path, ErrConversion, "expected list, got %T", raw)
		}
		out := make([]string, 0, len(items))
		for i, item := range items {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case nil, map[string]any, map[any]any, []any:
				return nil, mappingErr(indexPath(path, i), ErrConversion, "expected string, got %T", item)
			default:
				out = append(out, fmt.Sprint(v))
			}
		}
		return out, nil
	})
}

// NewEnumProperty creates a property whose value is one of values, stored by name.
func NewEnumProperty[T interface {
	comparable
	fmt.Stringer
}](path string, def T, values ...T) *TypedProperty[T] {
	registry := NewConversionRegistry()
	RegisterEnum(registry, values...)
	c, _ := registry.Lookup(reflect.TypeFor[T]())

	p := newTypedProperty(path, def, KindEnum, leafReader[T](path, c))
	p.toRaw = func(value T) (any, error) {
		return value.String(), nil
	}
	return p
}

// NewBeanProperty creates a property holding a struct mapped by mapper.
// A nil mapper uses a mapper with the default conversion registry until
// a Builder registers the property, which then supplies its own mapper.
// The same mapper reads, converts and writes the value.
func NewBeanProperty[T any](path string, def T, mapper *Mapper) *TypedProperty[T] {
	p := newTypedProperty[T](path, def, KindBean, nil)
	p.ownMapper = mapper != nil
	if mapper == nil {
		mapper = NewMapper(nil)
	}
	p.mapper = mapper

	p.read = func(raw any) (T, error) {
		var bean T
		if err := p.mapper.MapAt(path, raw, &bean); err != nil {
			return bean, err
		}
		return bean, nil
	}
	p.toRaw = func(value T) (any, error) {
		return p.mapper.ToTree(value)
	}
	return p
}

func (p *TypedProperty[T]) beanMapper() *Mapper { return p.mapper }

// useMapper replaces the default mapper of a bean property created without one.
func (p *TypedProperty[T]) useMapper(m *Mapper) {
	if p.kind == KindBean && !p.ownMapper && m != nil {
		p.mapper = m
	}
}
