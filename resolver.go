// FILE: lixenwraith/yamlsettings/resolver.go
package settings

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

const (
	// DefaultTagName is the struct tag holding export names and the "-" transient marker.
	DefaultTagName = "yaml"
	// CommentTagName is the struct tag holding property comments, lines separated by "|".
	CommentTagName = "comment"
)

// TransientAccessors can be implemented by beans to exclude Get/Is/Set methods from resolution.
// It returns method names, e.g. []string{"SetTempID", "IsSaved"}.
type TransientAccessors interface {
	TransientAccessors() []string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverTagName sets the struct tag used for export names and transient fields.
func WithResolverTagName(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.tagName = name
		}
	}
}

// WithLeafTypes makes the resolver treat struct types handled by the registry
// (e.g. time.Time) as leaves with no properties.
func WithLeafTypes(registry *ConversionRegistry) ResolverOption {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// Resolver determines the ordered property descriptors of bean types.
// Results depend only on the static shape of a type and are cached for the
// lifetime of the resolver; concurrent first resolutions of the same type are
// harmless as they produce equal results.
type Resolver struct {
	tagName  string
	registry *ConversionRegistry
	cache    sync.Map // reflect.Type -> []*PropertyDescriptor
}

// NewResolver creates a resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		tagName: DefaultTagName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Properties returns the property descriptors of t in their persistence order.
// Pointer types are dereferenced. Types that are not structs, and struct types
// treated as leaves, have no properties.
//
// Field-backed properties come first, in field order with embedded structs
// before the fields of the embedding struct. Accessor pairs with no field of
// the same name follow, sorted by name.
func (r *Resolver) Properties(t reflect.Type) ([]*PropertyDescriptor, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil
	}
	if r.registry != nil && r.registry.IsLeaf(t) {
		return nil, nil
	}

	if cached, ok := r.cache.Load(t); ok {
		return slices.Clone(cached.([]*PropertyDescriptor)), nil
	}

	descriptors, err := r.resolve(t)
	if err != nil {
		return nil, err
	}
	r.cache.Store(t, descriptors)
	return slices.Clone(descriptors), nil
}

// fieldInfo is a struct field considered during resolution.
type fieldInfo struct {
	name      string
	field     reflect.StructField
	index     []int
	transient bool
}

// orderedFields keeps the last declaration of each name, positioned where it was declared.
type orderedFields struct {
	order  []string
	byName map[string]*fieldInfo
}

func (o *orderedFields) put(fi *fieldInfo) {
	if _, exists := o.byName[fi.name]; exists {
		o.order = slices.DeleteFunc(o.order, func(name string) bool { return name == fi.name })
	}
	o.order = append(o.order, fi.name)
	o.byName[fi.name] = fi
}

// accessorPair is a getter and setter for the same canonical name.
type accessorPair struct {
	getter string
	setter string
	typ    reflect.Type
}

func (r *Resolver) resolve(t reflect.Type) ([]*PropertyDescriptor, error) {
	fields := &orderedFields{byName: make(map[string]*fieldInfo)}
	delegated := make(map[string]bool)
	r.collectFields(t, nil, fields, delegated, map[reflect.Type]bool{})

	accessors := r.collectAccessors(t, delegated)

	var descriptors []*PropertyDescriptor
	for _, name := range fields.order {
		fi := fields.byName[name]
		pair, hasPair := accessors[name]
		delete(accessors, name)

		if fi.transient {
			continue
		}

		var d *PropertyDescriptor
		switch {
		case hasPair:
			d = &PropertyDescriptor{
				name:     name,
				typeInfo: TypeInfo{Type: pair.typ},
				getter:   pair.getter,
				setter:   pair.setter,
			}
		case fi.field.IsExported():
			d = &PropertyDescriptor{
				name:     name,
				typeInfo: TypeInfo{Type: fi.field.Type},
				index:    fi.index,
			}
		default:
			continue
		}

		if err := r.applyFieldMetadata(t, d, fi.field); err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}

	unmatched := make([]string, 0, len(accessors))
	for name := range accessors {
		unmatched = append(unmatched, name)
	}
	slices.Sort(unmatched)
	for _, name := range unmatched {
		pair := accessors[name]
		descriptors = append(descriptors, &PropertyDescriptor{
			name:       name,
			exportName: name,
			typeInfo:   TypeInfo{Type: pair.typ},
			getter:     pair.getter,
			setter:     pair.setter,
		})
	}

	seen := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if seen[d.exportName] {
			return nil, mappingErr(d.name, ErrNameClash, "type %s has multiple properties with name '%s'", t, d.exportName)
		}
		seen[d.exportName] = true
	}

	return descriptors, nil
}

// collectFields walks embedded structs before the struct's own fields.
// Methods of embedded interfaces are recorded as delegated.
func (r *Resolver) collectFields(t reflect.Type, parent []int, out *orderedFields, delegated map[string]bool, visiting map[reflect.Type]bool) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	isAncestor := func(f reflect.StructField) (reflect.Type, bool) {
		if !f.Anonymous {
			return nil, false
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Struct || (r.registry != nil && r.registry.IsLeaf(ft)) {
			return nil, false
		}
		return ft, true
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Interface {
			for m := 0; m < f.Type.NumMethod(); m++ {
				delegated[f.Type.Method(m).Name] = true
			}
			continue
		}
		if ft, ok := isAncestor(f); ok {
			r.collectFields(ft, appendIndex(parent, i), out, delegated, visiting)
		}
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "_" || (f.Anonymous && f.Type.Kind() == reflect.Interface) {
			continue
		}
		if _, ok := isAncestor(f); ok {
			continue
		}

		tag := f.Tag.Get(r.tagName)
		out.put(&fieldInfo{
			name:      lowerFirst(f.Name),
			field:     f,
			index:     appendIndex(parent, i),
			transient: tagName(tag) == "-",
		})
	}
}

// collectAccessors finds Get/Is/Set method pairs on *t.
// An Is getter only counts when it returns a plain bool.
func (r *Resolver) collectAccessors(t reflect.Type, delegated map[string]bool) map[string]*accessorPair {
	excluded := make(map[string]bool)
	if ta, ok := reflect.New(t).Interface().(TransientAccessors); ok {
		for _, name := range ta.TransientAccessors() {
			excluded[name] = true
		}
	}

	type method struct {
		name string
		typ  reflect.Type
	}
	getters := make(map[string]method)
	isGetters := make(map[string]method)
	setters := make(map[string]method)

	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if delegated[m.Name] || excluded[m.Name] {
			continue
		}
		mt := m.Type // receiver is In(0)

		if rest, ok := accessorSuffix(m.Name, "Get"); ok && mt.NumIn() == 1 && mt.NumOut() == 1 {
			getters[lowerFirst(rest)] = method{m.Name, mt.Out(0)}
		} else if rest, ok := accessorSuffix(m.Name, "Is"); ok && mt.NumIn() == 1 && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool {
			isGetters[lowerFirst(rest)] = method{m.Name, mt.Out(0)}
		} else if rest, ok := accessorSuffix(m.Name, "Set"); ok && mt.NumIn() == 2 && mt.NumOut() == 0 {
			setters[lowerFirst(rest)] = method{m.Name, mt.In(1)}
		}
	}

	for name, g := range isGetters {
		getters[name] = g
	}

	pairs := make(map[string]*accessorPair)
	for name, g := range getters {
		s, ok := setters[name]
		if !ok || s.typ != g.typ {
			continue
		}
		pairs[name] = &accessorPair{getter: g.name, setter: s.name, typ: g.typ}
	}
	return pairs
}

// applyFieldMetadata copies comments, export name and options from the field's tags.
func (r *Resolver) applyFieldMetadata(t reflect.Type, d *PropertyDescriptor, f reflect.StructField) error {
	if comment, ok := f.Tag.Lookup(CommentTagName); ok && comment != "" {
		d.comments = splitComment(comment)
	}

	d.exportName = d.name
	tag, hasTag := f.Tag.Lookup(r.tagName)
	if !hasTag {
		return nil
	}
	if tag == "" {
		return mappingErr(d.name, ErrEmptyExportName, "custom name of property '%s' in %s may not be empty", d.name, t)
	}

	if name := tagName(tag); name != "" {
		d.exportName = name
	}
	for _, opt := range strings.Split(tag, ",")[1:] {
		if opt == "omitempty" || opt == "optional" {
			d.optional = true
		}
	}
	return nil
}

// accessorSuffix strips prefix from an accessor name; the next rune must be upper case.
func accessorSuffix(name, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" || !startsUpper(rest) {
		return "", false
	}
	return rest, true
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func appendIndex(parent []int, i int) []int {
	index := make([]int, len(parent), len(parent)+1)
	copy(index, parent)
	return append(index, i)
}
