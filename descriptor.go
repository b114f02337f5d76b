// FILE: lixenwraith/yamlsettings/descriptor.go
package settings

import (
	"fmt"
	"reflect"
)

// TypeInfo describes the declared type of a bean property.
type TypeInfo struct {
	Type reflect.Type
}

// Elem returns the element type of slices, arrays, maps and pointers, or nil.
func (ti TypeInfo) Elem() reflect.Type {
	switch ti.Type.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer:
		return ti.Type.Elem()
	}
	return nil
}

// Key returns the key type of maps, or nil.
func (ti TypeInfo) Key() reflect.Type {
	if ti.Type.Kind() == reflect.Map {
		return ti.Type.Key()
	}
	return nil
}

// Nillable reports whether a missing value can be represented as nil.
func (ti TypeInfo) Nillable() bool {
	switch ti.Type.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func (ti TypeInfo) String() string {
	if ti.Type == nil {
		return "<nil>"
	}
	return ti.Type.String()
}

// PropertyDescriptor describes one readable and writable property of a bean type.
type PropertyDescriptor struct {
	name       string
	exportName string
	typeInfo   TypeInfo
	comments   []string
	optional   bool

	// field-backed properties
	index []int

	// accessor-backed properties
	getter string
	setter string
}

// Name returns the canonical property name, e.g. "name" for field Name or method GetName.
func (d *PropertyDescriptor) Name() string { return d.name }

// ExportName returns the key used in the settings file.
func (d *PropertyDescriptor) ExportName() string { return d.exportName }

// TypeInfo returns the declared type of the property.
func (d *PropertyDescriptor) TypeInfo() TypeInfo { return d.typeInfo }

// Comments returns the comment lines declared for the property.
func (d *PropertyDescriptor) Comments() []string { return d.comments }

// Optional reports whether the property may be absent from the settings file.
func (d *PropertyDescriptor) Optional() bool { return d.optional || d.typeInfo.Nillable() }

// IsAccessor reports whether the property is read and written through Get/Is/Set methods.
func (d *PropertyDescriptor) IsAccessor() bool { return d.getter != "" }

func (d *PropertyDescriptor) String() string {
	return fmt.Sprintf("%s (%s) as '%s'", d.name, d.typeInfo, d.exportName)
}

// Value reads the property from bean, which must be an addressable struct value.
func (d *PropertyDescriptor) Value(bean reflect.Value) (reflect.Value, error) {
	if d.getter != "" {
		out, err := callMethod(bean.Addr(), d.getter)
		if err != nil {
			return reflect.Value{}, err
		}
		return out[0], nil
	}

	field, ok := fieldByIndex(bean, d.index, false)
	if !ok {
		return reflect.Zero(d.typeInfo.Type), nil
	}
	return field, nil
}

// SetValue writes the property on bean, which must be an addressable struct value.
// Nil embedded struct pointers on the way to the field are allocated.
func (d *PropertyDescriptor) SetValue(bean reflect.Value, value reflect.Value) error {
	if d.setter != "" {
		_, err := callMethod(bean.Addr(), d.setter, value)
		return err
	}

	field, _ := fieldByIndex(bean, d.index, true)
	if !field.CanSet() {
		return fmt.Errorf("field for property '%s' is not settable", d.name)
	}
	field.Set(value)
	return nil
}

// fieldByIndex is reflect.Value.FieldByIndex that tolerates nil embedded pointers.
// With alloc set, nil pointers are allocated; otherwise false is returned.
func fieldByIndex(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc || !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// callMethod invokes a method by name, turning a panic (e.g. from a nil embedded pointer) into an error.
func callMethod(receiver reflect.Value, name string, args ...reflect.Value) (out []reflect.Value, err error) {
	method := receiver.MethodByName(name)
	if !method.IsValid() {
		return nil, fmt.Errorf("method %s not found on %s", name, receiver.Type())
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calling %s.%s: %v", receiver.Type(), name, r)
		}
	}()
	return method.Call(args), nil
}
