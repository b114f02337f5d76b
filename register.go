// FILE: lixenwraith/yamlsettings/register.go
package settings

import (
	"fmt"
	"reflect"
	"strings"
)

// SectionCommentProvider is implemented by holders that document path prefixes.
// The empty prefix is the file header.
type SectionCommentProvider interface {
	SectionComments() map[string][]string
}

var propertyType = reflect.TypeFor[Property]()

// RegisterStruct registers the Property fields of a settings holder.
// Fields are registered in declaration order, fields of embedded and nested
// structs at their position. A `comment:"line one|line two"` tag gives the
// property's leaf comments. holder may be a struct or a struct pointer.
func RegisterStruct(tree *PathTree, comments *CommentRegistry, holder any) error {
	v := reflect.ValueOf(holder)

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", holder)
	}

	var errs []string
	registerFields(tree, v, &errs)

	if provider, ok := holder.(SectionCommentProvider); ok && comments != nil {
		for prefix, lines := range provider.SectionComments() {
			if prefix != "" {
				if _, err := ParsePath(prefix); err != nil {
					errs = append(errs, err.Error())
					continue
				}
			}
			comments.SetSection(prefix, lines...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}

	return nil
}

// registerFields walks the fields of a holder struct.
func registerFields(tree *PathTree, v reflect.Value, errs *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() && !field.Anonymous {
			continue
		}

		if field.Type.Implements(propertyType) {
			if !field.IsExported() {
				continue
			}
			if isNillable(fieldValue.Kind()) && fieldValue.IsNil() {
				*errs = append(*errs, fmt.Sprintf("field %s: property is nil", field.Name))
				continue
			}
			property := fieldValue.Interface().(Property)
			if err := tree.Register(property, splitComment(field.Tag.Get(CommentTagName))...); err != nil {
				*errs = append(*errs, fmt.Sprintf("field %s: %v", field.Name, err))
			}
			continue
		}

		// Nested holders
		nested := fieldValue
		if nested.Kind() == reflect.Pointer {
			if nested.IsNil() || nested.Elem().Kind() != reflect.Struct {
				continue
			}
			nested = nested.Elem()
		}
		if nested.Kind() == reflect.Struct {
			registerFields(tree, nested, errs)
		}
	}
}

func isNillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// splitComment splits a comment tag into lines.
func splitComment(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, "|")
}
