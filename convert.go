// FILE: lixenwraith/yamlsettings/convert.go
package settings

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Converter turns raw decoded YAML values into values of a Go type and back.
type Converter interface {
	// Handles reports whether the converter is responsible for type t.
	Handles(t reflect.Type) bool
	// FromRaw converts a raw decoded value into a value of type t.
	FromRaw(raw any, t reflect.Type) (reflect.Value, error)
	// ToRaw converts a value into something yaml.v3 can encode as a scalar.
	ToRaw(v reflect.Value) (any, error)
}

// ConversionRegistry is an ordered set of converters for leaf values.
// Custom converters are consulted first, then registered enums, then the built-ins.
type ConversionRegistry struct {
	mu       sync.RWMutex
	custom   []Converter
	enums    map[reflect.Type]*enumConverter
	builtins []Converter
}

// NewConversionRegistry creates a registry holding the built-in converters.
func NewConversionRegistry() *ConversionRegistry {
	return &ConversionRegistry{
		enums: make(map[reflect.Type]*enumConverter),
		builtins: []Converter{
			durationConverter{},
			textConverter{},
			scalarConverter{},
		},
	}
}

// Add registers a custom converter ahead of the built-ins.
func (r *ConversionRegistry) Add(c Converter) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = append(r.custom, c)
}

// RegisterEnum declares the complete value set of an enumeration type.
// Values are written as their String() name and read back by name.
func RegisterEnum[T interface {
	comparable
	fmt.Stringer
}](r *ConversionRegistry, values ...T) {
	ec := &enumConverter{
		byName: make(map[string]reflect.Value, len(values)),
	}
	for _, v := range values {
		rv := reflect.ValueOf(v)
		ec.names = append(ec.names, v.String())
		ec.byName[v.String()] = rv
	}

	t := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[t] = ec
}

// IsEnum reports whether t was registered with RegisterEnum.
func (r *ConversionRegistry) IsEnum(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.enums[t]
	return ok
}

// Lookup returns the converter responsible for t.
func (r *ConversionRegistry) Lookup(t reflect.Type) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.custom {
		if c.Handles(t) {
			return c, true
		}
	}
	if ec, ok := r.enums[t]; ok {
		return ec, true
	}
	for _, c := range r.builtins {
		if c.Handles(t) {
			return c, true
		}
	}
	return nil, false
}

// IsLeaf reports whether values of t are converted as a whole rather than mapped as a bean.
func (r *ConversionRegistry) IsLeaf(t reflect.Type) bool {
	_, ok := r.Lookup(t)
	return ok
}

// Convert converts raw into a value of type t using the responsible converter.
func (r *ConversionRegistry) Convert(raw any, t reflect.Type) (reflect.Value, error) {
	if raw != nil {
		rv := reflect.ValueOf(raw)
		if rv.Type() == t {
			return rv, nil
		}
	}

	c, ok := r.Lookup(t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: no converter for type %s", ErrConversion, t)
	}
	return c.FromRaw(raw, t)
}

// Export converts v into a raw value using the responsible converter.
// Values of unhandled types are returned as-is.
func (r *ConversionRegistry) Export(v reflect.Value) (any, error) {
	c, ok := r.Lookup(v.Type())
	if !ok {
		return v.Interface(), nil
	}
	return c.ToRaw(v)
}

// enumConverter maps enumeration values to and from their names.
type enumConverter struct {
	names  []string
	byName map[string]reflect.Value
}

func (c *enumConverter) Handles(reflect.Type) bool { return true }

func (c *enumConverter) FromRaw(raw any, t reflect.Type) (reflect.Value, error) {
	name, ok := raw.(string)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: expected enum name for %s, got %T", ErrConversion, t, raw)
	}
	if v, found := c.byName[name]; found {
		return v, nil
	}
	for known, v := range c.byName {
		if strings.EqualFold(known, name) {
			return v, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: %q is not one of %s", ErrConversion, name, strings.Join(c.names, ", "))
}

func (c *enumConverter) ToRaw(v reflect.Value) (any, error) {
	return v.Interface().(fmt.Stringer).String(), nil
}

var durationType = reflect.TypeFor[time.Duration]()

// durationConverter reads "1m30s" style strings and plain integers as seconds.
type durationConverter struct{}

func (durationConverter) Handles(t reflect.Type) bool { return t == durationType }

func (durationConverter) FromRaw(raw any, t reflect.Type) (reflect.Value, error) {
	switch v := raw.(type) {
	case int:
		return reflect.ValueOf(time.Duration(v) * time.Second), nil
	case int64:
		return reflect.ValueOf(time.Duration(v) * time.Second), nil
	}

	var d time.Duration
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &d,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return reflect.Value{}, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return reflect.ValueOf(d), nil
}

func (durationConverter) ToRaw(v reflect.Value) (any, error) {
	return v.Interface().(time.Duration).String(), nil
}

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
)

// textConverter handles types with a text form, e.g. uuid.UUID, net.IP and time.Time.
type textConverter struct{}

func (textConverter) Handles(t reflect.Type) bool {
	return t.Kind() != reflect.Pointer &&
		t.Implements(textMarshalerType) &&
		reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (textConverter) FromRaw(raw any, t reflect.Type) (reflect.Value, error) {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	case nil:
		return reflect.Value{}, fmt.Errorf("%w: no value for %s", ErrConversion, t)
	default:
		text = fmt.Sprint(v)
	}

	ptr := reflect.New(t)
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return ptr.Elem(), nil
}

func (textConverter) ToRaw(v reflect.Value) (any, error) {
	text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return string(text), nil
}

// scalarConverter handles booleans, numbers and strings, including named types of those kinds.
type scalarConverter struct{}

func (scalarConverter) Handles(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (scalarConverter) FromRaw(raw any, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Value{}, fmt.Errorf("%w: no value for %s", ErrConversion, t)
	}
	if err := checkNumericRange(raw, t); err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(t)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           ptr.Interface(),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return reflect.Value{}, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return ptr.Elem(), nil
}

func (scalarConverter) ToRaw(v reflect.Value) (any, error) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return nil, fmt.Errorf("%w: %s is not a scalar", ErrConversion, v.Type())
}

// checkNumericRange rejects numeric conversions that would truncate or overflow.
// mapstructure silently truncates floats into integers.
func checkNumericRange(raw any, t reflect.Type) error {
	rv := reflect.ValueOf(raw)
	target := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 || target.OverflowInt(int64(f)) {
				return fmt.Errorf("%w: %v does not fit into %s", ErrConversion, raw, t)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if target.OverflowInt(rv.Int()) {
				return fmt.Errorf("%w: %v overflows %s", ErrConversion, raw, t)
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if rv.Int() < 0 || target.OverflowUint(uint64(rv.Int())) {
				return fmt.Errorf("%w: %v does not fit into %s", ErrConversion, raw, t)
			}
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) || f < 0 || f > math.MaxUint64 || target.OverflowUint(uint64(f)) {
				return fmt.Errorf("%w: %v does not fit into %s", ErrConversion, raw, t)
			}
		}
	}
	return nil
}
