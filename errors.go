// FILE: lixenwraith/yamlsettings/errors.go
package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the settings file does not exist.
	// It is not fatal: defaults are used and migration writes a fresh file.
	ErrConfigNotFound = errors.New("settings file not found")

	// ErrUnsupportedFormat is returned when a file format cannot be read or written.
	ErrUnsupportedFormat = errors.New("unsupported settings file format")

	// ErrNameClash is returned when two bean properties share an export name.
	ErrNameClash = errors.New("duplicate property name")

	// ErrEmptyExportName is returned when an export name override is empty.
	ErrEmptyExportName = errors.New("export name may not be empty")

	// ErrMissingValue is returned when a required bean property has no value.
	ErrMissingValue = errors.New("missing required value")

	// ErrConversion is returned when a raw value cannot be converted to the target type.
	ErrConversion = errors.New("cannot convert value")
)

// MappingError reports a failure while resolving or mapping a bean property.
// Path is the dotted path of the offending property, e.g. "server.ports[1]".
type MappingError struct {
	Path string
	Msg  string
	Err  error
}

func (e *MappingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("property '%s': %s: %v", e.Path, e.Msg, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// ResourceError wraps an I/O failure together with the file it concerns.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to %s settings file '%s': %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

func mappingErr(path string, err error, format string, args ...any) error {
	return &MappingError{
		Path: path,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}
