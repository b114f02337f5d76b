// FILE: lixenwraith/yamlsettings/resource.go
package settings

import (
	"errors"
	"fmt"
	"os"
	"reflect"
)

// Reader gives read access to a raw settings tree by dotted path.
// Typed getters return nil when the value is absent or has another type.
type Reader interface {
	Contains(path string) bool
	Object(path string) any
	String(path string) *string
	Int(path string) *int
	Float(path string) *float64
	Bool(path string) *bool
	List(path string) []any
}

// Resource is a Reader backed by storage that can be reloaded and written.
type Resource interface {
	Reader
	// SetValue stores a raw value at path. A nil value removes the path.
	SetValue(path string, value any)
	// Reload replaces the tree with the stored content.
	Reload() error
	// Export writes the tree's properties with values taken from the resource.
	Export(tree *PathTree, comments *CommentRegistry) error
}

// valueTree is a nested raw settings tree, as decoded from YAML.
type valueTree struct {
	root map[string]any
}

func newValueTree(root map[string]any) *valueTree {
	if root == nil {
		root = make(map[string]any)
	}
	return &valueTree{root: root}
}

func (t *valueTree) Contains(path string) bool {
	return t.Object(path) != nil
}

func (t *valueTree) Object(path string) any {
	value, ok := navigateToPath(t.root, path)
	if !ok {
		return nil
	}
	return value
}

func (t *valueTree) String(path string) *string {
	if s, ok := t.Object(path).(string); ok {
		return &s
	}
	return nil
}

func (t *valueTree) Int(path string) *int {
	v, ok := t.number(path, reflect.TypeFor[int]())
	if !ok {
		return nil
	}
	i := int(v.Int())
	return &i
}

func (t *valueTree) Float(path string) *float64 {
	v, ok := t.number(path, reflect.TypeFor[float64]())
	if !ok {
		return nil
	}
	f := v.Float()
	return &f
}

// number converts numeric values only; numeric strings are not accepted.
func (t *valueTree) number(path string, target reflect.Type) (reflect.Value, bool) {
	raw := t.Object(path)
	if raw == nil {
		return reflect.Value{}, false
	}
	switch reflect.ValueOf(raw).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return reflect.Value{}, false
	}
	v, err := scalarConverter{}.FromRaw(raw, target)
	if err != nil {
		return reflect.Value{}, false
	}
	return v, true
}

func (t *valueTree) Bool(path string) *bool {
	if b, ok := t.Object(path).(bool); ok {
		return &b
	}
	return nil
}

func (t *valueTree) List(path string) []any {
	list, ok := asList(t.Object(path))
	if !ok {
		return nil
	}
	return list
}

func (t *valueTree) SetValue(path string, value any) {
	if path == "" {
		if m, ok := asStringMap(value); ok {
			t.root = m
		} else if value == nil {
			t.root = make(map[string]any)
		}
		return
	}
	if value == nil {
		t.remove(path)
		return
	}
	setNestedValue(t.root, path, value)
}

func (t *valueTree) remove(path string) {
	p, err := ParsePath(path)
	if err != nil {
		return
	}
	parent, ok := navigateToPath(t.root, p.Parent().String())
	if !ok {
		return
	}
	if m, isMap := parent.(map[string]any); isMap {
		delete(m, p.Last())
	}
}

// MemoryResource keeps settings in memory. Export renders into Rendered.
type MemoryResource struct {
	*valueTree
	writer   *Writer
	initial  map[string]any
	rendered string
}

// NewMemoryResource creates a resource over root. A nil writer uses NewWriter(nil).
func NewMemoryResource(root map[string]any, writer *Writer) *MemoryResource {
	if writer == nil {
		writer = NewWriter(nil)
	}
	if root == nil {
		root = make(map[string]any)
	}
	return &MemoryResource{
		valueTree: newValueTree(copyTree(root)),
		writer:    writer,
		initial:   root,
	}
}

// Reload resets the tree to the content the resource was created with.
func (m *MemoryResource) Reload() error {
	m.root = copyTree(m.initial)
	return nil
}

func (m *MemoryResource) Export(tree *PathTree, comments *CommentRegistry) error {
	out, err := m.writer.Render(tree, comments, m)
	if err != nil {
		return err
	}
	m.rendered = out
	return nil
}

// Rendered returns the YAML produced by the last Export.
func (m *MemoryResource) Rendered() string {
	return m.rendered
}

// FileResource reads and writes a settings file.
// YAML, TOML and JSON files can be read; only YAML files are written.
type FileResource struct {
	*valueTree
	path       string
	importPath string
	imported   bool
	writer     *Writer
}

// NewFileResource creates a resource for path without reading it.
// A nil writer uses NewWriter(nil).
func NewFileResource(path string, writer *Writer) *FileResource {
	if writer == nil {
		writer = NewWriter(nil)
	}
	return &FileResource{
		valueTree: newValueTree(nil),
		path:      path,
		writer:    writer,
	}
}

// WithImport sets a legacy file read in place of a missing settings file.
// The next Export writes its values to the settings file.
func (f *FileResource) WithImport(path string) *FileResource {
	f.importPath = path
	return f
}

// Path returns the settings file path.
func (f *FileResource) Path() string {
	return f.path
}

// Imported reports whether the current values were read from the import file.
func (f *FileResource) Imported() bool {
	return f.imported
}

// Reload reads the settings file. A missing file leaves an empty tree and
// returns an error matching ErrConfigNotFound, unless the import file exists.
func (f *FileResource) Reload() error {
	root, err := readDocument(f.path)
	if err == nil {
		f.root = root
		f.imported = false
		return nil
	}

	f.root = make(map[string]any)
	f.imported = false
	if !errors.Is(err, ErrConfigNotFound) || f.importPath == "" {
		return err
	}

	legacy, importErr := readDocument(f.importPath)
	if importErr != nil {
		if errors.Is(importErr, ErrConfigNotFound) {
			return err
		}
		return importErr
	}
	f.root = legacy
	f.imported = true
	return nil
}

// Export renders the tree and atomically replaces the settings file.
// The file is fully rendered before writing starts.
func (f *FileResource) Export(tree *PathTree, comments *CommentRegistry) error {
	if format := detectFileFormat(f.path); format != "" && format != FormatYAML {
		return &ResourceError{Op: "write", Path: f.path, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)}
	}

	out, err := f.writer.Render(tree, comments, f)
	if err != nil {
		return &ResourceError{Op: "render", Path: f.path, Err: err}
	}
	if err := atomicWriteFile(f.path, []byte(out)); err != nil {
		return &ResourceError{Op: "write", Path: f.path, Err: err}
	}
	f.imported = false
	return nil
}

// readDocument reads and decodes a settings file by extension, sniffing the content for unknown extensions.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ResourceError{Op: "read", Path: path, Err: ErrConfigNotFound}
		}
		return nil, &ResourceError{Op: "read", Path: path, Err: err}
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, &ResourceError{Op: "parse", Path: path, Err: ErrUnsupportedFormat}
		}
	}

	root, err := decodeDocument(format, data)
	if err != nil {
		return nil, &ResourceError{Op: "parse", Path: path, Err: err}
	}
	return root, nil
}

// copyTree deep-copies the maps and lists of a raw tree.
func copyTree(root map[string]any) map[string]any {
	out := make(map[string]any, len(root))
	for k, v := range root {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return copyTree(typed)
	case map[any]any:
		m, _ := asStringMap(typed)
		return copyTree(m)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
