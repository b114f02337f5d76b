// FILE: lixenwraith/yamlsettings/writer.go
package settings

import (
	"fmt"
	"strings"
)

// indentUnit is the indentation of one nesting level.
const indentUnit = "    "

// Writer renders a PathTree as nested, commented YAML.
type Writer struct {
	encoder *Encoder
}

// NewWriter creates a writer. A nil encoder uses NewEncoder(nil).
func NewWriter(encoder *Encoder) *Writer {
	if encoder == nil {
		encoder = NewEncoder(nil)
	}
	return &Writer{encoder: encoder}
}

// Render writes all entries of tree in registration order in a single pass.
// Values come from r; absent or invalid values are replaced by the property's default.
//
// Entries sharing a parent prefix must be registered contiguously: the writer
// never looks back, so a prefix that reappears later opens a second block.
// Every top-level block is preceded by a blank line, the first one included.
func (w *Writer) Render(tree *PathTree, comments *CommentRegistry, r Reader) (string, error) {
	var b strings.Builder

	for _, line := range comments.Section("") {
		writeComment(&b, 0, line)
	}

	var current Path
	for _, entry := range tree.Entries() {
		parent := entry.Path.Parent()
		common := CommonPrefix(current, parent)
		if len(common) == 0 {
			b.WriteString("\n")
		}

		level := len(common)
		for _, segment := range SuffixAfter(parent, len(common)) {
			b.WriteString(indent(level))
			b.WriteString(segment)
			b.WriteString(":\n")
			level++
			for _, line := range comments.Section(parent[:level].String()) {
				writeComment(&b, level, line)
			}
		}

		for _, line := range entry.Comments {
			writeComment(&b, level, line)
		}
		for _, line := range comments.Leaf(entry.Path.String()) {
			writeComment(&b, level, line)
		}

		encoded, err := w.encodeEntry(entry, r)
		if err != nil {
			return "", err
		}
		b.WriteString(indent(level))
		b.WriteString(entry.Path.Last())
		b.WriteString(":")
		lines := strings.Split(encoded, "\n")
		if lines[0] != "" {
			b.WriteString(" ")
			b.WriteString(lines[0])
		}
		b.WriteString("\n")
		for _, line := range lines[1:] {
			if line != "" {
				b.WriteString(indent(level))
				b.WriteString(line)
			}
			b.WriteString("\n")
		}

		current = parent
	}

	return b.String(), nil
}

func (w *Writer) encodeEntry(entry *PropertyEntry, r Reader) (string, error) {
	value := entry.Property.DefaultValue()
	if r != nil {
		if v, ok, err := entry.Property.Lookup(r); ok && err == nil {
			value = v
		}
	}

	encoded, err := w.encoder.Encode(entry.Property, value)
	if err != nil {
		return "", fmt.Errorf("failed to encode property '%s': %w", entry.Path, err)
	}
	return encoded, nil
}

func writeComment(b *strings.Builder, level int, comment string) {
	b.WriteString(indent(level))
	if comment == "" {
		b.WriteString("#\n")
		return
	}
	b.WriteString("# ")
	b.WriteString(comment)
	b.WriteString("\n")
}

func indent(level int) string {
	return strings.Repeat(indentUnit, level)
}
