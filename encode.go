// FILE: lixenwraith/yamlsettings/encode.go
package settings

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// EncodeRule encodes a property value. It returns false when it does not apply.
type EncodeRule func(p Property, value any) (encoded string, ok bool, err error)

// Encoder turns property values into YAML text for the Writer.
//
// Precedence is fixed: string lists, enums, strings, custom rules, default.
// String lists render as a block sequence starting on the next line; strings
// and enum names are single-quoted; everything else uses the plain yaml.v3
// encoding, with beans, maps and lists rendered as blocks.
type Encoder struct {
	mapper *Mapper
	rules  []EncodeRule
}

// NewEncoder creates an encoder. A nil mapper uses NewMapper(nil).
func NewEncoder(mapper *Mapper) *Encoder {
	if mapper == nil {
		mapper = NewMapper(nil)
	}
	return &Encoder{mapper: mapper}
}

// AddRule registers a custom rule, consulted after the built-in quoting rules.
func (e *Encoder) AddRule(rule EncodeRule) {
	if rule != nil {
		e.rules = append(e.rules, rule)
	}
}

// Encode returns the YAML representation of value. A multi-line result's
// continuation lines are relative to the key's indentation.
func (e *Encoder) Encode(p Property, value any) (string, error) {
	if list, ok := value.([]string); ok || (p != nil && p.Kind() == KindStringList) {
		if !ok {
			items, isList := asList(value)
			if !isList {
				return "", fmt.Errorf("%w: string list property has %T value", ErrConversion, value)
			}
			for _, item := range items {
				list = append(list, fmt.Sprint(item))
			}
		}
		return encodeStringList(list)
	}

	if stringer, ok := value.(fmt.Stringer); ok && e.isEnum(p, value) {
		return quote(stringer.String())
	}

	if s, ok := value.(string); ok {
		return quote(s)
	}

	for _, rule := range e.rules {
		encoded, ok, err := rule(p, value)
		if err != nil {
			return "", err
		}
		if ok {
			return encoded, nil
		}
	}

	mapper := e.mapper
	if bp, ok := p.(beanProperty); ok && bp.beanMapper() != nil {
		mapper = bp.beanMapper()
	}
	return encodeDefault(mapper, value)
}

func (e *Encoder) isEnum(p Property, value any) bool {
	if p != nil && p.Kind() == KindEnum {
		return true
	}
	return value != nil && e.mapper.Registry().IsEnum(reflect.TypeOf(value))
}

func encodeStringList(list []string) (string, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range list {
		node.Content = append(node.Content, quotedNode(item))
	}

	out, err := marshalNode(node)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return out, nil
	}
	return "\n" + out, nil
}

func encodeDefault(mapper *Mapper, value any) (string, error) {
	node, err := mapper.Export(value)
	if err != nil {
		return "", err
	}

	if node.Kind != yaml.MappingNode && node.Kind != yaml.SequenceNode {
		return marshalNode(node)
	}

	quoteStrings(node)
	out, err := marshalNode(node)
	if err != nil {
		return "", err
	}
	if len(node.Content) == 0 {
		return out, nil
	}
	if node.Kind == yaml.SequenceNode {
		return "\n" + out, nil
	}

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = indentUnit + line
	}
	return "\n" + strings.Join(lines, "\n"), nil
}

func quote(s string) (string, error) {
	return marshalNode(quotedNode(s))
}

func quotedNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.SingleQuotedStyle}
}

// quoteStrings marks string values (not mapping keys) below node as single-quoted.
func quoteStrings(node *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!str" {
			node.Style = yaml.SingleQuotedStyle
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			quoteStrings(child)
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			quoteStrings(node.Content[i])
		}
	}
}

func marshalNode(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(len(indentUnit))
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
