// File: lixenwraith/yamlsettings/builder.go
package settings

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// ValidatorFunc defines the signature for a function that can validate a Settings instance.
// It receives the fully loaded *Settings object and should return an error if validation fails.
type ValidatorFunc func(s *Settings) error

// Builder provides a fluent interface for building settings
type Builder struct {
	file       string
	importFile string
	resource   Resource
	holders    []any
	logger     *zap.Logger
	migration  MigrationService
	registry   *ConversionRegistry
	resolver   []ResolverOption
	mapper     *Mapper
	rules      []EncodeRule
	args       []string
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new settings builder
func NewBuilder() *Builder {
	return &Builder{
		registry:   NewConversionRegistry(),
		migration:  PlainMigration{},
		args:       os.Args[1:],
		validators: make([]ValidatorFunc, 0),
	}
}

// WithFile sets the settings file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithImport sets a legacy TOML or JSON file read when the settings file is missing.
func (b *Builder) WithImport(path string) *Builder {
	b.importFile = path
	return b
}

// WithResource sets the resource directly, replacing WithFile
func (b *Builder) WithResource(r Resource) *Builder {
	b.resource = r
	return b
}

// WithHolders adds settings holder structs whose Property fields are registered in order
func (b *Builder) WithHolders(holders ...any) *Builder {
	b.holders = append(b.holders, holders...)
	return b
}

// WithLogger sets the logger; the default discards everything
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMigration sets the migration service; nil disables migration
func (b *Builder) WithMigration(m MigrationService) *Builder {
	b.migration = m
	return b
}

// WithTagName sets the struct tag used for bean property names
func (b *Builder) WithTagName(tagName string) *Builder {
	if tagName == "" {
		b.err = errors.Join(b.err, fmt.Errorf("tag name cannot be empty"))
		return b
	}
	b.resolver = append(b.resolver, WithResolverTagName(tagName))
	return b
}

// WithConverter adds a custom leaf value converter
func (b *Builder) WithConverter(c Converter) *Builder {
	b.registry.Add(c)
	return b
}

// WithMapper sets the bean mapper used for encoding, replacing WithTagName and WithConverter
func (b *Builder) WithMapper(m *Mapper) *Builder {
	b.mapper = m
	return b
}

// WithEncodeRule adds a custom value encoding rule
func (b *Builder) WithEncodeRule(rule EncodeRule) *Builder {
	if rule != nil {
		b.rules = append(b.rules, rule)
	}
	return b
}

// WithArgs sets the command-line arguments used by file discovery
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added; all of them run and their errors are joined
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Settings instance with all specified options.
// A missing settings file is not fatal: the returned error matches ErrConfigNotFound
// and the Settings instance serves defaults.
func (b *Builder) Build() (*Settings, error) {
	if b.err != nil {
		return nil, b.err
	}

	mapper := b.mapper
	if mapper == nil {
		mapper = NewMapper(b.registry, b.resolver...)
	}
	encoder := NewEncoder(mapper)
	for _, rule := range b.rules {
		encoder.AddRule(rule)
	}
	writer := NewWriter(encoder)

	resource := b.resource
	if resource == nil {
		if b.file == "" {
			resource = NewMemoryResource(nil, writer)
		} else {
			fr := NewFileResource(b.file, writer)
			if b.importFile != "" {
				fr.WithImport(b.importFile)
			}
			resource = fr
		}
	}

	tree := NewPathTree()
	comments := NewCommentRegistry()
	for _, holder := range b.holders {
		if err := RegisterStruct(tree, comments, holder); err != nil {
			return nil, fmt.Errorf("failed to register holder %T: %w", holder, err)
		}
	}
	for _, p := range tree.Properties() {
		if bp, ok := p.(beanProperty); ok {
			bp.useMapper(mapper)
		}
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := newSettings(resource, tree, comments, writer, b.migration, logger)

	loadErr := s.load()
	if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
		return nil, loadErr
	}

	var validationErrs []error
	for _, validator := range b.validators {
		if err := validator(s); err != nil {
			validationErrs = append(validationErrs, err)
		}
	}
	if err := errors.Join(validationErrs...); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}

	// ErrConfigNotFound or nil
	return s, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Settings {
	s, err := b.Build()
	if err != nil {
		// ErrConfigNotFound is not fatal, the application runs with defaults.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("settings build failed: %v", err))
		}
	}
	return s
}
