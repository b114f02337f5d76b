// FILE: lixenwraith/yamlsettings/settings.go
package settings

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Settings manages a set of registered properties backed by a resource.
// All methods are safe for concurrent use.
type Settings struct {
	resource  Resource
	tree      *PathTree
	comments  *CommentRegistry
	writer    *Writer
	migration MigrationService
	logger    *zap.Logger
	mutex     sync.RWMutex
}

func newSettings(resource Resource, tree *PathTree, comments *CommentRegistry, writer *Writer, migration MigrationService, logger *zap.Logger) *Settings {
	return &Settings{
		resource:  resource,
		tree:      tree,
		comments:  comments,
		writer:    writer,
		migration: migration,
		logger:    logger,
	}
}

// Get returns the value of p, or its default when the resource has no valid value.
func Get[T any](s *Settings, p *TypedProperty[T]) T {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return p.Get(s.resource)
}

// Lookup returns the value of p. ok is false when the resource has no value.
func (s *Settings) Lookup(p Property) (value any, ok bool, err error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return p.Lookup(s.resource)
}

// Set stores value for p in memory. Call Save to persist it.
func (s *Settings) Set(p Property, value any) error {
	raw, err := p.ToRaw(value)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.resource.SetValue(p.Path(), raw)
	return nil
}

// Reset removes the stored value of p so its default applies.
func (s *Settings) Reset(p Property) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.resource.SetValue(p.Path(), nil)
}

// Save writes all registered properties to the resource.
func (s *Settings) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.save()
}

func (s *Settings) save() error {
	if err := s.resource.Export(s.tree, s.comments); err != nil {
		return err
	}
	s.logger.Debug("settings saved",
		zap.String("resource", resourceName(s.resource)),
		zap.Int("properties", s.tree.Len()))
	return nil
}

// Reload rereads the resource and runs the migration service.
// A missing file is reported with an error matching ErrConfigNotFound when
// the migration did not create it.
func (s *Settings) Reload() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.load()
}

func (s *Settings) load() error {
	name := resourceName(s.resource)

	loadErr := s.resource.Reload()
	notFound := errors.Is(loadErr, ErrConfigNotFound)
	if loadErr != nil && !notFound {
		return loadErr
	}
	if notFound {
		s.logger.Debug("settings file not found, using defaults", zap.String("resource", name))
	}

	if unknown := UnknownPaths(s.resource, s.tree); len(unknown) > 0 {
		s.logger.Debug("settings contain unregistered paths",
			zap.String("resource", name),
			zap.Strings("paths", unknown))
	}

	migrate := s.migration != nil && s.migration.CheckAndMigrate(s.resource, s.tree)
	if imported, ok := s.resource.(interface{ Imported() bool }); ok && imported.Imported() {
		s.logger.Info("settings imported from legacy file", zap.String("resource", name))
		migrate = true
	}

	if !migrate {
		s.logger.Debug("settings loaded", zap.String("resource", name))
		return loadErr
	}

	s.logger.Info("settings migrated, saving", zap.String("resource", name))
	if err := s.save(); err != nil {
		return fmt.Errorf("failed to save migrated settings: %w", err)
	}
	return nil
}

// Dump renders the current settings as YAML without writing them.
func (s *Settings) Dump() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.writer.Render(s.tree, s.comments, s.resource)
}

// Missing returns the paths of registered properties without a valid value.
func (s *Settings) Missing() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return MissingProperties(s.resource, s.tree)
}

// Tree returns the registered properties.
func (s *Settings) Tree() *PathTree {
	return s.tree
}

// Comments returns the comment registry used when saving.
func (s *Settings) Comments() *CommentRegistry {
	return s.comments
}

func resourceName(r Resource) string {
	if f, ok := r.(*FileResource); ok {
		return f.Path()
	}
	return fmt.Sprintf("%T", r)
}
