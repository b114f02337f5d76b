// FILE: lixenwraith/yamlsettings/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	settings "github.com/lixenwraith/yamlsettings"
)

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
)

func (l logLevel) String() string {
	switch l {
	case levelDebug:
		return "debug"
	case levelWarn:
		return "warn"
	default:
		return "info"
	}
}

// Limits is stored as a bean under server.limits.
type Limits struct {
	MaxConns  int           `comment:"Upper bound of open connections"`
	IdleAfter time.Duration `yaml:"idle_after"`
}

type ServerSettings struct {
	Host   *settings.TypedProperty[string] `comment:"Interface to bind"`
	Port   *settings.TypedProperty[int]
	Limits *settings.TypedProperty[Limits]
}

type AppSettings struct {
	Server ServerSettings
	Level  *settings.TypedProperty[logLevel] `comment:"Log verbosity"`
	Tags   *settings.TypedProperty[[]string]
}

func (AppSettings) SectionComments() map[string][]string {
	return map[string][]string{
		"":       {"Example application settings", ""},
		"server": {"Network listener"},
	}
}

const settingsFilePath = "example.yml"

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}
	defer logger.Sync()

	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.Remove(settingsFilePath)
		log.Printf("Removed %s.", settingsFilePath)
	}()

	app := AppSettings{
		Server: ServerSettings{
			Host:   settings.NewStringProperty("server.host", "localhost"),
			Port:   settings.NewIntProperty("server.port", 8080),
			Limits: settings.NewBeanProperty("server.limits", Limits{MaxConns: 64, IdleAfter: time.Minute}, nil),
		},
		Level: settings.NewEnumProperty("log.level", levelInfo, levelDebug, levelInfo, levelWarn),
		Tags:  settings.NewStringListProperty("log.tags", "example"),
	}

	// =========================================================================
	// PART 1: BUILD
	// The file does not exist yet, so the migration writes it with defaults.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Building settings...")

	s, err := settings.NewBuilder().
		WithFile(settingsFilePath).
		WithHolders(app).
		WithLogger(logger).
		WithValidator(func(s *settings.Settings) error {
			if port := settings.Get(s, app.Server.Port); port <= 0 || port > 65535 {
				return fmt.Errorf("port %d out of range", port)
			}
			return nil
		}).
		Build()
	if err != nil && !errors.Is(err, settings.ErrConfigNotFound) {
		log.Fatalf("❌ Failed to build settings: %v", err)
	}
	printFile("Generated file")

	// =========================================================================
	// PART 2: READ AND UPDATE
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Reading and updating values...")

	log.Printf("   server.host   = %s", settings.Get(s, app.Server.Host))
	log.Printf("   server.limits = %+v", settings.Get(s, app.Server.Limits))

	if err := s.Set(app.Server.Port, 9090); err != nil {
		log.Fatalf("❌ Failed to set port: %v", err)
	}
	if err := s.Set(app.Level, levelWarn); err != nil {
		log.Fatalf("❌ Failed to set level: %v", err)
	}
	if err := s.Set(app.Server.Limits, Limits{MaxConns: 256, IdleAfter: 5 * time.Minute}); err != nil {
		log.Fatalf("❌ Failed to set limits: %v", err)
	}
	if err := s.Set(app.Tags, []string{"example", "edited"}); err != nil {
		log.Fatalf("❌ Failed to set tags: %v", err)
	}

	if err := s.Save(); err != nil {
		log.Fatalf("❌ Failed to save: %v", err)
	}
	printFile("Saved file")

	// =========================================================================
	// PART 3: EXTERNAL EDIT AND RELOAD
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Reloading after an external edit...")

	if err := os.WriteFile(settingsFilePath, []byte("server:\n    port: 7070\n"), 0644); err != nil {
		log.Fatalf("❌ Failed to edit file: %v", err)
	}
	if err := s.Reload(); err != nil {
		log.Fatalf("❌ Failed to reload: %v", err)
	}
	log.Printf("   server.port = %d", settings.Get(s, app.Server.Port))
	log.Printf("   log.level   = %s", settings.Get(s, app.Level))
	printFile("Completed file")
}

func printFile(title string) {
	data, err := os.ReadFile(settingsFilePath)
	if err != nil {
		log.Printf("⚠️  Could not read %s: %v", settingsFilePath, err)
		return
	}
	log.Printf("📄 %s:\n%s", title, data)
}
