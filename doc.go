// File: lixenwraith/yamlsettings/doc.go

// Package settings persists application settings as commented YAML.
//
// Settings are declared as Property values with a dotted path and a default.
// A PathTree keeps them in registration order, and the Writer rebuilds nested
// YAML from that order in one pass, with section and leaf comments.
// Struct-valued settings ("beans") are mapped by a Mapper, which discovers each
// struct's properties with a Resolver: exported fields, Get/Is/Set accessor
// pairs, embedded structs as ancestors, and yaml / comment tags.
//
// Features:
//   - Declarative typed properties: string, int, bool, float, duration, string list, enum, bean
//   - Deterministic, commented YAML output written atomically
//   - Migration hook that completes files with defaults and moves renamed keys
//   - Import of legacy TOML and JSON files
//   - Thread-safe access through Settings
//   - Structured logging through zap
//
// Quick Start:
//
//	type ServerSettings struct {
//	    Host *settings.TypedProperty[string] `comment:"Interface to bind"`
//	    Port *settings.TypedProperty[int]
//	}
//
//	var server = ServerSettings{
//	    Host: settings.NewStringProperty("server.host", "localhost"),
//	    Port: settings.NewIntProperty("server.port", 8080),
//	}
//
//	s, err := settings.Quick("app.yml", server)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port := settings.Get(s, server.Port)
//
// The file written for the holder above:
//
//
//	server:
//	    # Interface to bind
//	    host: 'localhost'
//	    port: 8080
//
// Thread Safety:
// Settings methods are safe for concurrent use. Resolved bean properties are
// cached per type for the lifetime of the process.
package settings
