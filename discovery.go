// FILE: lixenwraith/yamlsettings/discovery.go
package settings

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic settings file discovery
type FileDiscoveryOptions struct {
	// Base name of settings file (without extension)
	Name string

	// Extensions to try (in order); the first one names a file created from scratch
	Extensions []string

	// Legacy extensions imported when no settings file exists
	LegacyExtensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config" or "-c")
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:             appName,
		Extensions:       []string{".yml", ".yaml"},
		LegacyExtensions: []string{".toml", ".json"},
		EnvVar:           strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:          "--config",
		UseXDG:           true,
		UseCurrentDir:    true,
	}
}

// WithFileDiscovery enables automatic settings file discovery.
// When only a legacy file is found, it is imported and the settings file
// is created next to it.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	// Check CLI args first (highest priority)
	if opts.CLIFlag != "" && len(b.args) > 0 {
		for i, arg := range b.args {
			if arg == opts.CLIFlag && i+1 < len(b.args) {
				b.file = b.args[i+1]
				return b
			}
			if strings.HasPrefix(arg, opts.CLIFlag+"=") {
				b.file = strings.TrimPrefix(arg, opts.CLIFlag+"=")
				return b
			}
		}
	}

	// Check environment variable
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			b.file = path
			return b
		}
	}

	var searchPaths []string

	// Custom paths first
	searchPaths = append(searchPaths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if opts.UseXDG {
		searchPaths = append(searchPaths, getXDGConfigPaths(opts.Name)...)
	}

	if path, ok := findFile(searchPaths, opts.Name, opts.Extensions); ok {
		b.file = path
		return b
	}

	if len(opts.Extensions) > 0 {
		if legacy, ok := findFile(searchPaths, opts.Name, opts.LegacyExtensions); ok {
			b.importFile = legacy
			b.file = strings.TrimSuffix(legacy, filepath.Ext(legacy)) + opts.Extensions[0]
		}
	}

	// No file found is not an error - app can run with defaults
	return b
}

func findFile(dirs []string, name string, extensions []string) (string, bool) {
	for _, dir := range dirs {
		for _, ext := range extensions {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}
	return "", false
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string) []string {
	var paths []string

	// XDG_CONFIG_HOME
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// XDG_CONFIG_DIRS
	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
