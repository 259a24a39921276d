package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	mapping map[string]string // env var -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader with the default GRIDEDIT_ mappings.
func NewEnvLoader() *EnvLoader {
	return NewEnvLoaderWithMapping(DefaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom mappings.
func NewEnvLoaderWithMapping(mapping map[string]string) *EnvLoader {
	return &EnvLoader{mapping: mapping, lookup: os.LookupEnv}
}

// DefaultEnvMapping returns the environment variables gridedit reads.
func DefaultEnvMapping() map[string]string {
	return map[string]string{
		"GRIDEDIT_LOG_LEVEL":        "log.level",
		"GRIDEDIT_LOG_FORMAT":       "log.format",
		"GRIDEDIT_LOG_FILE":         "log.file",
		"GRIDEDIT_CLOSE_DELAY":      "menu.closeDelay",
		"GRIDEDIT_MAX_COLUMN_WIDTH": "grid.maxColumnWidth",
		"GRIDEDIT_SCROLL_MARGIN":    "grid.scrollMargin",
	}
}

// SetLookup replaces the environment lookup, for tests.
func (l *EnvLoader) SetLookup(fn func(string) (string, bool)) {
	l.lookup = fn
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Load reads the mapped environment variables into a configuration map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// parseValue turns integers and booleans into typed values.
// Everything else, durations included, stays a string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
