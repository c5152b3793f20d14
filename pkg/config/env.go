package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OUTCOMES_"

// Environment variables read by ApplyEnv.
const (
	EnvConsumerKey    = EnvPrefix + "CONSUMER_KEY"
	EnvConsumerSecret = EnvPrefix + "CONSUMER_SECRET"
	EnvServiceURL     = EnvPrefix + "SERVICE_URL"
	EnvSourcedID      = EnvPrefix + "SOURCEDID"
	EnvAcceptedTypes  = EnvPrefix + "ACCEPTED_TYPES"
	EnvTimeout        = EnvPrefix + "TIMEOUT"
	EnvLogDir         = EnvPrefix + "LOG_DIR"
	EnvLogLevel       = EnvPrefix + "LOG_LEVEL"
	EnvMonitorAddr    = EnvPrefix + "MONITOR_ADDR"
)

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads environment variables from a .env file.
	Load(filepath string) error
	// Get retrieves an environment variable value.
	Get(key string) string
	// GetRequired retrieves a required environment variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves an environment variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
}

// EnvLoader implements Loader with .env file support. OS
// environment values win over file values.
type EnvLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
}

// NewEnvLoader creates an empty loader.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{vars: make(map[string]string)}
}

func (l *EnvLoader) Load(filepath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", filepath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		// Remove surrounding quotes
		l.vars[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}

	l.loaded = true
	return scanner.Err()
}

func (l *EnvLoader) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *EnvLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}

func (l *EnvLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}
