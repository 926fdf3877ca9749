package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
)

// LoadOptions controls where Load looks for configuration
type LoadOptions struct {
	// Path replaces the shared and local files with a single file that must exist
	Path string
	// Dir is searched for the shared and local files and .env. Defaults to
	// the working directory.
	Dir string
	// Env replaces the process environment, for tests
	Env map[string]string
}

// Load resolves the configuration. Layers, lowest precedence first: built-in
// defaults, webhook.yaml, webhook.local.yaml (or the single file named by
// opts.Path), .env, then WEBHOOK_* environment variables.
func Load(opts LoadOptions) (*Config, error) {
	config := Default()

	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, opts.Path)
			}
			return nil, fmt.Errorf("checking config file: %w", err)
		}
		if err := config.applyFile(opts.Path); err != nil {
			return nil, err
		}
	} else {
		for _, path := range FindConfigFiles(opts.Dir) {
			if err := config.applyFile(path); err != nil {
				return nil, err
			}
		}
	}

	dotenvPath := filepath.Join(opts.Dir, ".env")
	var dotenv map[string]string
	if _, err := os.Stat(dotenvPath); err == nil {
		dotenv, err = LoadEnvFile(dotenvPath)
		if err != nil {
			return nil, err
		}
	}

	environ := opts.Env
	if environ == nil {
		environ = processEnv()
	}

	env := MergeEnv(dotenv, environ)
	applied, err := config.applyEnv(env)
	if err != nil {
		return nil, err
	}
	if applied {
		if dotenv != nil {
			config.Sources = append(config.Sources, dotenvPath)
		}
		config.Sources = append(config.Sources, "environment")
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// FindConfigFiles returns the shared and local config files present in dir,
// shared first
func FindConfigFiles(dir string) []string {
	candidates := []string{
		filepath.Join(dir, constants.SharedConfigFile),
		filepath.Join(dir, constants.LocalConfigFile),
	}

	var found []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	return found
}

// LoadEnvFile reads a .env file and returns the variables as a map
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("env file not found: %s", path)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	return env, nil
}

// MergeEnv merges multiple environment maps in order, with later maps taking precedence
func MergeEnv(envMaps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, env := range envMaps {
		for k, v := range env {
			result[k] = v
		}
	}
	return result
}

// applyEnv overlays WEBHOOK_* variables and reports whether any were set
func (c *Config) applyEnv(env map[string]string) (bool, error) {
	var errs []error
	applied := false

	lookup := func(key string) (string, bool) {
		v, ok := env[constants.EnvPrefix+key]
		if ok {
			applied = true
		}
		return v, ok
	}
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, errInvalid("%s%s: %q is not a number", constants.EnvPrefix, key, v))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, errInvalid("%s%s: %q is not a boolean", constants.EnvPrefix, key, v))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok {
			d, err := ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, errInvalid("%s%s: %v", constants.EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	if v, ok := lookup("BASE_URL"); ok {
		c.Webhook.BaseURL = strings.TrimSpace(v)
	}
	setInt("MONITOR_COUNT", &c.Webhook.MonitorCount)
	setInt("LOGS_COUNT", &c.Webhook.LogsCount)
	setDuration("INTERVAL", &c.Webhook.Interval)
	setBool("SHOW_HEADERS", &c.Webhook.ShowHeaders)
	setBool("SHOW_FULL_BODY", &c.Webhook.ShowFullBody)
	setInt("BODY_PREVIEW_LENGTH", &c.Webhook.BodyPreviewLength)
	setDuration("REQUEST_TIMEOUT", &c.Webhook.RequestTimeout)

	return applied, errors.Join(errs...)
}

// processEnv returns the WEBHOOK_* variables of the process environment
func processEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, constants.EnvPrefix) {
			env[key] = value
		}
	}
	return env
}

// CheckFilePermissions checks if a file has secure permissions.
// On Unix-like systems, it verifies the file is not world-writable.
// Returns an error if the file has insecure permissions.
func CheckFilePermissions(path string) error {
	// Skip permission check on Windows
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking file permissions: %w", err)
	}

	// World-writable = others have write (0002)
	if info.Mode().Perm()&0002 != 0 {
		return fmt.Errorf("config file %s has insecure permissions: world-writable files can be modified by any user. Please run: chmod o-w %s", path, path)
	}

	return nil
}
