package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/deepseek/errors"
)

// Environment variables recognized by FromEnvironment and FromLookup.
const (
	EnvAPIKey         = "DEEPSEEK_API_KEY"
	EnvBaseURL        = "DEEPSEEK_API_BASE_URL"
	EnvTimeoutSeconds = "DEEPSEEK_TIMEOUT_SECONDS"
	EnvMaxRetries     = "DEEPSEEK_MAX_RETRIES"
	EnvProxy          = "DEEPSEEK_PROXY"
	EnvValidateCerts  = "DEEPSEEK_VALIDATE_CERTS"
	EnvCAFile         = "DEEPSEEK_CA_FILE"
)

const envPrefix = "DEEPSEEK"

var envKeys = []string{
	EnvAPIKey, EnvBaseURL, EnvTimeoutSeconds, EnvMaxRetries,
	EnvProxy, EnvValidateCerts, EnvCAFile,
}

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set are not overridden.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches for
// a .env file next to the working directory. Config files are never
// discovered implicitly.
func (cr *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.EnvFile == "" && !opts.SkipEnvFile {
		resolved.EnvFile = cr.findEnvFile()
	}
	return resolved
}

// findEnvFile searches for .env files in standard locations.
func (cr *Resolver) findEnvFile() string {
	searchPaths := []string{
		"./.env.deepseek",
		"./.env",
		"../.env",
	}
	for _, path := range searchPaths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem  FileSystem
	ConfigFile  string // Direct YAML config file path (optional)
	EnvFile     string // Direct env file path (optional)
	SkipEnvFile bool   // Do not search for a .env file
}

// LoaderOption is a functional option for FromEnvironment.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets a YAML file whose keys (api_key, api_base_url,
// timeout_seconds, ...) are used when the matching variable is unset.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithoutEnvFile disables the .env file search.
func WithoutEnvFile() LoaderOption {
	return func(lc *LoaderConfig) { lc.SkipEnvFile = true }
}

// FromEnvironment builds a Config from DEEPSEEK_* variables. Precedence is
// process environment, then the .env file, then the YAML config file.
func FromEnvironment(opts ...LoaderOption) (Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	v, err := newViper(files, lc.FileSystem)
	if err != nil {
		return Config{}, err
	}
	return FromLookup(func(key string) (string, bool) {
		name := viperKey(key)
		if !v.IsSet(name) {
			return "", false
		}
		return v.GetString(name), true
	})
}

func newViper(files ResolvedFiles, fs FileSystem) (*viper.Viper, error) {
	v := viper.New()

	// 1. YAML config first (lowest precedence)
	if files.ConfigFile != "" {
		if !fs.Exists(files.ConfigFile) {
			return nil, errors.Configf("config file %s not found", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Configf("failed to load config file %s", files.ConfigFile).WithCause(err)
		}
	}

	// 2. .env file into the process environment
	if files.EnvFile != "" {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			return nil, errors.Configf("failed to load env file %s", files.EnvFile).WithCause(err)
		}
	}

	// 3. Bind the recognized variables
	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(viperKey(key)); err != nil {
			return nil, errors.Configf("failed to bind %s", key).WithCause(err)
		}
	}
	return v, nil
}

// viperKey maps DEEPSEEK_API_KEY to api_key.
func viperKey(env string) string {
	return strings.ToLower(strings.TrimPrefix(env, envPrefix+"_"))
}

// FromLookup builds a Config from an arbitrary key/value source keyed by
// the Env* names. Unparsable values fail with a ConfigError rather than
// falling back to defaults.
func FromLookup(lookup func(key string) (string, bool)) (Config, error) {
	apiKey, ok := lookup(EnvAPIKey)
	if !ok {
		return Config{}, errors.Configf("%s environment variable not found, set it to your DeepSeek API key", EnvAPIKey)
	}
	if strings.TrimSpace(apiKey) == "" {
		return Config{}, errors.Configf("%s cannot be empty", EnvAPIKey)
	}

	cfg := New(strings.TrimSpace(apiKey))

	if s, ok := lookup(EnvBaseURL); ok && s != "" {
		cfg = cfg.WithBaseURL(strings.TrimSpace(s))
	}
	if s, ok := lookup(EnvTimeoutSeconds); ok && s != "" {
		secs, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return Config{}, errors.Configf("%s must be a whole number of seconds, got %q", EnvTimeoutSeconds, s)
		}
		cfg = cfg.WithTimeout(time.Duration(secs) * time.Second)
	}
	if s, ok := lookup(EnvMaxRetries); ok && s != "" {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return Config{}, errors.Configf("%s must be an integer, got %q", EnvMaxRetries, s)
		}
		cfg = cfg.WithMaxAttempts(n)
	}
	if s, ok := lookup(EnvProxy); ok && s != "" {
		cfg = cfg.WithProxy(s)
	}
	if s, ok := lookup(EnvValidateCerts); ok && s != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return Config{}, errors.Configf("%s must be true or false, got %q", EnvValidateCerts, s)
		}
		cfg = cfg.WithValidateCerts(b)
	}
	if s, ok := lookup(EnvCAFile); ok && s != "" {
		cfg = cfg.WithCAFile(s)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
