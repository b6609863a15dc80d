package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Konsultn-Engineering/metaobject/core"
	"github.com/Konsultn-Engineering/metaobject/schema"
)

// Environment variables read by Load.
const (
	EnvLogLevel         = "METAOBJECT_LOG_LEVEL"
	EnvInvokerCacheSize = "METAOBJECT_INVOKER_CACHE_SIZE"
	EnvPathCacheSize    = "METAOBJECT_PATH_CACHE_SIZE"
	EnvManifest         = "METAOBJECT_MANIFEST"
	EnvIDGenerator      = "METAOBJECT_ID_GENERATOR"
)

// Config holds the Engine settings. Manifest is the path of a YAML manifest
// of dynamic Data types.
type Config struct {
	LogLevel         slog.Level
	InvokerCacheSize int
	PathCacheSize    int
	Manifest         string
	IDGenerator      string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel:         slog.LevelInfo,
		InvokerCacheSize: 1024,
		PathCacheSize:    256,
		IDGenerator:      "ulid",
	}
}

// Load reads the configuration from the environment. Values in files, which
// use the .env format, fill in variables the environment does not set.
// Without files a .env in the working directory is used when present.
func Load(files ...string) (*Config, error) {
	fileEnv := map[string]string{}
	if len(files) > 0 {
		env, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("config: reading env files: %w", err)
		}
		fileEnv = env
	} else if env, err := godotenv.Read(); err == nil {
		fileEnv = env
	}

	return parse(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

func parse(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if raw, ok := lookupTrimmed(lookup, EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	}

	var err error
	if cfg.InvokerCacheSize, err = intVar(lookup, EnvInvokerCacheSize, cfg.InvokerCacheSize); err != nil {
		return nil, err
	}
	if cfg.PathCacheSize, err = intVar(lookup, EnvPathCacheSize, cfg.PathCacheSize); err != nil {
		return nil, err
	}

	if raw, ok := lookupTrimmed(lookup, EnvManifest); ok {
		cfg.Manifest = raw
	}
	if raw, ok := lookupTrimmed(lookup, EnvIDGenerator); ok {
		cfg.IDGenerator = strings.ToLower(raw)
	}

	return cfg, nil
}

// Logger returns a text logger writing to stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

// Options converts the configuration to Engine options. The manifest file
// is read here.
func (c *Config) Options() ([]core.Option, error) {
	opts := []core.Option{
		core.WithLogger(c.Logger()),
		core.WithInvokerCacheSize(c.InvokerCacheSize),
		core.WithPathCacheSize(c.PathCacheSize),
	}

	if c.Manifest != "" {
		m, err := schema.LoadManifest(c.Manifest)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvManifest, err)
		}
		opts = append(opts, core.WithManifest(m))
	}
	return opts, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func intVar(lookup func(string) (string, bool), key string, fallback int) (int, error) {
	raw, ok := lookupTrimmed(lookup, key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}
