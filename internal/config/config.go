package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"thumbq/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Defaults
const (
	DefaultFlavor     = "normal"
	DefaultScheduler  = "default"
	DefaultEngine     = "uring"
	DefaultRPCTimeout = time.Second
)

// ErrNoCacheDir is returned when neither XDG_CACHE_HOME nor HOME is set.
var ErrNoCacheDir = errors.New("cannot locate cache directory: XDG_CACHE_HOME and HOME are unset")

// Config holds all thumbq configuration
type Config struct {
	Flavor      string        `yaml:"flavor"`
	Scheduler   string        `yaml:"scheduler"`
	Engine      string        `yaml:"engine"`
	Workers     int           `yaml:"workers"`
	MetricsFile string        `yaml:"metrics_file"`
	LogLevel    string        `yaml:"log_level"`
	RPCTimeout  time.Duration `yaml:"timeout"`

	// Derived
	CacheDir string `yaml:"-"`
	File     string `yaml:"-"`
}

// Load builds the configuration from defaults, the YAML file and the
// environment.
func Load() (*Config, error) {
	cfg := &Config{
		Flavor:     DefaultFlavor,
		Scheduler:  DefaultScheduler,
		Engine:     DefaultEngine,
		RPCTimeout: DefaultRPCTimeout,
	}

	cacheDir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	cfg.CacheDir = cacheDir

	cfg.File = configFile()
	if cfg.File != "" {
		if err := cfg.loadFile(cfg.File); err != nil {
			return nil, err
		}
	}

	cfg.Flavor = getEnv("THUMBQ_FLAVOR", cfg.Flavor)
	cfg.Scheduler = getEnv("THUMBQ_SCHEDULER", cfg.Scheduler)
	cfg.Engine = getEnv("THUMBQ_ENGINE", cfg.Engine)
	cfg.MetricsFile = getEnv("THUMBQ_METRICS_FILE", cfg.MetricsFile)
	cfg.Workers = getEnvInt("THUMBQ_WORKERS", cfg.Workers)
	cfg.RPCTimeout = getEnvDuration("THUMBQ_RPC_TIMEOUT", cfg.RPCTimeout)

	if cfg.RPCTimeout <= 0 {
		logging.Warn("Invalid RPC timeout %s, using default: %s", cfg.RPCTimeout, DefaultRPCTimeout)
		cfg.RPCTimeout = DefaultRPCTimeout
	}
	if cfg.Workers < 0 {
		logging.Warn("Invalid worker count %d, using automatic", cfg.Workers)
		cfg.Workers = 0
	}

	logging.Debug("config: file=%q cache=%s flavor=%s scheduler=%s engine=%s workers=%d timeout=%s",
		cfg.File, cfg.CacheDir, cfg.Flavor, cfg.Scheduler, cfg.Engine, cfg.Workers, cfg.RPCTimeout)

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("config: no file at %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func cacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir, nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache"), nil
	}
	return "", ErrNoCacheDir
}

func configFile() string {
	if path := os.Getenv("THUMBQ_CONFIG"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "thumbq", "config.yaml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "thumbq", "config.yaml")
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
