package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// Image embedding providers.
const (
	VisionOpenAI = "openai"
	VisionONNX   = "onnx"
	VisionNone   = "none"
)

// Config holds the SmartShopper API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Index      IndexConfig      `yaml:"index"`
	Cache      CacheConfig      `yaml:"cache"`
	Generation GenerationConfig `yaml:"generation"`
	Vision     VisionConfig     `yaml:"vision"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string        `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  LogFileConfig `yaml:"file"`
}

// LogFileConfig enables rotated file output next to stderr.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds the product index connection. The index needs the
// Redis Query Engine, so only the redis driver is accepted.
type IndexConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Name             string   `yaml:"name"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	VisualScanBatch  int      `yaml:"visual_scan_batch"`
}

// CacheConfig holds the cache layer settings.
type CacheConfig struct {
	Driver    string         `yaml:"driver"` // redis, valkey, memory, none (default: memory)
	Addrs     []string       `yaml:"addrs"`
	Username  string         `yaml:"username"`
	Password  string         `yaml:"password"`
	DB        int            `yaml:"db"`
	KeyPrefix string         `yaml:"key_prefix"`
	TTLSec    map[string]int `yaml:"ttl_sec"` // namespace -> seconds
}

// TTLs converts the per-namespace overrides.
func (c CacheConfig) TTLs() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.TTLSec))
	for ns, sec := range c.TTLSec {
		out[ns] = time.Duration(sec) * time.Second
	}
	return out
}

// GenerationConfig configures the text generation providers. Providers run
// in a fixed order: openai first, then gigachat.
type GenerationConfig struct {
	TimeoutSec int                    `yaml:"timeout_sec"`
	OpenAI     OpenAIConfig           `yaml:"openai"`
	GigaChat   GigaChatProviderConfig `yaml:"gigachat"`
}

// OpenAIConfig targets any OpenAI-compatible endpoint. Empty APIKey disables it.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Enabled reports whether the provider has credentials.
func (c OpenAIConfig) Enabled() bool { return c.APIKey != "" }

// GigaChatProviderConfig holds GigaChat settings. Empty APIKey disables it.
type GigaChatProviderConfig struct {
	APIKey             string `yaml:"api_key"`
	Scope              string `yaml:"scope"`
	Model              string `yaml:"model"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// Enabled reports whether the provider has credentials.
func (c GigaChatProviderConfig) Enabled() bool { return c.APIKey != "" }

// VisionConfig selects the image embedding provider and the optional analyzer.
type VisionConfig struct {
	Provider   string       `yaml:"provider"` // openai, onnx, none (default: none)
	OpenAI     OpenAIConfig `yaml:"openai"`
	Dimensions int          `yaml:"dimensions"`
	ONNX       ONNXConfig   `yaml:"onnx"`
	Analyzer   OpenAIConfig `yaml:"analyzer"`
	TextPrompt string       `yaml:"text_prompt"`
}

// ONNXConfig points at an exported CLIP vision tower.
type ONNXConfig struct {
	ModelPath   string `yaml:"model_path"`
	LibraryPath string `yaml:"library_path"`
	ImageSize   int    `yaml:"image_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data and decodes it.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Name == "" {
		c.Index.Name = "products"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "smartshopper:"
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Index.VisualScanBatch <= 0 {
		c.Index.VisualScanBatch = 1000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = DriverMemory
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "smartshopper:cache:"
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 30
	}
	if c.Generation.OpenAI.Model == "" {
		c.Generation.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Vision.Provider == "" {
		c.Vision.Provider = VisionNone
	}
	if c.Vision.TextPrompt == "" {
		c.Vision.TextPrompt = "a photo of %s"
	}
	if c.Vision.Analyzer.Model == "" {
		c.Vision.Analyzer.Model = "gpt-4o"
	}
	if c.Logging.File.Path != "" {
		if c.Logging.File.MaxSizeMB <= 0 {
			c.Logging.File.MaxSizeMB = 100
		}
		if c.Logging.File.MaxBackups <= 0 {
			c.Logging.File.MaxBackups = 5
		}
		if c.Logging.File.MaxAgeDays <= 0 {
			c.Logging.File.MaxAgeDays = 28
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Index.Addrs) == 0 {
		return fmt.Errorf("index.addrs is required")
	}

	switch c.Cache.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	case DriverMemory, DriverNone:
		// ok
	default:
		return fmt.Errorf("cache.driver must be one of redis, valkey, memory, none, got %q", c.Cache.Driver)
	}
	for ns, sec := range c.Cache.TTLSec {
		if sec < 0 {
			return fmt.Errorf("cache.ttl_sec.%s must not be negative, got %d", ns, sec)
		}
	}

	switch c.Vision.Provider {
	case VisionOpenAI:
		if !c.Vision.OpenAI.Enabled() || c.Vision.OpenAI.Model == "" {
			return fmt.Errorf("vision.openai.api_key and vision.openai.model are required for provider %q",
				VisionOpenAI)
		}
	case VisionONNX:
		if c.Vision.ONNX.ModelPath == "" {
			return fmt.Errorf("vision.onnx.model_path is required for provider %q", VisionONNX)
		}
	case VisionNone:
		// ok
	default:
		return fmt.Errorf("vision.provider must be one of openai, onnx, none, got %q", c.Vision.Provider)
	}
	if !strings.Contains(c.Vision.TextPrompt, "%s") {
		return fmt.Errorf("vision.text_prompt must contain %%s")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
