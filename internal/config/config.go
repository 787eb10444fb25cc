package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	MaxImageBytes      int64
	// MaxImagePixels bounds the width x height an image header may declare.
	MaxImagePixels     int64

	ParallelAnalyzers bool
	AnalyzerWorkers   int

	// StagingDir holds downloaded images while they are analyzed; empty
	// means the OS temp directory.
	StagingDir string

	// RemoteSources enables image_url requests. When false only local
	// paths are served.
	RemoteSources     bool
	// AllowPrivateHosts lets image_url point at loopback, private and
	// link-local addresses.
	AllowPrivateHosts bool
	// AllowedImageHosts restricts image_url to these hosts; a leading dot
	// matches subdomains. Empty allows any public host.
	AllowedImageHosts []string
	// ImagePathRoot confines image_path requests to one directory tree;
	// empty allows any path.
	ImagePathRoot     string

	AzureStorageAccount string
	AzureStorageKey     string
}

// fileConfig mirrors Config for the optional YAML file. Durations are
// strings in time.ParseDuration format.
type fileConfig struct {
	Host                string   `yaml:"host"`
	Port                string   `yaml:"port"`
	RequestTimeout      string   `yaml:"request_timeout"`
	ImageFetchTimeout   string   `yaml:"image_fetch_timeout"`
	AnalysisTimeout     string   `yaml:"analysis_timeout"`
	MaxRequestBodySize  *int64   `yaml:"max_request_body_size"`
	MaxImageBytes       *int64   `yaml:"max_image_bytes"`
	MaxImagePixels      *int64   `yaml:"max_image_pixels"`
	ParallelAnalyzers   *bool    `yaml:"parallel_analyzers"`
	AnalyzerWorkers     *int     `yaml:"analyzer_workers"`
	StagingDir          string   `yaml:"staging_dir"`
	RemoteSources       *bool    `yaml:"remote_sources"`
	AllowPrivateHosts   *bool    `yaml:"allow_private_hosts"`
	AllowedImageHosts   []string `yaml:"allowed_image_hosts"`
	ImagePathRoot       string   `yaml:"image_path_root"`
	AzureStorageAccount string   `yaml:"azure_storage_account"`
	AzureStorageKey     string   `yaml:"azure_storage_key"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob URLs can be fetched with a shared key
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		ImageFetchTimeout:  15 * time.Second,
		AnalysisTimeout:    20 * time.Second,
		MaxRequestBodySize: 1024 * 1024,      // 1MB of JSON is plenty
		MaxImageBytes:      50 * 1024 * 1024, // 50MB
		MaxImagePixels:     64_000_000,
		ParallelAnalyzers:  false,
		AnalyzerWorkers:    0,
		RemoteSources:      true,
	}
}

// LoadFromEnv builds the configuration from defaults, then the YAML file
// named by CONFIG_FILE if set, then individual environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail at first use
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0 (got %d)", c.MaxImageBytes)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", c.MaxImagePixels)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.AnalyzerWorkers < 0 {
		return fmt.Errorf("ANALYZER_WORKERS must be >= 0 (got %d)", c.AnalyzerWorkers)
	}
	if c.ImagePathRoot != "" {
		info, err := os.Stat(c.ImagePathRoot)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("IMAGE_PATH_ROOT must be an existing directory (got %q)", c.ImagePathRoot)
		}
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Host, fc.Host)
	setString(&c.Port, fc.Port)
	setString(&c.StagingDir, fc.StagingDir)
	setString(&c.ImagePathRoot, fc.ImagePathRoot)
	setString(&c.AzureStorageAccount, fc.AzureStorageAccount)
	setString(&c.AzureStorageKey, fc.AzureStorageKey)

	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"request_timeout", fc.RequestTimeout, &c.RequestTimeout},
		{"image_fetch_timeout", fc.ImageFetchTimeout, &c.ImageFetchTimeout},
		{"analysis_timeout", fc.AnalysisTimeout, &c.AnalysisTimeout},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.name, path, err)
		}
		*d.dst = parsed
	}

	if fc.MaxRequestBodySize != nil {
		c.MaxRequestBodySize = *fc.MaxRequestBodySize
	}
	if fc.MaxImageBytes != nil {
		c.MaxImageBytes = *fc.MaxImageBytes
	}
	if fc.MaxImagePixels != nil {
		c.MaxImagePixels = *fc.MaxImagePixels
	}
	if fc.RemoteSources != nil {
		c.RemoteSources = *fc.RemoteSources
	}
	if fc.AllowPrivateHosts != nil {
		c.AllowPrivateHosts = *fc.AllowPrivateHosts
	}
	if len(fc.AllowedImageHosts) > 0 {
		c.AllowedImageHosts = fc.AllowedImageHosts
	}
	if fc.ParallelAnalyzers != nil {
		c.ParallelAnalyzers = *fc.ParallelAnalyzers
	}
	if fc.AnalyzerWorkers != nil {
		c.AnalyzerWorkers = *fc.AnalyzerWorkers
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.ImageFetchTimeout = parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", c.ImageFetchTimeout)
	c.AnalysisTimeout = parseDurationOrDefault("ANALYSIS_TIMEOUT", c.AnalysisTimeout)
	c.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", c.MaxRequestBodySize)
	c.MaxImageBytes = parseIntOrDefault("MAX_IMAGE_BYTES", c.MaxImageBytes)
	c.MaxImagePixels = parseIntOrDefault("MAX_IMAGE_PIXELS", c.MaxImagePixels)
	c.ParallelAnalyzers = parseBoolOrDefault("PARALLEL_ANALYZERS", c.ParallelAnalyzers)
	c.AnalyzerWorkers = int(parseIntOrDefault("ANALYZER_WORKERS", int64(c.AnalyzerWorkers)))
	c.StagingDir = getEnvOrDefault("STAGING_DIR", c.StagingDir)
	c.RemoteSources = parseBoolOrDefault("REMOTE_SOURCES", c.RemoteSources)
	c.AllowPrivateHosts = parseBoolOrDefault("ALLOW_PRIVATE_HOSTS", c.AllowPrivateHosts)
	c.ImagePathRoot = getEnvOrDefault("IMAGE_PATH_ROOT", c.ImagePathRoot)
	c.AllowedImageHosts = parseListOrDefault("ALLOWED_IMAGE_HOSTS", c.AllowedImageHosts)
	c.AzureStorageAccount = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", c.AzureStorageAccount)
	c.AzureStorageKey = getEnvOrDefault("AZURE_STORAGE_KEY", c.AzureStorageKey)
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
