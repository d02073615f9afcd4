package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "CAREERLENS"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// RequestTimeout bounds every /api request, uploads included.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// UploadConfig bounds what a single upload may cost.
type UploadConfig struct {
	MaxBytes      int64    `yaml:"max_bytes" envconfig:"MAX_BYTES"`
	MaxRows       int      `yaml:"max_rows" envconfig:"MAX_ROWS"`
	MaxConcurrent int      `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT"`
	Extensions    []string `yaml:"extensions" envconfig:"EXTENSIONS"`
}

// AnalysisConfig holds metric defaults applied when a request leaves them unset.
type AnalysisConfig struct {
	DefaultTopN int                `yaml:"default_top_n" envconfig:"DEFAULT_TOP_N"`
	MaxTopN     int                `yaml:"max_top_n" envconfig:"MAX_TOP_N"`
	Widths      map[string]float64 `yaml:"widths" envconfig:"WIDTHS"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration in three layers: Default, then the YAML
// file named by CAREERLENS_CONFIG_FILE (or ./careerlens.yaml when present),
// then any CAREERLENS_* environment variables that are set.
func Load() (*Config, error) {
	return LoadFile(configFilePath())
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document onto cfg; keys it omits keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		return fmt.Errorf("upload max concurrent must be positive")
	}
	if c.Upload.MaxRows < 0 {
		return fmt.Errorf("upload max rows must not be negative")
	}

	if c.Analysis.MaxTopN < 1 {
		return fmt.Errorf("analysis max top-n must be at least 1")
	}
	if c.Analysis.DefaultTopN < 1 || c.Analysis.DefaultTopN > c.Analysis.MaxTopN {
		return fmt.Errorf("analysis default top-n %d outside 1..%d", c.Analysis.DefaultTopN, c.Analysis.MaxTopN)
	}
	for field, w := range c.Analysis.Widths {
		if w <= 0 {
			return fmt.Errorf("histogram width for %q must be positive", field)
		}
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within 0..1")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("unsupported logging output: %s", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// configFilePath returns the path to the config file, or "" when none exists
func configFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Upload: UploadConfig{
			MaxBytes:      DefaultMaxUploadBytes,
			MaxRows:       DefaultMaxRows,
			MaxConcurrent: DefaultMaxConcurrentDecodes,
			Extensions:    []string{".csv", ".xlsx", ".xls"},
		},
		Analysis: AnalysisConfig{
			DefaultTopN: 10,
			MaxTopN:     100,
			Widths: map[string]float64{
				"cgpa":    0.5,
				"marks":   10,
				"cutoff":  10,
				"salary":  5,
				"package": 5,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricsEnabled: true,
			SampleRatio:    1.0,
		},
	}
}
