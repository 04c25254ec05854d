package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	LLM        LLMConfig        `yaml:"llm"`
	Processing ProcessingConfig `yaml:"processing"`
	Results    ResultsConfig    `yaml:"results"`
	Log        LogConfig        `yaml:"log"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address" env:"HTTP_ADDRESS"`
	ReadTimeout    time.Duration   `yaml:"readTimeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout" env:"HTTP_WRITE_TIMEOUT"`
	MaxUploadBytes int64           `yaml:"maxUploadBytes" env:"HTTP_MAX_UPLOAD_BYTES"`
	AllowedOrigins []string        `yaml:"allowedOrigins" env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"HTTP_RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requestsPerMinute" env:"HTTP_RATE_LIMIT_RPM"`
	Burst             int  `yaml:"burst" env:"HTTP_RATE_LIMIT_BURST"`
}

// LLMConfig contains Gemini settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey" env:"GOOGLE_API_KEY"`
	Model       string        `yaml:"model" env:"LLM_MODEL"`
	Temperature float32       `yaml:"temperature" env:"LLM_TEMPERATURE"`
	MaxRetries  int           `yaml:"maxRetries" env:"LLM_MAX_RETRIES"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
}

// ProcessingConfig holds the chunking defaults applied when a request omits them.
type ProcessingConfig struct {
	ChunkSize    int `yaml:"chunkSize" env:"PROCESSING_CHUNK_SIZE"`
	ChunkOverlap int `yaml:"chunkOverlap" env:"PROCESSING_CHUNK_OVERLAP"`
}

// ResultsConfig bounds the in-memory result store.
type ResultsConfig struct {
	Capacity int           `yaml:"capacity" env:"RESULTS_CAPACITY"`
	TTL      time.Duration `yaml:"ttl" env:"RESULTS_TTL"`
}

// LogConfig controls log level and the date-stamped log files.
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Dir        string `yaml:"dir" env:"LOG_DIR"`
	FilePrefix string `yaml:"filePrefix" env:"LOG_FILE_PREFIX"`
}

// Load reads configuration from a YAML file, a .env file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(os.Getenv("DOTENV_PATH")); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// loadDotEnv exports variables from path, or ./.env, without overriding the
// process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	cfg.LLM.APIKey = strings.TrimSpace(cfg.LLM.APIKey)
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   15 * time.Minute,
			MaxUploadBytes: 50 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             5,
			},
		},
		LLM: LLMConfig{
			Model:       "gemini-2.0-flash",
			Temperature: 0.2,
			MaxRetries:  3,
			Timeout:     2 * time.Minute,
		},
		Processing: ProcessingConfig{
			ChunkSize:    4000,
			ChunkOverlap: 500,
		},
		Results: ResultsConfig{
			Capacity: 100,
			TTL:      24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Dir:        "logs",
			FilePrefix: "document_summarizer",
		},
	}
}

// CredentialConfigured reports whether the Gemini API key is present.
func (c *Config) CredentialConfigured() bool {
	return c.LLM.APIKey != ""
}

// Validate ensures the configuration is safe to use. The API key is checked
// per run instead so the service can start and report its absence.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http.maxUploadBytes must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be within [0, 2]")
	}
	if c.LLM.MaxRetries < 0 {
		return errors.New("llm.maxRetries cannot be negative")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm.timeout cannot be negative")
	}
	if c.Processing.ChunkSize < 2000 || c.Processing.ChunkSize > 6000 {
		return errors.New("processing.chunkSize must be within [2000, 6000]")
	}
	if c.Processing.ChunkOverlap < 200 || c.Processing.ChunkOverlap > 1000 {
		return errors.New("processing.chunkOverlap must be within [200, 1000]")
	}
	if c.Processing.ChunkOverlap >= c.Processing.ChunkSize {
		return errors.New("processing.chunkOverlap must be smaller than processing.chunkSize")
	}
	if c.Results.Capacity <= 0 {
		return errors.New("results.capacity must be positive")
	}
	if c.Results.TTL < 0 {
		return errors.New("results.ttl cannot be negative")
	}
	if c.Log.FilePrefix == "" {
		return errors.New("log.filePrefix cannot be empty")
	}
	return nil
}
