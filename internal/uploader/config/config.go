package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	BackendDisk   = "disk"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config holds image upload server configuration
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Upload  UploadConfig  `json:"upload" yaml:"upload"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Clock   ClockConfig   `json:"clock" yaml:"clock"`
	Logger  logger.Config `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr           string `json:"addr" yaml:"addr"`
	BodyLimitSlack int64  `json:"body_limit_slack" yaml:"body_limit_slack"` // multipart framing above max_file_size
}

type UploadConfig struct {
	Dir                 string   `json:"dir" yaml:"dir"`
	FieldName           string   `json:"field_name" yaml:"field_name"`
	MaxFileSize         int64    `json:"max_file_size" yaml:"max_file_size"`
	AllowedMimePrefixes []string `json:"allowed_mime_prefixes" yaml:"allowed_mime_prefixes"`
	DetailedErrors      bool     `json:"detailed_errors" yaml:"detailed_errors"`
}

type StorageConfig struct {
	Backend string        `json:"backend" yaml:"backend"` // "disk", "memory", "s3"
	S3      S3Config      `json:"s3" yaml:"s3"`
	Breaker BreakerConfig `json:"breaker" yaml:"breaker"`
}

type S3Config struct {
	Bucket          string `json:"bucket" yaml:"bucket"`
	Prefix          string `json:"prefix" yaml:"prefix"`
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	UsePathStyle    bool   `json:"use_path_style" yaml:"use_path_style"`
}

type BreakerConfig struct {
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold"`
	OpenTimeoutMS    int `json:"open_timeout_ms" yaml:"open_timeout_ms"`
}

type ClockConfig struct {
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"` // empty uses the local clock
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":5000",
			BodyLimitSlack: 1024 * 1024,
		},
		Upload: UploadConfig{
			Dir:                 "uploads",
			FieldName:           "avatar",
			MaxFileSize:         5 * 1024 * 1024, // 5MB
			AllowedMimePrefixes: []string{"image/"},
		},
		Storage: StorageConfig{
			Backend: BackendDisk,
			S3: S3Config{
				Prefix: "uploads/",
				Region: "us-east-1",
			},
			Breaker: BreakerConfig{
				FailureThreshold: 3,
				OpenTimeoutMS:    10000,
			},
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "uploader", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		// The logger is configured from this file, so it cannot be used yet.
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// BodyLimit is the transport-level request cap handed to the HTTP server.
func (c *Config) BodyLimit() int {
	return int(c.Upload.MaxFileSize + c.Server.BodyLimitSlack)
}
