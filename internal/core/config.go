package core

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jo-hoe/imagelabels/internal/common"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort             = 4000
	defaultDatabaseType     = "sqlite"
	defaultConnectionString = "./image-analysis.db"
	defaultUploadDirectory  = "uploads"
	defaultUploadURLPrefix  = "/uploads"
	defaultMaxBodySize      = "10M"
	defaultCORSOrigin       = "http://localhost:4001"
	defaultDetector         = "GoogleVision"
	defaultDetectionTimeout = 30 * time.Second
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
)

// DetectionConfig selects the detector and carries its params, the same way
// a named command is configured.
type DetectionConfig struct {
	Name    string         `yaml:"name" validate:"required"`
	Timeout time.Duration  `yaml:"timeout" validate:"gte=0"`
	Params  map[string]any `yaml:",inline"`
}

type Database struct {
	Type             string `yaml:"type" validate:"required,oneof=sqlite redis"`
	ConnectionString string `yaml:"connectionString" validate:"required"`
}

type Uploads struct {
	Directory   string `yaml:"directory" validate:"required"`
	URLPrefix   string `yaml:"urlPrefix" validate:"required,startswith=/"`
	MaxBodySize string `yaml:"maxBodySize" validate:"required"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type ServiceConfig struct {
	Port      int             `yaml:"port" validate:"gt=0,lte=65535"`
	Database  Database        `yaml:"database"`
	Uploads   Uploads         `yaml:"uploads"`
	CORS      CORS            `yaml:"cors"`
	Detection DetectionConfig `yaml:"detection"`
	Logging   Logging         `yaml:"logging"`
}

// DefaultConfig returns the configuration used for every value the YAML file
// leaves out.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: defaultPort,
		Database: Database{
			Type:             defaultDatabaseType,
			ConnectionString: defaultConnectionString,
		},
		Uploads: Uploads{
			Directory:   defaultUploadDirectory,
			URLPrefix:   defaultUploadURLPrefix,
			MaxBodySize: defaultMaxBodySize,
		},
		CORS: CORS{AllowOrigins: []string{defaultCORSOrigin}},
		Detection: DetectionConfig{
			Name:    defaultDetector,
			Timeout: defaultDetectionTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file, applies
// environment overrides and validates the result.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig decodes YAML on top of the defaults.
func ParseConfig(data []byte) (*ServiceConfig, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if config.Detection.Params == nil {
		config.Detection.Params = map[string]any{}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := common.ValidateStruct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyEnvOverrides(config *ServiceConfig) error {
	if port := os.Getenv("PORT"); port != "" {
		value, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Port = value
	}
	config.Database.Type = getEnv("DATABASE_TYPE", config.Database.Type)
	config.Database.ConnectionString = getEnv("DATABASE_CONNECTION_STRING", config.Database.ConnectionString)
	config.Uploads.Directory = getEnv("UPLOAD_DIR", config.Uploads.Directory)
	config.Detection.Name = getEnv("DETECTOR", config.Detection.Name)
	config.Logging.Level = getEnv("LOG_LEVEL", config.Logging.Level)
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
