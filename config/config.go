package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultUploadPath    = "/upload/image"
	DefaultUploadTimeout = 60 * time.Second
	DefaultFetchTimeout  = 120 * time.Second
)

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("abspath", ValidateAbsPath)
	validate.RegisterValidation("localpath", ValidateLocalpath)
	validate.RegisterValidation("identifier", ValidateIdentifier)
	validate.RegisterValidation("pathpattern", ValidatePathPattern)

	if err := validate.Struct(c); err != nil {
		return err
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.limits.max_payload_size", 512<<20)
	v.SetDefault("processing.host", "127.0.0.1:8188")
	v.SetDefault("processing.upload_path", DefaultUploadPath)
	v.SetDefault("processing.upload_timeout", DefaultUploadTimeout)
	v.SetDefault("processing.fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("processing.concurrency", 1)
	v.SetDefault("sink.strategy", "http")
	v.SetDefault("journal.strategy", "noop")
}

// LoadConfig reads the YAML file at path, applies INGEST_* environment overrides
// (INGEST_PROCESSING_HOST overrides processing.host) and validates the result.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ingest")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %q: %w", file, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// ProcessingURL is the absolute upload endpoint on the processing server.
func (p *Processing) ProcessingURL() string {
	return "http://" + p.Host + p.UploadPath
}
