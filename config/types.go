package config

import "time"

type Config struct {
	Debug      bool       `mapstructure:"debug"`
	Log        Log        `mapstructure:"log"`
	Server     Server     `mapstructure:"server"`
	Processing Processing `mapstructure:"processing"`
	Sink       Sink       `mapstructure:"sink"`
	Journal    Journal    `mapstructure:"journal"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"required,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}

type Server struct {
	Address string       `mapstructure:"address" validate:"required,hostname|ip"`
	Port    int          `mapstructure:"port" validate:"min=0,max=65535"`
	Limits  ServerLimits `mapstructure:"limits"`
}

type ServerLimits struct {
	MaxPayloadSize uint `mapstructure:"max_payload_size" validate:"required"`
}

// Processing describes the downstream server that receives uploaded media and
// how the worker reaches remote sources.
type Processing struct {
	Host          string        `mapstructure:"host" validate:"required,hostname_port"`
	UploadPath    string        `mapstructure:"upload_path" validate:"required,startswith=/"`
	UploadTimeout time.Duration `mapstructure:"upload_timeout" validate:"required,gt=0"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout" validate:"required,gt=0"`
	Concurrency   int           `mapstructure:"concurrency" validate:"min=1,max=64"`
}

type Sink struct {
	Strategy   string                  `mapstructure:"strategy" validate:"required,oneof=http s3 filesystem noop"`
	S3         *S3SinkStrategy         `mapstructure:"s3" validate:"required_if=Strategy s3"`
	Filesystem *FilesystemSinkStrategy `mapstructure:"filesystem" validate:"required_if=Strategy filesystem"`
}

type S3SinkStrategy struct {
	AccessKeyId string `mapstructure:"access_key_id" validate:"required"`
	SecretKeyId string `mapstructure:"secret_key_id" validate:"required"`
	Region      string `mapstructure:"region" validate:"required"`
	Bucket      string `mapstructure:"bucket" validate:"required"`
	Endpoint    string `mapstructure:"endpoint" validate:"omitempty,url"`
	Prefix      string `mapstructure:"prefix" validate:"omitempty,localpath"`
	DisableSSL  bool   `mapstructure:"disable_ssl"`
}

type FilesystemSinkStrategy struct {
	Path        string `mapstructure:"path" validate:"required,abspath"`
	PathPattern string `mapstructure:"path_pattern" validate:"omitempty,pathpattern"`
}

type Journal struct {
	Strategy string              `mapstructure:"strategy" validate:"required,oneof=noop sql d1"`
	SQL      *SQLJournalStrategy `mapstructure:"sql" validate:"required_if=Strategy sql"`
	D1       *D1JournalStrategy  `mapstructure:"d1" validate:"required_if=Strategy d1"`
}

type SQLJournalStrategy struct {
	Driver      string  `mapstructure:"driver" validate:"required,oneof=postgres mysql"`
	DSN         string  `mapstructure:"dsn" validate:"required"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}

type D1JournalStrategy struct {
	AccountID   string  `mapstructure:"account_id" validate:"required"`
	DatabaseID  string  `mapstructure:"database_id" validate:"required"`
	APIToken    string  `mapstructure:"api_token" validate:"required"`
	Endpoint    string  `mapstructure:"endpoint" validate:"omitempty,url"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}
