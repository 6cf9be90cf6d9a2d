package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	RemoteDriverPostgres = "postgres"
	RemoteDriverMemory   = "memory"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	PublicURL      string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type MaintenanceConfig struct {
	Timezone       string
	Location       *time.Location
	MaxUploadBytes int64
}

type Config struct {
	Environment  string
	RemoteDriver string
	HTTP         HTTPConfig
	DB           DBConfig
	Auth         AuthConfig
	S3           S3Config
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment:  v.GetString("APP_ENV"),
		RemoteDriver: strings.ToLower(strings.TrimSpace(v.GetString("REMOTE_DRIVER"))),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
			PublicURL:      strings.TrimRight(v.GetString("HTTP_PUBLIC_URL"), "/"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		S3: S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			Bucket:    v.GetString("S3_BUCKET"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
		},
		Maintenance: MaintenanceConfig{
			Timezone:       v.GetString("APP_TIMEZONE"),
			MaxUploadBytes: v.GetInt64("BUDGET_MAX_UPLOAD_MB") << 20,
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.RemoteDriver == "" {
		cfg.RemoteDriver = RemoteDriverPostgres
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.HTTP.PublicURL == "" {
		cfg.HTTP.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.S3.Bucket == "" {
		cfg.S3.Bucket = "budget-documents"
	}
	if cfg.Maintenance.Timezone == "" {
		cfg.Maintenance.Timezone = "America/Sao_Paulo"
	}
	if cfg.Maintenance.MaxUploadBytes <= 0 {
		cfg.Maintenance.MaxUploadBytes = 20 << 20
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Maintenance.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Maintenance.Location = loc
	return cfg, nil
}

func (c *Config) BlobsInMemory() bool {
	return c.S3.Endpoint == "" && c.S3.AccessKey == ""
}

func validate(cfg *Config) error {
	switch cfg.RemoteDriver {
	case RemoteDriverPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required")
		}
	case RemoteDriverMemory:
	default:
		return fmt.Errorf("REMOTE_DRIVER must be %q or %q", RemoteDriverPostgres, RemoteDriverMemory)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
