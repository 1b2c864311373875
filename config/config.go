package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env        string `envconfig:"ENV" default:"production"`
	ServerPort int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	Database   DatabaseConfig
	Auth       AuthConfig
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"carelink"`
	Password string `envconfig:"DB_PASSWORD" default:"password"`
	DBName   string `envconfig:"DB_NAME" default:"carelink_db"`
	UseSSL   bool   `envconfig:"DB_USE_SSL" default:"false"`
}

type AuthConfig struct {
	// Secrets have no defaults; startup fails without them.
	AccessTokenSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshTokenSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTokenTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
}

// LoadConfig reads configuration from the environment. In dev a .env
// file is loaded first.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
