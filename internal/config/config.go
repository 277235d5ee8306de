// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`

	DB DatabaseConfig `yaml:"database"`

	JWTSecret              string `yaml:"jwt_secret"`
	AccessTokenTTLMinutes  int    `yaml:"access_token_ttl_minutes"`
	RefreshTokenTTLMinutes int    `yaml:"refresh_token_ttl_minutes"`

	CORSOrigins []string `yaml:"cors_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	DSN      string `yaml:"dsn"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Port:    "8080",
		GinMode: "debug",
		DB: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "smartpos",
			SSLMode:  "disable",
		},
		AccessTokenTTLMinutes:  60,
		RefreshTokenTTLMinutes: 60 * 24 * 7,
		CORSOrigins:            []string{"http://localhost:5173"},
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load builds the configuration. A missing .env or YAML file is not an error;
// a YAML file that exists but cannot be parsed is.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return cfg, err
		}
	}

	for _, f := range []string{".env", "configs/.env"} {
		_ = godotenv.Load(f)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return cfg, fmt.Errorf("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, v)
		}
		*dst = n
		return nil
	}

	str("PORT", &c.Port)
	str("GIN_MODE", &c.GinMode)
	str("DB_DRIVER", &c.DB.Driver)
	str("DB_HOST", &c.DB.Host)
	str("DB_PORT", &c.DB.Port)
	str("DB_USER", &c.DB.User)
	str("DB_PASSWORD", &c.DB.Password)
	str("DB_NAME", &c.DB.Name)
	str("DB_SSLMODE", &c.DB.SSLMode)
	str("DB_DSN", &c.DB.DSN)
	str("JWT_SECRET", &c.JWTSecret)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}
	if err := num("ACCESS_TOKEN_TTL_MINUTES", &c.AccessTokenTTLMinutes); err != nil {
		return err
	}
	return num("REFRESH_TOKEN_TTL_MINUTES", &c.RefreshTokenTTLMinutes)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLMinutes) * time.Minute
}

// Release reports whether the server runs in gin release mode.
func (c Config) Release() bool { return c.GinMode == "release" }

// DatabaseDSN returns DB.DSN when set, otherwise builds one for the driver.
func (c Config) DatabaseDSN() string {
	db := c.DB
	if db.DSN != "" {
		return db.DSN
	}
	switch db.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			db.User, db.Password, db.Host, db.Port, db.Name)
	case "sqlite":
		return db.Name + ".db"
	default:
		return "postgres://" + db.User + ":" + db.Password + "@" + db.Host + ":" + db.Port + "/" + db.Name + "?sslmode=" + db.SSLMode
	}
}
