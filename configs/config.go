// Package configs loads the application configuration from the environment.
package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DevelopmentSecret is used to sign session tokens when JWT_SECRET is unset.
// Anyone who knows it can mint admin tokens, so it is refused in production.
const DevelopmentSecret = "default-secret-change-me"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DatabaseConfig holds connection settings for the selected driver.
type DatabaseConfig struct {
	Driver      string // postgres, mysql or sqlite
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	Path        string // sqlite only
	AutoMigrate bool
}

// Config is built once at startup and passed by value afterwards.
type Config struct {
	Env      string
	Host     string
	Port     int
	LogLevel string

	Secret           []byte
	UsingFallbackKey bool
	AdminUsername    string
	AdminPassword    string
	UploadDir        string
	UploadURLPrefix  string
	Database         DatabaseConfig
}

// IsProduction reports whether cookies must carry the Secure attribute.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("configs: read %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Env:             strings.ToLower(get("APP_ENV", EnvDevelopment)),
		Host:            get("APP_HOST", "0.0.0.0"),
		LogLevel:        get("LOG_LEVEL", "info"),
		AdminUsername:   get("ADMIN_USERNAME", "admin"),
		AdminPassword:   get("ADMIN_PASSWORD", "admin123"),
		UploadDir:       get("UPLOAD_DIR", "./public/images/uploads"),
		UploadURLPrefix: strings.TrimRight(get("UPLOAD_URL_PREFIX", "/images/uploads"), "/"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(get("DB_DRIVER", "postgres")),
			Host:     get("DB_HOST", "localhost"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "aigc_wiki"),
			SSLMode:  get("DB_SSLMODE", "disable"),
			Path:     get("DB_PATH", "./aigc_wiki.db"),
		},
	}

	var err error
	if cfg.Port, err = atoi(get("APP_PORT", "3000"), "APP_PORT"); err != nil {
		return Config{}, err
	}
	if cfg.Database.Port, err = atoi(get("DB_PORT", defaultDBPort(cfg.Database.Driver)), "DB_PORT"); err != nil {
		return Config{}, err
	}
	if cfg.Database.AutoMigrate, err = strconv.ParseBool(get("DB_AUTO_MIGRATE", "true")); err != nil {
		return Config{}, fmt.Errorf("configs: invalid DB_AUTO_MIGRATE: %w", err)
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return Config{}, fmt.Errorf("configs: unknown APP_ENV %q", cfg.Env)
	}
	switch cfg.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return Config{}, fmt.Errorf("configs: unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	secret := get("JWT_SECRET", "")
	if secret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("configs: JWT_SECRET is required in production")
		}
		secret = DevelopmentSecret
		cfg.UsingFallbackKey = true
	}
	cfg.Secret = []byte(secret)

	return cfg, nil
}

func atoi(v, key string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("configs: invalid %s: %q", key, v)
	}
	return n, nil
}

func defaultDBPort(driver string) string {
	if driver == "mysql" {
		return "3306"
	}
	return "5432"
}
