package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env              string        `envconfig:"env" default:"development"`
	DBDriver         string        `envconfig:"db_driver" default:"sqlite"`
	DatabaseURL      string        `envconfig:"database_url"`
	PostgresHost     string        `envconfig:"postgres_host" default:"localhost"`
	PostgresUser     string        `envconfig:"postgres_user"`
	PostgresPassword string        `envconfig:"postgres_password"`
	PostgresDB       string        `envconfig:"postgres_db"`
	PostgresPort     int           `envconfig:"postgres_port" default:"5432"`
	SQLitePath       string        `envconfig:"sqlite_path" default:"socialgram.db"`
	SQLMigrations    bool          `envconfig:"sql_migrations"`
	RedisURL         string        `envconfig:"redis_url"`
	SnapshotTTL      time.Duration `envconfig:"snapshot_ttl" default:"5m"`
	AWSRegion        string        `envconfig:"aws_region" default:"us-east-2"`
	PresignExpiry    time.Duration `envconfig:"presign_expiry" default:"15m"`
	MetricsTextfile  string        `envconfig:"metrics_textfile"`
}

// Load reads .env outside production, then the SOCIALGRAM_* environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	if err := envconfig.Process("socialgram", c); err != nil {
		return nil, err
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		c.Env = env
	}

	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	return c, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// PostgresDSN prefers DATABASE_URL and forces TLS for it in production.
func (c *Config) PostgresDSN() string {
	if dsn := strings.TrimSpace(c.DatabaseURL); dsn != "" {
		if c.IsProduction() && !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}
		return dsn
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort,
	)
}
