package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains all server configuration parameters.
type Config struct {
	App      App      `envPrefix:"APP_"`
	Postgres Postgres `envPrefix:"DB_"`
	Session  Session  `envPrefix:"SESSION_"`
	CORS     CORS     `envPrefix:"CORS_"`
}

// App contains HTTP server parameters.
type App struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"production"`
}

// Postgres contains database connection parameters.
type Postgres struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD"`
	DBName          string        `env:"NAME" envDefault:"invoicehub"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
}

// Session contains session token parameters. MaxAge is the absolute token
// lifetime, RefreshAfter the sliding rotation interval.
type Session struct {
	Secret       string        `env:"SECRET" envDefault:"devsecret"`
	MaxAge       time.Duration `env:"MAX_AGE" envDefault:"720h"`
	RefreshAfter time.Duration `env:"REFRESH_AFTER" envDefault:"24h"`
}

// CORS contains the frontend address the cross-origin policy is derived from.
type CORS struct {
	FrontendHost string `env:"FRONTEND_HOST" envDefault:"localhost"`
	FrontendPort string `env:"FRONTEND_PORT" envDefault:"3000"`
}

// URL returns a postgres connection URL for the pool and the migrator.
func (p Postgres) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// AllowedOrigins returns both the host:port origin and the default-port
// variant, so clients behind a reverse proxy that strips the port still pass.
func (c CORS) AllowedOrigins() []string {
	return []string{
		fmt.Sprintf("http://%s:%s", c.FrontendHost, c.FrontendPort),
		fmt.Sprintf("http://%s", c.FrontendHost),
	}
}

// IsProduction reports whether same-user enforcement must stay on.
func (a App) IsProduction() bool {
	return a.Environment == "production"
}

// NewConfig loads configuration from an optional .env file and the
// environment.
func NewConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
