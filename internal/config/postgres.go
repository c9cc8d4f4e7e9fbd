package config

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

// PostgresConfig configures session records. Recording is off unless a host
// is set.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST"`
	Port     string `env:"POSTGRES_PORT, default=5432"`
	Username string `env:"POSTGRES_USERNAME"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DATABASE, default=opusbridge"`
	SSLMode  string `env:"POSTGRES_SSLMODE, default=disable"`
}

func NewPostgresConfigFromEnv() (*PostgresConfig, error) {
	return NewPostgresConfig(context.Background(), envconfig.OsLookuper())
}

func NewPostgresConfig(ctx context.Context, lookuper envconfig.Lookuper) (*PostgresConfig, error) {
	cfg, err := process[PostgresConfig](ctx, lookuper)
	if err != nil {
		return nil, err
	}
	if cfg.Enabled() && cfg.Username == "" {
		return nil, fmt.Errorf("POSTGRES_USERNAME is required when POSTGRES_HOST is set")
	}
	return cfg, nil
}

func (c *PostgresConfig) Enabled() bool {
	return c.Host != ""
}

// DSN is the connection URL for pgx. Credentials are escaped.
func (c *PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}
