package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/service/credential"
	"github.com/secmon-lab/deckmemo/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

// Credential holds CLI flags for the outbound Google credential
type Credential struct {
	accessToken     string
	refreshInterval time.Duration
}

// Flags returns CLI flags for credential configuration
func (c *Credential) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "access-token",
			Usage:       "Static bearer token for Google APIs (Application Default Credentials when empty)",
			Sources:     cli.EnvVars("DECKMEMO_ACCESS_TOKEN"),
			Destination: &c.accessToken,
		},
		&cli.DurationFlag{
			Name:        "token-refresh-interval",
			Usage:       "Interval of the background access token refresh",
			Value:       worker.DefaultTokenRefreshInterval,
			Sources:     cli.EnvVars("DECKMEMO_TOKEN_REFRESH_INTERVAL"),
			Destination: &c.refreshInterval,
		},
	}
}

func (c *Credential) LogAttrs() []slog.Attr {
	source := "adc"
	if c.accessToken != "" {
		source = "static"
	}
	return []slog.Attr{
		slog.String("source", source),
		slog.Duration("refresh_interval", c.refreshInterval),
	}
}

// IsStatic reports whether a fixed access token is configured
func (c *Credential) IsStatic() bool {
	return c.accessToken != ""
}

// RefreshInterval returns the configured refresh interval
func (c *Credential) RefreshInterval() time.Duration {
	return c.refreshInterval
}

// Configure builds the token provider from the static token or Application Default Credentials
func (c *Credential) Configure(ctx context.Context) (*credential.Provider, error) {
	if c.refreshInterval < 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "token-refresh-interval must not be negative",
			goerr.V("interval", c.refreshInterval))
	}

	if c.accessToken != "" {
		return credential.NewStatic(c.accessToken)
	}

	provider, err := credential.NewDefault(ctx, c.refreshInterval)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Google credentials")
	}
	return provider, nil
}
