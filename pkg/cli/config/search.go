package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/service/search"
	"github.com/urfave/cli/v3"
)

// Search holds CLI flags for the Custom Search client
type Search struct {
	apiKey   string
	engineID string
}

// Flags returns CLI flags for search configuration
func (s *Search) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "search-api-key",
			Usage:       "Google Custom Search API key",
			Sources:     cli.EnvVars("DECKMEMO_SEARCH_API_KEY"),
			Destination: &s.apiKey,
		},
		&cli.StringFlag{
			Name:        "search-engine-id",
			Usage:       "Google Custom Search engine ID (cx)",
			Sources:     cli.EnvVars("DECKMEMO_SEARCH_ENGINE_ID"),
			Destination: &s.engineID,
		},
	}
}

func (s *Search) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("api_key_set", s.apiKey != ""),
		slog.String("engine_id", s.engineID),
	}
}

// IsConfigured reports whether both the key and the engine ID are set
func (s *Search) IsConfigured() bool {
	return s.apiKey != "" && s.engineID != ""
}

// Configure creates the search client. Returns nil when search is not configured
// (snippet validation will be unavailable).
func (s *Search) Configure(ctx context.Context) (*search.Client, error) {
	if s.apiKey == "" && s.engineID == "" {
		return nil, nil
	}
	if !s.IsConfigured() {
		return nil, goerr.Wrap(ErrInvalidConfig, "both search-api-key and search-engine-id are required")
	}

	client, err := search.New(ctx, s.apiKey, s.engineID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create search client")
	}
	return client, nil
}
