package credential

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

// CloudPlatformScope is requested for Application Default Credentials
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

const (
	// accessTokenLifetime is the lifetime of Google access tokens
	accessTokenLifetime = time.Hour
	refreshMargin       = 5 * time.Minute
)

// SourceFunc builds a token source with an empty cache
type SourceFunc func(ctx context.Context) (oauth2.TokenSource, error)

// Provider caches an OAuth2 access token and refreshes it on demand.
// It satisfies oauth2.TokenSource so it can back any Google client.
type Provider struct {
	renew SourceFunc
	group singleflight.Group

	mu     sync.RWMutex
	source oauth2.TokenSource
	token  *oauth2.Token
}

var _ oauth2.TokenSource = &Provider{}

// NewProvider wraps source with a cache
func NewProvider(source oauth2.TokenSource) *Provider {
	return &Provider{source: source}
}

// NewRenewable builds a provider whose Refresh replaces the token source with a new one from renew.
// Sources that cache internally would otherwise hand back the same token until it expires.
func NewRenewable(ctx context.Context, renew SourceFunc) (*Provider, error) {
	source, err := renew(ctx)
	if err != nil {
		return nil, err
	}
	return &Provider{source: source, renew: renew}, nil
}

// NewDefault builds a provider from Application Default Credentials. refreshInterval is the
// period of the background refresh and sets how early a cached token counts as expired.
func NewDefault(ctx context.Context, refreshInterval time.Duration) (*Provider, error) {
	params := google.CredentialsParams{
		Scopes:            []string{CloudPlatformScope},
		EarlyTokenRefresh: EarlyRefreshWindow(refreshInterval),
	}

	return NewRenewable(ctx, func(ctx context.Context) (oauth2.TokenSource, error) {
		// The source keeps ctx for its token requests, so it must outlive the caller
		creds, err := google.FindDefaultCredentialsWithParams(context.WithoutCancel(ctx), params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to find default credentials")
		}
		return creds.TokenSource, nil
	})
}

// EarlyRefreshWindow returns how long before expiry a token must be replaced so that a refresh
// every interval always lands on a token that is still valid for the next period
func EarlyRefreshWindow(interval time.Duration) time.Duration {
	if interval <= 0 {
		return refreshMargin
	}
	window := accessTokenLifetime - interval + refreshMargin
	switch {
	case window < refreshMargin:
		return refreshMargin
	case window > accessTokenLifetime-refreshMargin:
		return accessTokenLifetime - refreshMargin
	}
	return window
}

// NewStatic builds a provider around a fixed bearer token. It never expires locally.
func NewStatic(accessToken string) (*Provider, error) {
	if accessToken == "" {
		return nil, goerr.New("access token is required")
	}
	return NewProvider(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})), nil
}

// Token returns the cached token while it is valid and refreshes it otherwise
func (p *Provider) Token() (*oauth2.Token, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token.Valid() {
		return token, nil
	}

	return p.fetch()
}

// Refresh fetches a new token and replaces the cache. A renewable provider first rebuilds its
// source. On failure the cached token and source are kept. Concurrent callers share a single fetch.
func (p *Provider) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "refresh cancelled")
	}
	if p.renew == nil {
		_, err := p.fetch()
		return err
	}

	_, err, _ := p.group.Do("renew", func() (any, error) {
		source, err := p.renew(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to renew token source")
		}
		token, err := source.Token()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch access token")
		}

		p.mu.Lock()
		p.source = source
		p.token = token
		p.mu.Unlock()

		return token, nil
	})
	return err
}

// Expiry reports the expiry of the cached token. Zero means none cached or no expiry.
func (p *Provider) Expiry() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.token == nil {
		return time.Time{}
	}
	return p.token.Expiry
}

// HTTPClient returns a client that authorizes requests with this provider
func (p *Provider) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, p)
}

func (p *Provider) fetch() (*oauth2.Token, error) {
	v, err, _ := p.group.Do("token", func() (any, error) {
		p.mu.RLock()
		source := p.source
		p.mu.RUnlock()

		token, err := source.Token()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch access token")
		}

		p.mu.Lock()
		p.token = token
		p.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*oauth2.Token), nil
}
