package credential_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/deckmemo/pkg/service/credential"
	"golang.org/x/oauth2"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	ttl   time.Duration
	delay time.Duration
	err   error
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	time.Sleep(s.delay)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &oauth2.Token{
		AccessToken: fmt.Sprintf("token-%d", s.calls),
		Expiry:      time.Now().Add(s.ttl),
	}, nil
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestProvider_ReusesValidToken(t *testing.T) {
	src := &countingSource{ttl: time.Hour}
	p := credential.NewProvider(src)

	first, err := p.Token()
	gt.NoError(t, err).Required()
	second, err := p.Token()
	gt.NoError(t, err).Required()

	gt.Value(t, first.AccessToken).Equal("token-1")
	gt.Value(t, second.AccessToken).Equal("token-1")
	gt.Value(t, src.count()).Equal(1)
}

func TestProvider_RefreshesExpiredToken(t *testing.T) {
	// Tokens inside the oauth2 expiry delta are treated as expired
	src := &countingSource{ttl: time.Second}
	p := credential.NewProvider(src)

	_, err := p.Token()
	gt.NoError(t, err).Required()
	token, err := p.Token()
	gt.NoError(t, err).Required()

	gt.Value(t, token.AccessToken).Equal("token-2")
	gt.Value(t, src.count()).Equal(2)
}

func TestProvider_ConcurrentRefreshIsCollapsed(t *testing.T) {
	src := &countingSource{ttl: time.Hour, delay: 50 * time.Millisecond}
	p := credential.NewProvider(src)

	var wg sync.WaitGroup
	tokens := make([]string, 20)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := p.Token()
			if err == nil {
				tokens[i] = token.AccessToken
			}
		}(i)
	}
	wg.Wait()

	gt.Value(t, src.count()).Equal(1)
	for _, token := range tokens {
		gt.Value(t, token).Equal("token-1")
	}
}

func TestProvider_Refresh(t *testing.T) {
	src := &countingSource{ttl: time.Hour}
	p := credential.NewProvider(src)
	ctx := context.Background()

	gt.NoError(t, p.Refresh(ctx))
	gt.NoError(t, p.Refresh(ctx))
	gt.Value(t, src.count()).Equal(2)
	gt.Bool(t, p.Expiry().After(time.Now().Add(59*time.Minute))).True()

	token, err := p.Token()
	gt.NoError(t, err).Required()
	gt.Value(t, token.AccessToken).Equal("token-2")
	gt.Value(t, src.count()).Equal(2)
}

func TestProvider_RefreshFailureKeepsCachedToken(t *testing.T) {
	src := &countingSource{ttl: time.Hour}
	p := credential.NewProvider(src)

	gt.NoError(t, p.Refresh(context.Background()))

	src.mu.Lock()
	src.err = errors.New("metadata server unavailable")
	src.mu.Unlock()

	gt.Error(t, p.Refresh(context.Background()))

	token, err := p.Token()
	gt.NoError(t, err).Required()
	gt.Value(t, token.AccessToken).Equal("token-1")
}

func TestProvider_RefreshCancelled(t *testing.T) {
	src := &countingSource{ttl: time.Hour}
	p := credential.NewProvider(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gt.Error(t, p.Refresh(ctx))
	gt.Value(t, src.count()).Equal(0)
}

func TestNewStatic(t *testing.T) {
	_, err := credential.NewStatic("")
	gt.Error(t, err)

	p, err := credential.NewStatic("static-token")
	gt.NoError(t, err).Required()

	token, err := p.Token()
	gt.NoError(t, err).Required()
	gt.Value(t, token.AccessToken).Equal("static-token")
}

func TestProvider_HTTPClient(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	p, err := credential.NewStatic("static-token")
	gt.NoError(t, err).Required()

	resp, err := p.HTTPClient(context.Background()).Get(srv.URL)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()

	gt.Value(t, auth).Equal("Bearer static-token")
}

func TestProvider_RenewableRefreshBypassesCachingSource(t *testing.T) {
	// Each renewal yields a fresh caching source, like a new ADC lookup does
	src := &countingSource{ttl: time.Hour}
	var renewals int
	p, err := credential.NewRenewable(context.Background(), func(ctx context.Context) (oauth2.TokenSource, error) {
		renewals++
		return oauth2.ReuseTokenSource(nil, src), nil
	})
	gt.NoError(t, err).Required()

	ctx := context.Background()
	for range 3 {
		gt.NoError(t, p.Refresh(ctx))
	}

	gt.Value(t, renewals).Equal(4)
	gt.Value(t, src.count()).Equal(3)

	token, err := p.Token()
	gt.NoError(t, err).Required()
	gt.Value(t, token.AccessToken).Equal("token-3")
	gt.Value(t, src.count()).Equal(3)
}

func TestProvider_RenewFailureKeepsCachedToken(t *testing.T) {
	src := &countingSource{ttl: time.Hour}
	fail := false
	p, err := credential.NewRenewable(context.Background(), func(ctx context.Context) (oauth2.TokenSource, error) {
		if fail {
			return nil, errors.New("credentials file removed")
		}
		return oauth2.ReuseTokenSource(nil, src), nil
	})
	gt.NoError(t, err).Required()
	gt.NoError(t, p.Refresh(context.Background()))

	fail = true
	gt.Error(t, p.Refresh(context.Background()))

	token, err := p.Token()
	gt.NoError(t, err).Required()
	gt.Value(t, token.AccessToken).Equal("token-1")
}

func TestNewRenewable_SourceError(t *testing.T) {
	_, err := credential.NewRenewable(context.Background(), func(ctx context.Context) (oauth2.TokenSource, error) {
		return nil, errors.New("no credentials")
	})
	gt.Error(t, err)
}

func TestProvider_EarlyRefreshWindowRenewsCachedToken(t *testing.T) {
	// A token with 15 minutes left is what the 45 minute tick sees on a metadata server source
	src := &countingSource{ttl: 15 * time.Minute}
	p := credential.NewProvider(oauth2.ReuseTokenSourceWithExpiry(nil, src, credential.EarlyRefreshWindow(45*time.Minute)))
	ctx := context.Background()

	for range 3 {
		gt.NoError(t, p.Refresh(ctx))
	}
	gt.Value(t, src.count()).Equal(3)
}

func TestEarlyRefreshWindow(t *testing.T) {
	gt.Value(t, credential.EarlyRefreshWindow(45*time.Minute)).Equal(20 * time.Minute)
	gt.Value(t, credential.EarlyRefreshWindow(30*time.Minute)).Equal(35 * time.Minute)
	gt.Value(t, credential.EarlyRefreshWindow(2*time.Hour)).Equal(5 * time.Minute)
	gt.Value(t, credential.EarlyRefreshWindow(time.Minute)).Equal(55 * time.Minute)
	gt.Value(t, credential.EarlyRefreshWindow(0)).Equal(5 * time.Minute)
}
