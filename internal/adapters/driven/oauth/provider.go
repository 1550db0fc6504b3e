// Package oauth issues OCAPI access tokens through the OAuth 2.0 client
// credentials grant and caches them sealed in a token store.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

const (
	// DefaultEndpoint is the account manager host.
	DefaultEndpoint = "account.demandware.com"

	// DefaultLeeway is how long a fetched token is reused.
	DefaultLeeway = 25 * time.Minute

	// DefaultTimeout bounds one token request.
	DefaultTimeout = 30 * time.Second

	// DefaultGrantType is sent as grant_type unless overridden.
	DefaultGrantType = "client_credentials"
)

// Config describes one client registered for one instance.
type Config struct {
	ClientID     string
	ClientSecret string
	InstanceID   string

	// Endpoint is the account manager host. Defaults to DefaultEndpoint.
	Endpoint string

	// TokenURL overrides the URL derived from Endpoint. It must be https.
	TokenURL string

	// GrantType replaces grant_type in the token request. Defaults to
	// DefaultGrantType.
	GrantType string

	Rank    int
	Scopes  []string
	Leeway  time.Duration
	Timeout time.Duration
}

// Ensure Provider implements the interface.
var _ driven.AccessTokenProvider = (*Provider)(nil)

// Provider fetches and caches access tokens for one client.
type Provider struct {
	id      string
	rank    int
	leeway  time.Duration
	oauth   clientcredentials.Config
	client  *http.Client
	store   driven.TokenStore
	box     driven.SecretBox
	metrics driven.MetricsSink
	now     func() time.Time

	mu sync.Mutex
}

// New creates a provider. httpClient, box and metrics may be nil; a nil box
// stores tokens in the clear.
func New(cfg Config, store driven.TokenStore, box driven.SecretBox, metrics driven.MetricsSink, httpClient *http.Client) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client id is required", domain.ErrInvalidInput)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: token store is required", domain.ErrInvalidInput)
	}
	tokenURL, err := TokenURL(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = DefaultLeeway
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	var params url.Values
	if cfg.GrantType != "" && cfg.GrantType != DefaultGrantType {
		params = url.Values{"grant_type": {cfg.GrantType}}
	}

	return &Provider{
		id:     domain.TokenProviderID(cfg.ClientID, cfg.InstanceID),
		rank:   cfg.Rank,
		leeway: cfg.Leeway,
		oauth: clientcredentials.Config{
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			TokenURL:       tokenURL,
			Scopes:         cfg.Scopes,
			EndpointParams: params,
			AuthStyle:      oauth2.AuthStyleInHeader,
		},
		client:  httpClient,
		store:   store,
		box:     box,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// TokenURL returns the token endpoint for cfg. Only https is accepted.
func TokenURL(cfg Config) (string, error) {
	raw := cfg.TokenURL
	if raw == "" {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = DefaultEndpoint
		}
		raw = fmt.Sprintf("https://%s/token", endpoint)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: token url %q", domain.ErrInvalidInput, raw)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", domain.ErrInsecureTokenEndpoint, raw)
	}
	return raw, nil
}

// Name returns the registry key, "<clientId>-<instanceId>".
func (p *Provider) Name() string {
	return p.id
}

// Rank returns the provider priority.
func (p *Provider) Rank() int {
	return p.rank
}

// AccessToken returns the cached token for userID while it is within the
// leeway, otherwise fetches, caches and returns a new one.
func (p *Provider) AccessToken(ctx context.Context, userID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := domain.TokenKey{ProviderID: p.id, UserID: userID}
	now := p.now()

	if cached, ok := p.cached(ctx, key); ok && cached.Valid(p.leeway, now) {
		logger.Debug("oauth: using cached token for %s", p.id)
		return cached.Value, nil
	}

	value, err := p.fetch(ctx)
	if p.metrics != nil {
		p.metrics.TokenFetched(err == nil)
	}
	if err != nil {
		return "", err
	}

	token := domain.AccessToken{Value: value, IssuedAt: now}
	if err := p.save(ctx, key, token); err != nil {
		logger.Warn("oauth: could not cache token for %s: %v", p.id, err)
	}
	return value, nil
}

// Invalidate removes the cached token for userID.
func (p *Provider) Invalidate(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Delete(ctx, domain.TokenKey{ProviderID: p.id, UserID: userID})
}

func (p *Provider) fetch(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	tok, err := p.oauth.Token(ctx)
	if err != nil {
		var retrieve *oauth2.RetrieveError
		if errors.As(err, &retrieve) && retrieve.Response != nil {
			return "", fmt.Errorf("%w: %s responded %d", domain.ErrTokenFetchFailed,
				p.oauth.TokenURL, retrieve.Response.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTokenFetchFailed, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrTokenFetchFailed)
	}
	return tok.AccessToken, nil
}

func (p *Provider) cached(ctx context.Context, key domain.TokenKey) (domain.AccessToken, bool) {
	stored, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("oauth: reading token cache: %v", err)
		}
		return domain.AccessToken{}, false
	}
	if p.box != nil {
		if stored, err = p.box.Open(stored); err != nil {
			logger.Warn("oauth: discarding unreadable cached token for %s", p.id)
			return domain.AccessToken{}, false
		}
	}
	token, err := domain.DecodeAccessToken(stored)
	if err != nil {
		return domain.AccessToken{}, false
	}
	return token, true
}

func (p *Provider) save(ctx context.Context, key domain.TokenKey, token domain.AccessToken) error {
	value := token.Encode()
	if p.box != nil {
		sealed, err := p.box.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return p.store.Put(ctx, key, value)
}
