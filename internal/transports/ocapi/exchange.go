// Package ocapi delivers documents through the OCAPI data API.
//
// Every delivery first checks whether the remote object exists with a GET.
// An activation then creates it (POST overridden to PUT) or updates it
// (PATCH guarded by the ETag). Other actions delete the object when it
// exists.
package ocapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Default configuration values.
const (
	DefaultVersion = "v17_6"
	DefaultPath    = "/s/-/dw/data/"

	// MethodOverrideHeader asks the data API to treat a POST as another method.
	MethodOverrideHeader = "x-dw-http-method-override"

	maxLoggedBody = 64 << 10
)

// Instances locates the commerce instance an agent replicates to.
type Instances interface {
	ClientForAgent(agent *domain.AgentConfig) (*driven.InstanceClient, error)
	InstanceIDFromAgent(agent *domain.AgentConfig) string
}

// TokenProviders looks up access token providers by id.
type TokenProviders interface {
	Get(name string) (driven.AccessTokenProvider, bool)
	Snapshot() []driven.AccessTokenProvider
}

// Config holds the data API settings shared by every OCAPI plugin.
type Config struct {
	// Version is the data API version (default: v17_6).
	Version string

	// Path is the data API base path (default: /s/-/dw/data/).
	Path string

	// TokenClientID selects the access token provider "<client>-<instance>".
	TokenClientID string
}

// Engine performs data API exchanges for the OCAPI plugins.
type Engine struct {
	cfg       Config
	instances Instances
	tokens    TokenProviders
	metrics   driven.MetricsSink
}

// NewEngine creates an exchange engine. tokens and metrics may be nil.
func NewEngine(cfg Config, instances Instances, tokens TokenProviders, metrics driven.MetricsSink) *Engine {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if !strings.HasSuffix(cfg.Path, "/") {
		cfg.Path += "/"
	}
	return &Engine{cfg: cfg, instances: instances, tokens: tokens, metrics: metrics}
}

// URL builds the data API location of an expanded endpoint template.
func (e *Engine) URL(client *driven.InstanceClient, endpoint string, query url.Values) string {
	u := client.BaseURL() + e.cfg.Path + e.cfg.Version + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Response is the part of a data API response the plugins act on.
type Response struct {
	StatusCode int
	Header     http.Header
}

// Successful reports whether resp is a 200, 201 or 204.
func Successful(resp *Response) bool {
	if resp == nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return true
	}
	return false
}

// Session is one delivery's connection to an instance.
type Session struct {
	engine  *Engine
	client  *driven.InstanceClient
	http    *http.Client
	headers http.Header
	log     driven.ReplicationLog
}

// Open resolves the agent's instance and prepares the default headers.
func (e *Engine) Open(ctx context.Context, agent *domain.AgentConfig, log driven.ReplicationLog) (*Session, error) {
	if agent == nil {
		return nil, domain.ErrNoAgentConfig
	}
	client, err := e.instances.ClientForAgent(agent)
	if err != nil {
		return nil, fmt.Errorf("resolve instance: %w", err)
	}
	httpClient := client.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Session{
		engine:  e,
		client:  client,
		http:    httpClient,
		headers: e.defaultHeaders(ctx, agent, log),
		log:     log,
	}, nil
}

// Client returns the instance the session talks to.
func (s *Session) Client() *driven.InstanceClient {
	return s.client
}

func (e *Engine) defaultHeaders(ctx context.Context, agent *domain.AgentConfig, log driven.ReplicationLog) http.Header {
	headers := http.Header{}
	for _, h := range agent.ParsedHeaders() {
		log.Debug("adding header: %s:%s", h[0], h[1])
		headers.Add(h[0], h[1])
	}

	if !agent.SecureTransport() {
		if agent.OAuth {
			log.Warn("OAuth 2.0 Authorization Grants requires SSL")
		}
		log.Warn("Agent needs to be configured using https protocol")
		return headers
	}
	if !agent.OAuth {
		log.Warn("OAuth 2.0 Authorization not configured")
		return headers
	}

	log.Debug("* Using OAuth 2.0 Authorization Grants")
	provider := e.tokenProvider(agent)
	if provider == nil {
		log.Error("Access token provider is not bound")
		return headers
	}
	log.Debug("* OAuth 2.0 User: %s", agent.UserID)
	token, err := provider.AccessToken(ctx, agent.UserID)
	if err != nil {
		log.Error("Failed to get an access token for user: %s msg: %v", agent.UserID, err)
		return headers
	}
	headers.Set("Authorization", "Bearer "+token)
	log.Debug("* OAuth 2.0 Authorization Bearer setup successful")
	return headers
}

// tokenProvider returns the provider registered for the configured client
// and the agent's instance, else the highest ranked one.
func (e *Engine) tokenProvider(agent *domain.AgentConfig) driven.AccessTokenProvider {
	if e.tokens == nil {
		return nil
	}
	key := ProviderID(e.cfg.TokenClientID, e.instances.InstanceIDFromAgent(agent))
	if p, ok := e.tokens.Get(key); ok {
		return p
	}
	if all := e.tokens.Snapshot(); len(all) > 0 {
		return all[len(all)-1]
	}
	return nil
}

// ProviderID is the registry key of an access token provider.
func ProviderID(clientID, instanceID string) string {
	return domain.TokenProviderID(clientID, instanceID)
}

// Do sends a request with the session headers plus extra. A transport
// failure is logged and yields a nil response.
func (s *Session) Do(ctx context.Context, method, target string, body []byte, extra http.Header) *Response {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		s.log.Error("Error while creating request: %v", err)
		return nil
	}
	for name, values := range s.headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	for name, values := range extra {
		for _, v := range values {
			req.Header.Set(name, v)
		}
	}
	s.logRequest(req)

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		s.engine.exchanged(method, 0, time.Since(start))
		s.log.Error("Error while sending request: %v", err)
		return nil
	}
	defer resp.Body.Close()
	s.engine.exchanged(method, resp.StatusCode, time.Since(start))

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header}
	s.logResponse(resp, out)
	return out
}

func (e *Engine) exchanged(method string, status int, d time.Duration) {
	if e.metrics != nil {
		e.metrics.ExchangeCompleted(method, status, d)
	}
}

func (s *Session) logRequest(req *http.Request) {
	s.log.Debug("Request %s to %s", req.Method, req.URL)
	for name, values := range req.Header {
		for _, v := range values {
			if name == "Authorization" {
				v = "Bearer ****"
			}
			s.log.Debug("> Header %s: %s", name, v)
		}
	}
}

func (s *Session) logResponse(resp *http.Response, out *Response) {
	s.log.Debug("Response %d %s %s", resp.StatusCode, http.StatusText(resp.StatusCode), resp.Proto)
	for name, values := range resp.Header {
		for _, v := range values {
			s.log.Debug("< Header %s: %s", name, v)
		}
	}
	if Successful(out) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if err != nil {
		return
	}
	if resp.StatusCode == http.StatusNotFound {
		s.log.Debug("Not found: %s", body)
		return
	}
	s.log.Error("> Error message: %s", body)
}
