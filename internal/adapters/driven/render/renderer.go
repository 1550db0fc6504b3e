// Package render fetches rendered markup for CMS resources over HTTP.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// maxMarkup caps the size of one rendered response.
const maxMarkup = 8 << 20

// Config locates the CMS render endpoint.
type Config struct {
	BaseURL  string
	User     string
	Password string

	// Extension is appended after the selectors. Defaults to "html".
	Extension string
	Timeout   time.Duration
}

// Ensure HTTPRenderer implements the interface.
var _ driven.Renderer = (*HTTPRenderer)(nil)

// HTTPRenderer requests {base}{path}.{selectors}.{extension} from the CMS.
type HTTPRenderer struct {
	cfg    Config
	client *http.Client
}

// New creates a renderer. A nil client gets one bounded by cfg.Timeout.
func New(cfg Config, client *http.Client) *HTTPRenderer {
	if cfg.Extension == "" {
		cfg.Extension = "html"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPRenderer{cfg: cfg, client: client}
}

// URL returns the render URL for a resource path.
func (r *HTTPRenderer) URL(path string, selectors ...string) string {
	var b strings.Builder
	b.WriteString(r.cfg.BaseURL)
	b.WriteString(path)
	for _, s := range selectors {
		if s != "" {
			b.WriteString(".")
			b.WriteString(s)
		}
	}
	b.WriteString(".")
	b.WriteString(r.cfg.Extension)
	return b.String()
}

// Render returns the markup of resource. An empty method means GET.
func (r *HTTPRenderer) Render(ctx context.Context, resource driven.Resource, method string, selectors ...string) (string, error) {
	if method == "" {
		method = http.MethodGet
	}
	target := r.URL(resource.Path(), selectors...)

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return "", fmt.Errorf("create render request: %w", err)
	}
	if r.cfg.User != "" {
		req.SetBasicAuth(r.cfg.User, r.cfg.Password)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", resource.Path(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render %s: %s responded %d", resource.Path(), target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMarkup))
	if err != nil {
		return "", fmt.Errorf("read rendered markup: %w", err)
	}
	return string(body), nil
}
