// Package webdav delivers static files to commerce WebDAV shares.
package webdav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// StatusError is an unexpected WebDAV response status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webdav %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client issues the WebDAV requests a delivery needs against one share.
// Paths are relative to the share root and unescaped. A Client is not
// safe for concurrent use.
type Client struct {
	root string
	dav  *gowebdav.Client
	rt   *roundTripper
}

// NewClient creates a client for the share at root. httpClient supplies
// the transport and timeout; headers are sent with every request; user
// enables preemptive basic authentication. metrics may be nil.
func NewClient(root string, httpClient *http.Client, headers http.Header, user, password string, metrics driven.MetricsSink) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	rt := &roundTripper{next: next, user: user, password: password, metrics: metrics, ctx: context.Background()}

	dav := gowebdav.NewClient(root, "", "")
	dav.SetTransport(rt)
	if httpClient.Timeout > 0 {
		dav.SetTimeout(httpClient.Timeout)
	}
	for name, values := range headers {
		if len(values) > 0 {
			dav.SetHeader(name, strings.Join(values, ", "))
		}
	}
	return &Client{root: strings.TrimSuffix(root, "/"), dav: dav, rt: rt}
}

// Exists reports whether a resource is present at path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	c.rt.ctx = ctx
	_, err := c.dav.Stat(path)
	if err == nil {
		return true, nil
	}
	if gowebdav.IsErrNotFound(err) {
		return false, nil
	}
	return false, c.wrap("PROPFIND", path, err)
}

// Mkdir creates a collection at path.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	c.rt.ctx = ctx
	return c.wrap("MKCOL", path, c.dav.Mkdir(path, 0755))
}

// Put uploads data to path.
func (c *Client) Put(ctx context.Context, path string, data []byte, contentType string) error {
	c.rt.ctx = ctx
	c.rt.contentType = contentType
	defer func() { c.rt.contentType = "" }()
	return c.wrap(http.MethodPut, path, c.dav.Write(path, data, 0644))
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	c.rt.ctx = ctx
	return c.wrap(http.MethodDelete, path, c.dav.Remove(path))
}

// URL returns the absolute location of path.
func (c *Client) URL(path string) string {
	return c.root + "/" + strings.TrimPrefix(path, "/")
}

// wrap turns a gowebdav status into a StatusError and names the request
// on transport failures.
func (c *Client) wrap(method, path string, err error) error {
	if err == nil {
		return nil
	}
	var se gowebdav.StatusError
	if errors.As(err, &se) {
		return &StatusError{Method: method, URL: c.URL(path), StatusCode: se.Status}
	}
	return fmt.Errorf("webdav %s %s: %w", method, c.URL(path), err)
}

// roundTripper adds authentication and the upload content type, binds the
// request to the caller's context and records exchange metrics.
type roundTripper struct {
	next        http.RoundTripper
	ctx         context.Context
	user        string
	password    string
	contentType string
	metrics     driven.MetricsSink
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(t.ctx)
	if t.user != "" {
		req.SetBasicAuth(t.user, t.password)
	}
	if req.Method == http.MethodPut && t.contentType != "" {
		req.Header.Set("Content-Type", t.contentType)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if t.metrics != nil {
		t.metrics.ExchangeCompleted(req.Method, status, time.Since(start))
	}
	return resp, err
}
