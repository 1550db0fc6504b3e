package domain

import (
	"strings"
	"time"
)

// DefaultInstanceID is the well-known id of the fallback instance.
const DefaultInstanceID = "default"

// Default connection settings for instance clients.
const (
	DefaultScheme         = "https"
	DefaultConnectTimeout = 30 * time.Second
	DefaultSocketTimeout  = 30 * time.Second
	DefaultSSLProtocol    = "TLSv1.2"
)

// InstanceConfig describes one commerce backend deployment.
type InstanceConfig struct {
	// ID is the registry key, matched against demandware://{id} agent URIs.
	ID string

	// Endpoint is the backend host, optionally with a port.
	Endpoint string

	// Scheme is the URL scheme for API calls, https unless overridden.
	Scheme string

	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration

	// SocketTimeout bounds the wait for a response.
	SocketTimeout time.Duration

	// Interface is an optional local address to bind outgoing connections to.
	Interface string

	// SSL is the minimum TLS protocol, e.g. "TLSv1.2".
	SSL string

	// KeystoreType is "pkcs12" or "pem"; empty disables client certificates.
	KeystoreType string
	// KeystorePath locates the keystore (PKCS12) or certificate (PEM).
	KeystorePath string
	// KeystorePassword unlocks a PKCS12 keystore.
	KeystorePassword string
	// KeyPath locates the PEM private key.
	KeyPath string
	// KeyPassword is accepted for compatibility; PKCS12 keys share the keystore password.
	KeyPassword string

	// RequestsPerSecond throttles calls to the instance; zero disables throttling.
	RequestsPerSecond float64
	// Burst is the throttle bucket size.
	Burst int

	// Preview is the per-instance preview endpoint configuration.
	Preview PreviewConfig
}

// NormaliseInstanceID strips path separators from an instance id.
func NormaliseInstanceID(id string) string {
	return strings.ReplaceAll(id, "/", "")
}

// BaseURL returns scheme://endpoint for the instance.
func (c InstanceConfig) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	return scheme + "://" + c.Endpoint
}

// PreviewConfig describes the storefront preview of one instance.
type PreviewConfig struct {
	InstanceID          string
	PageEndpoint        string
	SearchEndpoint      string
	Template            string
	DefaultSite         string
	CacheEnabled        bool
	CacheTime           time.Duration
	StorefrontProtected bool
	StorefrontUser      string
	StorefrontPassword  string
}
