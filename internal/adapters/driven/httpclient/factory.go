// Package httpclient builds the HTTP clients used to talk to commerce
// instances: TLS settings, client certificates, timeouts, optional local
// bind address and request throttling.
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Keystore types.
const (
	KeystorePKCS12 = "pkcs12"
	KeystorePEM    = "pem"
)

var tlsVersions = map[string]uint16{
	"TLSv1.2": tls.VersionTLS12,
	"TLSv1.3": tls.VersionTLS13,
}

// Ensure Factory implements the interface.
var _ driven.HTTPClientFactory = (*Factory)(nil)

// Factory creates one http.Client per instance configuration.
type Factory struct {
	// RootCAs overrides the system pool; used against private test servers.
	RootCAs *x509.CertPool
}

// NewFactory creates a factory using the system trust store.
func NewFactory() *Factory {
	return &Factory{}
}

// NewClient builds a client for cfg.
func (f *Factory) NewClient(cfg domain.InstanceConfig) (*http.Client, error) {
	tlsConfig, err := f.tlsConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", cfg.ID, err)
	}

	connectTimeout := orDuration(cfg.ConnectTimeout, domain.DefaultConnectTimeout)
	socketTimeout := orDuration(cfg.SocketTimeout, domain.DefaultSocketTimeout)

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	if cfg.Interface != "" {
		addr, err := localAddr(cfg.Interface)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", cfg.ID, err)
		}
		dialer.LocalAddr = addr
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: socketTimeout,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}

	var rt http.RoundTripper = transport
	if cfg.RequestsPerSecond > 0 {
		rt = NewThrottle(transport, cfg.RequestsPerSecond, cfg.Burst)
	}

	return &http.Client{Transport: rt}, nil
}

func (f *Factory) tlsConfig(cfg domain.InstanceConfig) (*tls.Config, error) {
	protocol := cfg.SSL
	if protocol == "" {
		protocol = domain.DefaultSSLProtocol
	}
	version, ok := tlsVersions[protocol]
	if !ok {
		return nil, fmt.Errorf("%w: ssl protocol %q", domain.ErrUnsupportedType, protocol)
	}

	tc := &tls.Config{
		MinVersion: version,
		RootCAs:    f.RootCAs,
	}

	switch strings.ToLower(cfg.KeystoreType) {
	case "":
	case KeystorePKCS12:
		cert, err := loadPKCS12(cfg.KeystorePath, cfg.KeystorePassword)
		if err != nil {
			return nil, err
		}
		tc.Certificates = []tls.Certificate{cert}
	case KeystorePEM:
		cert, err := tls.LoadX509KeyPair(cfg.KeystorePath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("load pem key pair: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	default:
		return nil, fmt.Errorf("%w: keystore type %q", domain.ErrUnsupportedType, cfg.KeystoreType)
	}
	return tc, nil
}

func loadPKCS12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read keystore: %w", err)
	}
	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode keystore: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

// localAddr resolves an IP literal or an interface name to a TCP address.
func localAddr(iface string) (*net.TCPAddr, error) {
	if ip := net.ParseIP(iface); ip != nil {
		return &net.TCPAddr{IP: ip}, nil
	}
	ni, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("local interface %q: %w", iface, err)
	}
	addrs, err := ni.Addrs()
	if err != nil {
		return nil, fmt.Errorf("local interface %q: %w", iface, err)
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok {
			return &net.TCPAddr{IP: ipnet.IP}, nil
		}
	}
	return nil, fmt.Errorf("local interface %q has no address", iface)
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
