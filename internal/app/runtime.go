package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/artifact"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/httpclient"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/metrics"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/secret"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sfcc-replicator/internal/converters"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/services"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/resolvers"
)

// Runtime is an assembled replicator.
type Runtime struct {
	Instances  *services.InstanceRegistry
	Builders   *services.RankedRegistry[driven.ContentBuilderPlugin]
	Transports *services.RankedRegistry[driven.TransportPlugin]
	Tokens     *services.RankedRegistry[driven.AccessTokenProvider]
	Converters *services.ConverterRegistry

	Builder    *services.ContentBuilder
	Transport  *services.TransportHandler
	Replicator *services.Replicator

	Resources  *memory.ResourceTree
	TokenStore driven.TokenStore
	History    driven.HistoryStore
	Metrics    driven.MetricsSink

	registry *prometheus.Registry
	box      driven.SecretBox
	locales  driven.LocaleResolver
	clients  driven.HTTPClientFactory

	mu      sync.RWMutex
	cfg     *file.Config
	closers []io.Closer
}

// Option adjusts a Runtime before its first Apply.
type Option func(*Runtime)

// WithHTTPClientFactory replaces the instance client factory.
func WithHTTPClientFactory(f driven.HTTPClientFactory) Option {
	return func(r *Runtime) { r.clients = f }
}

// New assembles a runtime from cfg.
func New(cfg *file.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = file.Default()
	}
	logger.SetVerbose(cfg.Log.Verbose || logger.IsVerbose())

	r := &Runtime{
		Instances:  services.NewInstanceRegistry(),
		Builders:   services.NewRankedRegistry[driven.ContentBuilderPlugin](),
		Transports: services.NewRankedRegistry[driven.TransportPlugin](),
		Tokens:     services.NewRankedRegistry[driven.AccessTokenProvider](),
		Resources:  memory.NewResourceTree(nil),
		registry:   prometheus.NewRegistry(),
		locales:    resolvers.NewLocaleResolver(),
		clients:    httpclient.NewFactory(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.Metrics = metrics.NewPrometheusSink(r.registry)
	r.Converters = services.NewConverterRegistry(converters.Defaults(r.locales)...)

	if err := r.openStorage(cfg.Storage); err != nil {
		return nil, err
	}

	packager, err := artifact.NewFilePackager(cfg.Storage.SpoolDir)
	if err != nil {
		return nil, multierr.Append(err, r.Close())
	}
	r.Builder = services.NewContentBuilder(r.Resources, r.Builders, packager, cfg.Storage.SpoolDir)
	r.Transport = services.NewTransportHandler(r.Transports, r.Metrics)
	r.Replicator = services.NewReplicator(r.Builder, r.Transport, r.Instances, r.History)

	if err := r.Apply(cfg); err != nil {
		return nil, multierr.Append(err, r.Close())
	}
	return r, nil
}

func (r *Runtime) openStorage(cfg file.StorageConfig) error {
	if cfg.Driver == "memory" {
		r.TokenStore = memory.NewTokenStore()
		r.History = memory.NewHistoryStore()
		r.box = secret.FromPassphrase(uuid.NewString())
		return nil
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	r.closers = append(r.closers, store)
	r.TokenStore = store.TokenStore()
	r.History = store.HistoryStore()

	keyFile := cfg.KeyFile
	if keyFile == "" {
		keyFile = filepath.Join(filepath.Dir(store.Path()), "token.key")
	}
	box, err := secret.LoadOrCreate(keyFile)
	if err != nil {
		return multierr.Append(err, r.Close())
	}
	r.box = box
	return nil
}

// Apply rebuilds the configuration-driven parts from cfg and swaps them in.
// On error nothing is swapped.
func (r *Runtime) Apply(cfg *file.Config) error {
	if err := file.Validate(cfg); err != nil {
		return err
	}

	root, err := loadTree(cfg.Content.Tree)
	if err != nil {
		return err
	}
	clients, err := buildInstances(cfg.Instances, r.clients)
	if err != nil {
		return err
	}
	tokens, err := buildTokenProviders(cfg.TokenProviders, r.TokenStore, r.box, r.Metrics)
	if err != nil {
		return err
	}
	builders, err := buildBuilders(cfg, r.Converters, r.Resources, r.locales)
	if err != nil {
		return err
	}
	transports := buildTransports(cfg.Transports, r.Instances, r.Tokens, r.Metrics)

	if root != nil {
		r.Resources.Replace(root)
	}
	r.Instances.Replace(clients...)
	r.Tokens.Replace(tokens...)
	r.Builders.Replace(builders...)
	r.Transports.Replace(transports...)

	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()

	logger.Debug("app: %d instance(s), %d token provider(s), %d builder(s), %d transport(s)",
		len(clients), len(tokens), len(builders), len(transports))
	return nil
}

// Config returns the configuration last applied.
func (r *Runtime) Config() *file.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Agent returns the configured replication agent.
func (r *Runtime) Agent() *domain.AgentConfig {
	a := r.Config().Agent
	return &domain.AgentConfig{
		Name:         a.Name,
		TransportURI: a.TransportURI,
		UserID:       a.UserID,
		OAuth:        a.OAuth,
		Headers:      append([]string(nil), a.Headers...),
	}
}

// MetricsHandler serves the runtime's Prometheus registry.
func (r *Runtime) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Close releases the stores.
func (r *Runtime) Close() error {
	var errs error
	for _, c := range r.closers {
		errs = multierr.Append(errs, c.Close())
	}
	r.closers = nil
	return errs
}

func loadTree(path string) (*memory.Node, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content tree: %w", err)
	}
	defer f.Close()

	var root memory.Node
	if err := json.NewDecoder(f).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode content tree %s: %w", path, err)
	}
	return &root, nil
}
