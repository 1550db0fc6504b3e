package app

import (
	"fmt"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/oauth"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/render"
	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders"
	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders/contentasset"
	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders/contentassetbody"
	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders/contentslot"
	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders/damasset"
	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders/renderingtemplate"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/services"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/resolvers"
	"github.com/custodia-labs/sfcc-replicator/internal/transports/ocapi"
	"github.com/custodia-labs/sfcc-replicator/internal/transports/webdav"
)

// InstanceConfig converts a configured instance to its domain form.
func InstanceConfig(c file.InstanceConfig) domain.InstanceConfig {
	return domain.InstanceConfig{
		ID:                domain.NormaliseInstanceID(c.ID),
		Endpoint:          c.Endpoint,
		Scheme:            c.Scheme,
		ConnectTimeout:    c.ConnectTimeout.Duration,
		SocketTimeout:     c.SocketTimeout.Duration,
		Interface:         c.Interface,
		SSL:               c.SSL,
		KeystoreType:      c.KeystoreType,
		KeystorePath:      c.KeystorePath,
		KeystorePassword:  c.KeystorePassword,
		KeyPath:           c.KeyPath,
		KeyPassword:       c.KeyPassword,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		Preview: domain.PreviewConfig{
			InstanceID:          domain.NormaliseInstanceID(c.ID),
			PageEndpoint:        c.Preview.PageEndpoint,
			SearchEndpoint:      c.Preview.SearchEndpoint,
			Template:            c.Preview.Template,
			DefaultSite:         c.Preview.DefaultSite,
			CacheEnabled:        c.Preview.CacheEnabled,
			CacheTime:           c.Preview.CacheTime.Duration,
			StorefrontProtected: c.Preview.StorefrontProtected,
			StorefrontUser:      c.Preview.StorefrontUser,
			StorefrontPassword:  c.Preview.StorefrontPassword,
		},
	}
}

func buildInstances(cfgs []file.InstanceConfig, factory driven.HTTPClientFactory) ([]*driven.InstanceClient, error) {
	clients := make([]*driven.InstanceClient, 0, len(cfgs))
	for _, c := range cfgs {
		ic := InstanceConfig(c)
		httpClient, err := factory.NewClient(ic)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", ic.ID, err)
		}
		clients = append(clients, &driven.InstanceClient{Config: ic, HTTP: httpClient})
	}
	return clients, nil
}

func buildTokenProviders(cfgs []file.TokenProviderConfig, store driven.TokenStore, box driven.SecretBox, metrics driven.MetricsSink) ([]driven.AccessTokenProvider, error) {
	providers := make([]driven.AccessTokenProvider, 0, len(cfgs))
	for _, c := range cfgs {
		p, err := oauth.New(oauth.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			InstanceID:   c.InstanceID,
			Endpoint:     c.Endpoint,
			TokenURL:     c.TokenURL,
			GrantType:    c.GrantType,
			Rank:         c.Rank,
			Scopes:       c.Scopes,
			Leeway:       c.Leeway.Duration,
		}, store, box, metrics, nil)
		if err != nil {
			return nil, fmt.Errorf("token provider %s: %w", c.ClientID, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func buildRenderer(cfg file.RenderConfig) driven.Renderer {
	if cfg.BaseURL == "" {
		return render.PropertyRenderer(render.DefaultMarkupProperty)
	}
	return render.New(render.Config{
		BaseURL:  cfg.BaseURL,
		User:     cfg.User,
		Password: cfg.Password,
		Timeout:  cfg.Timeout.Duration,
	}, nil)
}

func buildFolderAttributes(cfgs []file.FolderAttributesConfig) (*services.FolderAttributes, error) {
	assignments := make([]*domain.FolderAssignment, 0, len(cfgs))
	for _, c := range cfgs {
		descs, err := domain.ParseAttributeDescriptors(c.Attributes, logger.Warn)
		if err != nil {
			return nil, fmt.Errorf("folder attributes %s: %w", c.ID, err)
		}
		assignments = append(assignments, &domain.FolderAssignment{
			ID:          c.ID,
			Order:       c.Rank,
			Folders:     c.Folders,
			Descriptors: descs,
		})
	}
	return services.NewFolderAttributes(assignments...), nil
}

func buildBuilders(cfg *file.Config, mapper contentasset.AttributeMapper, relations driven.LiveRelationships, locales driven.LocaleResolver) ([]driven.ContentBuilderPlugin, error) {
	b := cfg.Builders
	renderer := buildRenderer(cfg.Render)

	folders, err := buildFolderAttributes(cfg.FolderAttributes)
	if err != nil {
		return nil, err
	}

	assetCfg := contentasset.DefaultConfig()
	assetCfg.SupportedTypes = b.ContentAsset.ResourceTypes
	assetCfg.IgnoredTypes = b.ContentAsset.IgnoredTypes
	assetCfg.DefaultLibrary = b.ContentAsset.DefaultLibrary
	assetCfg.DefaultTemplate = b.ContentAsset.DefaultTemplate
	if b.ContentAsset.API != "" {
		assetCfg.API = b.ContentAsset.API
	}
	if len(b.ContentAsset.AttributeMapping) > 0 {
		attrs, err := domain.ParseAttributeDescriptors(b.ContentAsset.AttributeMapping, logger.Warn)
		if err != nil {
			return nil, fmt.Errorf("content asset mapping: %w", err)
		}
		assetCfg.Attributes = attrs
	}

	var plugins []driven.ContentBuilderPlugin
	add := func(pc file.PluginConfig, p driven.ContentBuilderPlugin) {
		if pc.Disabled {
			logger.Debug("app: builder %s disabled", p.Name())
			return
		}
		plugins = append(plugins, contentbuilders.WithRank(p, pc.Rank))
	}

	add(b.ContentAsset.PluginConfig, contentasset.New(assetCfg, mapper, folders, resolvers.NewNameResolver(relations), locales))
	add(b.ContentAssetBody.PluginConfig, contentassetbody.New(contentassetbody.Config{
		SupportedTypes: b.ContentAssetBody.ResourceTypes,
		IgnoredTypes:   b.ContentAssetBody.IgnoredTypes,
		ParsysTypes:    b.ContentAssetBody.ParsysTypes,
	}, renderer, locales))
	add(b.ContentSlot.PluginConfig, contentslot.New(contentslot.Config{
		SupportedTypes: b.ContentSlot.ResourceTypes,
		IgnoredTypes:   b.ContentSlot.IgnoredTypes,
		API:            b.ContentSlot.API,
	}, locales))
	add(b.DAMAsset.PluginConfig, damasset.New(damasset.Config{
		Endpoint:  b.DAMAsset.Endpoint,
		Rendition: b.DAMAsset.Rendition,
		Library:   b.DAMAsset.Library,
		Scope:     b.DAMAsset.Scope,
	}))
	add(b.RenderingTemplate.PluginConfig, renderingtemplate.New(renderingtemplate.Config{
		SupportedTypes: b.RenderingTemplate.ResourceTypes,
		Endpoint:       b.RenderingTemplate.Endpoint,
		Site:           b.RenderingTemplate.Site,
	}, renderer))
	return plugins, nil
}

func buildTransports(cfg file.TransportsConfig, instances *services.InstanceRegistry, tokens *services.RankedRegistry[driven.AccessTokenProvider], metrics driven.MetricsSink) []driven.TransportPlugin {
	engine := ocapi.NewEngine(ocapi.Config{
		Version:       cfg.OCAPI.Version,
		Path:          cfg.OCAPI.Path,
		TokenClientID: cfg.OCAPI.TokenClientID,
	}, instances, tokens, metrics)

	return []driven.TransportPlugin{
		ocapi.NewContentAsset(engine),
		ocapi.NewContentSlotConfig(engine),
		ocapi.NewFolderAssignments(engine, cfg.OCAPI.FolderEndpoint),
		webdav.New(webdav.Config{
			Endpoint: cfg.WebDAV.Endpoint,
			User:     cfg.WebDAV.User,
			Password: cfg.WebDAV.Password,
		}, instances, metrics),
	}
}
