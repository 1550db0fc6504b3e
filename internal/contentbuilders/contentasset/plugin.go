// Package contentasset maps CMS pages to OCAPI content assets.
package contentasset

import (
	"context"

	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Registry identity.
const (
	TaskName = "ContentAssetPagePlugin"
	Rank     = 10
)

// DefaultAPI is the OCAPI content asset endpoint template.
const DefaultAPI = "/libraries/{library_id}/content/{id}"

// DefaultMapping is the attribute mapping applied when none is configured.
var DefaultMapping = []string{
	"jcr:title;name;i18n",
	"pageTitle;page_title;i18n",
	"jcr:description;description;i18n",
	"dwreOnline;online;site",
	"dwreSearchable;searchable;site",
}

// AttributeMapper converts descriptors into payload values.
type AttributeMapper interface {
	Convert(descriptors []domain.AttributeDescriptor, page driven.Resource) map[string]any
}

// FolderMappings merges folder-scoped mapping overrides.
type FolderMappings interface {
	Merge(global []domain.AttributeDescriptor, folders []string) *domain.AttributeSet
}

// Config holds the plugin settings.
type Config struct {
	SupportedTypes  []string
	IgnoredTypes    []string
	DefaultLibrary  string
	DefaultTemplate string
	// API is the endpoint template. Default: DefaultAPI
	API string
	// Attributes is the global attribute mapping.
	Attributes []domain.AttributeDescriptor
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	attrs, _ := domain.ParseAttributeDescriptors(DefaultMapping, nil)
	return Config{API: DefaultAPI, Attributes: attrs}
}

// Ensure Plugin implements the interface.
var _ driven.ContentBuilderPlugin = (*Plugin)(nil)

// Plugin builds the content asset metadata and mapped attributes.
type Plugin struct {
	contentbuilders.Base
	cfg     Config
	match   contentbuilders.Matcher
	mapper  AttributeMapper
	folders FolderMappings
	names   driven.NameResolver
	locales driven.LocaleResolver
}

// New creates the plugin. folders may be nil.
func New(cfg Config, mapper AttributeMapper, folders FolderMappings, names driven.NameResolver, locales driven.LocaleResolver) *Plugin {
	if cfg.API == "" {
		cfg.API = DefaultAPI
	}
	return &Plugin{
		Base:    contentbuilders.NewBase(TaskName, Rank),
		cfg:     cfg,
		match:   contentbuilders.Matcher{Supported: cfg.SupportedTypes, Ignored: cfg.IgnoredTypes},
		mapper:  mapper,
		folders: folders,
		names:   names,
		locales: locales,
	}
}

// CanHandle reports whether the page content type is supported.
func (p *Plugin) CanHandle(_ domain.ActionType, resource driven.Resource) bool {
	return p.match.Matches(resource)
}

// Create adds the content asset fields to the delivery.
func (p *Plugin) Create(ctx context.Context, action domain.ActionType, resource driven.Resource, existing *domain.Delivery) (*domain.Delivery, error) {
	d := contentbuilders.Start(existing)
	logger.Debug("Transform page %s into content asset", resource.Path())

	locale := p.locales.Locale(resource)
	site := pages.InheritedString(resource, pages.PropSite)
	library := pages.InheritedStringOr(resource, pages.PropLibrary, p.cfg.DefaultLibrary)
	template := contentbuilders.TemplatePath(pages.InheritedStringOr(resource, pages.PropTemplatePath, p.cfg.DefaultTemplate))

	d.SetAPIType(domain.APITypeOCAPI)
	d.SetContentType(domain.ContentTypeContentAsset)
	d.Set(domain.FieldAPIEndpoint, p.cfg.API)
	d.Set(domain.FieldLibraryID, library)
	d.Set(domain.FieldID, p.names.Name(ctx, resource))
	if site != "" {
		d.Set(domain.FieldSiteID, site)
	}
	if locale != "" {
		d.Set(domain.FieldLocale, locale)
	}

	if action != domain.ActionActivate {
		return d, nil
	}

	own := pages.Properties(resource)
	folders := own.Strings(pages.PropFolder)
	d.AppendFolders(folders...)

	payload := d.Payload()
	if template != "" {
		payload.Set("template", template)
	}
	payload.Merge(p.mapper.Convert(p.descriptors(folders), resource))

	logger.Debug("Delivery for page %s: %d folders, %d payload fields", resource.Path(), len(d.Folders()), len(payload))
	return d, nil
}

func (p *Plugin) descriptors(folders []string) []domain.AttributeDescriptor {
	if p.folders == nil {
		return p.cfg.Attributes
	}
	return p.folders.Merge(p.cfg.Attributes, folders).Values()
}
