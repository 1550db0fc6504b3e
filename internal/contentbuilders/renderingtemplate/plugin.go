// Package renderingtemplate publishes rendered pages as commerce templates
// over WebDAV.
package renderingtemplate

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
	TaskName = "RenderingTemplatePlugin"
	Rank     = 90
)

// Defaults.
const (
	DefaultEndpoint = "/on/demandware.servlet/webdav/Sites/Dynamic/{site_id}"
	DefaultSite     = "SiteGenesis"
)

// TemplateMimeType is the content type of published templates.
const TemplateMimeType = "application/xhtml+xml"

// Config holds the plugin settings.
type Config struct {
	SupportedTypes []string
	// Endpoint is the WebDAV share template. Default: DefaultEndpoint
	Endpoint string
	// Site is used when the page inherits none. Default: DefaultSite
	Site string
}

// Ensure Plugin implements the interface.
var _ driven.ContentBuilderPlugin = (*Plugin)(nil)

// Plugin renders the page markup into a template file.
type Plugin struct {
	contentbuilders.Base
	cfg      Config
	match    contentbuilders.Matcher
	renderer driven.Renderer
}

// New creates the plugin.
func New(cfg Config, renderer driven.Renderer) *Plugin {
	cfg.Endpoint = contentbuilders.OrDefault(cfg.Endpoint, DefaultEndpoint)
	cfg.Site = contentbuilders.OrDefault(cfg.Site, DefaultSite)
	return &Plugin{
		Base:     contentbuilders.NewBase(TaskName, Rank),
		cfg:      cfg,
		match:    contentbuilders.Matcher{Supported: cfg.SupportedTypes},
		renderer: renderer,
	}
}

// CanHandle reports whether the page content type is supported.
func (p *Plugin) CanHandle(_ domain.ActionType, resource driven.Resource) bool {
	return p.match.Matches(resource)
}

// Create adds the template location and, on activation, the markup.
func (p *Plugin) Create(ctx context.Context, action domain.ActionType, resource driven.Resource, existing *domain.Delivery) (*domain.Delivery, error) {
	d := contentbuilders.Start(existing)

	templatePath := pages.Properties(resource).StringOr(pages.PropTemplatePath, resource.Path())

	d.SetAPIType(domain.APITypeWebDAV)
	d.SetContentType(domain.ContentTypeStaticAsset)
	d.Set(domain.FieldWebDAVEndpoint, p.cfg.Endpoint)
	d.Set(domain.FieldSiteID, pages.InheritedStringOr(resource, pages.PropSite, p.cfg.Site))
	d.Set(domain.FieldID, resource.Name())
	d.Set(domain.FieldPath, contentbuilders.TemplatePath(templatePath))

	if action != domain.ActionActivate {
		return d, nil
	}

	markup, err := p.renderer.Render(ctx, resource, "", contentbuilders.RenderSelector)
	if err != nil {
		logger.Warn("Page %s could not be rendered: %v", resource.Path(), err)
		return d, nil
	}
	if markup == "" {
		return d, nil
	}

	payload := d.Payload()
	payload.Set("size", len(markup))
	payload.Set("mimetype", TemplateMimeType)
	payload.Set("data", markup)
	return d, nil
}
