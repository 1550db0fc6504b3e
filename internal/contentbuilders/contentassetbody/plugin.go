// Package contentassetbody renders a page's content container into the
// body of its OCAPI content asset.
package contentassetbody

import (
	"context"
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Registry identity.
const (
	TaskName = "ContentAssetPageBodyPlugin"
	Rank     = 11
)

// DefaultParsysType is the content container rendered as the body.
const DefaultParsysType = "commerce/demandware/components/placeholder/parsys"

// BodyField is the payload field holding the rendered body.
const BodyField = "c_body"

// Config holds the plugin settings.
type Config struct {
	SupportedTypes []string
	IgnoredTypes   []string
	// ParsysTypes are the container types searched for. Default: DefaultParsysType
	ParsysTypes []string
}

// Ensure Plugin implements the interface.
var _ driven.ContentBuilderPlugin = (*Plugin)(nil)

// Plugin adds the rendered body on activation.
type Plugin struct {
	contentbuilders.Base
	match    contentbuilders.Matcher
	parsys   []string
	renderer driven.Renderer
	locales  driven.LocaleResolver
}

// New creates the plugin.
func New(cfg Config, renderer driven.Renderer, locales driven.LocaleResolver) *Plugin {
	parsys := make([]string, 0, len(cfg.ParsysTypes))
	for _, t := range cfg.ParsysTypes {
		if t = strings.TrimSpace(t); t != "" {
			parsys = append(parsys, t)
		}
	}
	if len(parsys) == 0 {
		parsys = []string{DefaultParsysType}
	}
	return &Plugin{
		Base:     contentbuilders.NewBase(TaskName, Rank),
		match:    contentbuilders.Matcher{Supported: cfg.SupportedTypes, Ignored: cfg.IgnoredTypes},
		parsys:   parsys,
		renderer: renderer,
		locales:  locales,
	}
}

// CanHandle matches supported pages being activated.
func (p *Plugin) CanHandle(action domain.ActionType, resource driven.Resource) bool {
	return action == domain.ActionActivate && p.match.Matches(resource)
}

// Create renders the body container and stores it as markup text.
func (p *Plugin) Create(ctx context.Context, _ domain.ActionType, resource driven.Resource, existing *domain.Delivery) (*domain.Delivery, error) {
	d := contentbuilders.Start(existing)
	d.SetAPIType(domain.APITypeOCAPI)
	logger.Debug("Transform page %s into content asset body", resource.Path())

	container := p.findContainer(resource)
	if container == nil {
		logger.Debug("Could not detect content asset body resource")
		return d, nil
	}

	html, err := p.renderer.Render(ctx, container, "", contentbuilders.RenderSelector)
	if err != nil || html == "" {
		logger.Warn("Content asset body resource %s could not be pre-rendered: %v", container.Path(), err)
		return d, nil
	}

	d.Payload().Set(BodyField, contentbuilders.MarkupText(html, p.locales.Locale(resource)))
	return d, nil
}

func (p *Plugin) findContainer(resource driven.Resource) driven.Resource {
	content := pages.Content(resource)
	for _, t := range p.parsys {
		if found := pages.FindDescendant(content, t); found != nil {
			return found
		}
	}
	return nil
}
