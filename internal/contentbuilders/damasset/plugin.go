// Package damasset turns binary assets into WebDAV static files.
package damasset

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Registry identity.
const (
	TaskName = "DAMAssetPlugin"
	Rank     = 30
)

// Defaults.
const (
	DefaultEndpoint  = "/on/demandware.servlet/webdav/Sites/Libraries/{library_id}/{scope}"
	DefaultRendition = "original"
	DefaultScope     = "default"
)

// Payload fields of a static file.
const (
	FieldSize     = "size"
	FieldMimeType = "mimetype"
	FieldBase64   = "base64"
	FieldData     = "data"
)

// Config holds the plugin settings.
type Config struct {
	// Endpoint is the WebDAV share template. Default: DefaultEndpoint
	Endpoint string
	// Rendition is the name prefix of the exported rendition. Default: DefaultRendition
	Rendition string
	Library   string
	// Scope is used when no language is inherited. Default: DefaultScope
	Scope string
}

// Ensure Plugin implements the interface.
var _ driven.ContentBuilderPlugin = (*Plugin)(nil)

// Plugin encodes a rendition of an asset.
type Plugin struct {
	contentbuilders.Base
	cfg Config
}

// New creates the plugin.
func New(cfg Config) *Plugin {
	cfg.Endpoint = contentbuilders.OrDefault(cfg.Endpoint, DefaultEndpoint)
	cfg.Rendition = contentbuilders.OrDefault(cfg.Rendition, DefaultRendition)
	cfg.Scope = contentbuilders.OrDefault(cfg.Scope, DefaultScope)
	return &Plugin{Base: contentbuilders.NewBase(TaskName, Rank), cfg: cfg}
}

// CanHandle matches resources backed by renditions.
func (p *Plugin) CanHandle(_ domain.ActionType, resource driven.Resource) bool {
	_, ok := resource.(driven.Asset)
	return ok
}

// Create adds the static file location and, on activation, its data.
func (p *Plugin) Create(_ context.Context, action domain.ActionType, resource driven.Resource, existing *domain.Delivery) (*domain.Delivery, error) {
	d := contentbuilders.Start(existing)

	asset, ok := resource.(driven.Asset)
	if !ok {
		logger.Warn("Resource %s can not be adapted to an asset", resource.Path())
		return d, nil
	}

	d.SetAPIType(domain.APITypeWebDAV)
	d.SetContentType(domain.ContentTypeStaticAsset)
	d.Set(domain.FieldWebDAVEndpoint, p.cfg.Endpoint)
	d.Set(domain.FieldLibraryID, pages.InheritedStringOr(asset, pages.PropLibrary, p.cfg.Library))
	d.Set(domain.FieldScope, pages.InheritedStringOr(asset, pages.PropLanguage, p.cfg.Scope))
	d.Set(domain.FieldID, asset.Name())
	d.Set(domain.FieldPath, asset.Path())

	if action != domain.ActionActivate {
		return d, nil
	}

	payload := d.Payload()
	rendition := p.findRendition(asset)
	if rendition == nil {
		logger.Error("Can not extract asset for %s", asset.Path())
		return d, nil
	}

	payload.Set(FieldSize, rendition.Size())
	payload.Set(FieldMimeType, rendition.MimeType())
	payload.Set(FieldBase64, true)
	data, err := encode(rendition)
	if err != nil {
		logger.Error("Unable to serialize asset data %s: %v", asset.Path(), err)
		return d, nil
	}
	payload.Set(FieldData, data)
	return d, nil
}

// findRendition returns the first rendition whose name starts with the
// configured name, else the original.
func (p *Plugin) findRendition(asset driven.Asset) driven.Rendition {
	var original driven.Rendition
	for _, r := range asset.Renditions() {
		if strings.HasPrefix(r.Name(), p.cfg.Rendition) {
			return r
		}
		if r.Name() == DefaultRendition {
			original = r
		}
	}
	return original
}

func encode(r driven.Rendition) (string, error) {
	rc, err := r.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var b strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &b)
	if _, err := io.Copy(enc, rc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}
