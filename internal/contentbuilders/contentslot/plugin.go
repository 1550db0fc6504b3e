// Package contentslot maps CMS pages to OCAPI content slot configurations.
package contentslot

import (
	"context"
	"path"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/contentbuilders"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Registry identity.
const (
	TaskName = "ContentSlotConfigPagePlugin"
	Rank     = 20
)

// DefaultAPI is the OCAPI slot configuration endpoint template.
const DefaultAPI = "/sites/{site_id}/slots/{slot_id}/slot_configurations/{id}"

// Page properties read by the plugin.
const (
	PropSlotType        = "dwreSlotType"
	PropSlotID          = "dwreSlotId"
	PropSlotCategoryID  = "dwreSlotCategoryId"
	PropSlotFolderID    = "dwreSlotFolderId"
	PropSlotContentType = "dwreSlotContentType"
	PropSlotHTML        = "dwreSlotHTML"
	PropSlotProducts    = "dwreSlotProducts"
	PropSlotCategories  = "dwreSlotCategories"
	PropSlotAssets      = "dwreSlotContentAssets"
	PropSlotCallout     = "dwreSlotCallout"
	PropSlotRank        = "dwreSlotRank"
	PropDefault         = "dwreDefault"
	PropEnabled         = "dwreEnabled"
	PropDayOfWeek       = "dwreSlotScheduleDayOfWeek"
	PropFromTime        = "dwreSlotScheduleFromTime"
	PropToTime          = "dwreSlotScheduleToTime"
	PropCustomerGroups  = "dwreSlotScheduleCustomerGroups"
)

// Schedule formats.
const (
	DateLayout      = "2006-01-02T15:04:05-07:00"
	TimeOfDayLayout = "15:04:05-07:00"
)

// Config holds the plugin settings.
type Config struct {
	SupportedTypes []string
	IgnoredTypes   []string
	// API is the endpoint template. Default: DefaultAPI
	API string
}

// Ensure Plugin implements the interface.
var _ driven.ContentBuilderPlugin = (*Plugin)(nil)

// Plugin builds slot configurations.
type Plugin struct {
	contentbuilders.Base
	api     string
	match   contentbuilders.Matcher
	locales driven.LocaleResolver
}

// New creates the plugin.
func New(cfg Config, locales driven.LocaleResolver) *Plugin {
	return &Plugin{
		Base:    contentbuilders.NewBase(TaskName, Rank),
		api:     contentbuilders.OrDefault(cfg.API, DefaultAPI),
		match:   contentbuilders.Matcher{Supported: cfg.SupportedTypes, Ignored: cfg.IgnoredTypes},
		locales: locales,
	}
}

// CanHandle reports whether the page content type is supported.
func (p *Plugin) CanHandle(_ domain.ActionType, resource driven.Resource) bool {
	return p.match.Matches(resource)
}

// Create adds the slot identity and, on activation, the configuration.
func (p *Plugin) Create(_ context.Context, action domain.ActionType, resource driven.Resource, existing *domain.Delivery) (*domain.Delivery, error) {
	d := contentbuilders.Start(existing)
	logger.Debug("Transform page %s into content slot configuration", resource.Path())

	props := pages.Properties(resource)
	locale := p.locales.Locale(resource)

	d.SetAPIType(domain.APITypeOCAPI)
	d.SetContentType(domain.ContentTypeContentSlotConfig)
	d.Set(domain.FieldAPIEndpoint, p.api)
	d.Set(domain.FieldID, resource.Name())
	d.Set(domain.FieldSlotID, optional(props.String(PropSlotID)))
	d.Set(domain.FieldSiteID, optional(pages.InheritedString(resource, pages.PropSite)))

	switch slotType := props.String(PropSlotType); slotType {
	case "category":
		d.Set(domain.FieldContext, slotType+"="+props.String(PropSlotCategoryID))
	case "folder":
		d.Set(domain.FieldContext, slotType+"="+props.String(PropSlotFolderID))
	}

	if action != domain.ActionActivate {
		return d, nil
	}

	payload := d.Payload()
	payload.Set("configuration_id", resource.Name())
	payload.Set("default", props.Bool(PropDefault))
	payload.Set("enabled", props.Bool(PropEnabled))
	if rank, ok := props.Int(PropSlotRank); ok {
		payload.Set("rank", rank)
	}
	payload.Set("description", optional(props.String(pages.PropDescription)))
	payload.Set("template", optional(props.String(pages.PropTemplatePath)))
	payload.Set("callout_msg", contentbuilders.MarkupText(optional(props.String(PropSlotCallout)), locale))
	payload.Set("slot_content", slotContent(props, locale))
	payload.Set("schedule", schedule(props))
	if props.Has(PropCustomerGroups) {
		payload.Set("customer_groups", props.Strings(PropCustomerGroups))
	}
	return d, nil
}

func slotContent(props domain.Properties, locale string) map[string]any {
	content := map[string]any{}
	contentType := props.String(PropSlotContentType)
	if contentType == "" {
		return content
	}
	content["type"] = contentType

	switch contentType {
	case "html":
		content["body"] = contentbuilders.MarkupText(optional(props.String(PropSlotHTML)), locale)
	case "products":
		if products := props.Strings(PropSlotProducts); products != nil {
			ids := make([]string, len(products))
			for i, p := range products {
				ids[i] = path.Base(p)
			}
			content["product_ids"] = ids
		}
	case "categories":
		if ids := props.Strings(PropSlotCategories); ids != nil {
			content["category_ids"] = ids
		}
	case "content_assets":
		if ids := props.Strings(PropSlotAssets); ids != nil {
			content["content_asset_ids"] = ids
		}
	}
	return content
}

func schedule(props domain.Properties) map[string]any {
	out := map[string]any{}
	if from, ok := props.Time(pages.PropOnTime); ok {
		out["start_date"] = from.Format(DateLayout)
	}
	if to, ok := props.Time(pages.PropOffTime); ok {
		out["end_date"] = to.Format(DateLayout)
	}

	recurrence := map[string]any{}
	if props.Has(PropDayOfWeek) {
		recurrence["day_of_week"] = props.Strings(PropDayOfWeek)
	}
	from, fromOK := props.Time(PropFromTime)
	to, toOK := props.Time(PropToTime)
	if fromOK && toOK {
		recurrence["time_of_day"] = map[string]any{
			"time_from": timeOfDay(from),
			"time_to":   timeOfDay(to),
		}
	}
	if len(recurrence) > 0 {
		out["recurrence"] = recurrence
	}
	return out
}

func timeOfDay(t time.Time) string {
	return t.Format(TimeOfDayLayout)
}

// optional maps blank strings to nil so they are left out of the document.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
