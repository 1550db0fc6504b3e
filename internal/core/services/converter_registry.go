package services

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// ConverterRegistry selects attribute converters in ascending rank.
type ConverterRegistry struct {
	*RankedRegistry[driven.AttributeConverter]
}

// NewConverterRegistry creates a registry holding converters.
func NewConverterRegistry(converters ...driven.AttributeConverter) *ConverterRegistry {
	return &ConverterRegistry{RankedRegistry: NewRankedRegistry(converters...)}
}

// Select returns the first converter that claims attr for page.
func (r *ConverterRegistry) Select(attr domain.AttributeDescriptor, page driven.Resource) (driven.AttributeConverter, bool) {
	for _, c := range r.Snapshot() {
		if c.CanHandle(attr, page) {
			return c, true
		}
	}
	return nil, false
}

// Convert maps every descriptor to its JSON value keyed by target name.
// Descriptors no converter claims are skipped.
func (r *ConverterRegistry) Convert(descriptors []domain.AttributeDescriptor, page driven.Resource) map[string]any {
	out := make(map[string]any, len(descriptors))
	for _, attr := range descriptors {
		c, ok := r.Select(attr, page)
		if !ok {
			continue
		}
		if v := c.Convert(attr, page); v != nil {
			out[attr.TargetName] = v
		}
	}
	return out
}
