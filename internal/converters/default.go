package converters

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Default copies the source value, or the default, as a scalar.
type Default struct {
	base
}

var _ driven.AttributeConverter = (*Default)(nil)

// NewDefault creates the fallback converter.
func NewDefault() *Default {
	return &Default{base{id: IDDefault, rank: RankDefault}}
}

// CanHandle claims descriptors without a converter id or naming "default".
func (c *Default) CanHandle(attr domain.AttributeDescriptor, page driven.Resource) bool {
	return (attr.ConverterID == "" || c.named(attr)) && applicable(attr, page)
}

// Convert returns the coerced scalar value.
func (c *Default) Convert(attr domain.AttributeDescriptor, page driven.Resource) any {
	return FixValue(rawValue(attr, page))
}
