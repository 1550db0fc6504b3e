package converters

import (
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// legacyCSVID is the bracketed id older mapping configurations use.
const legacyCSVID = "[" + IDCSV + "]"

// CSV splits a comma-separated value into an array.
type CSV struct {
	base
}

var _ driven.AttributeConverter = (*CSV)(nil)

// NewCSV creates the comma-separated-values converter.
func NewCSV() *CSV {
	return &CSV{base{id: IDCSV, rank: RankCSV}}
}

// CanHandle claims descriptors naming "comma-separated-values".
func (c *CSV) CanHandle(attr domain.AttributeDescriptor, page driven.Resource) bool {
	return (c.named(attr) || strings.EqualFold(attr.ConverterID, legacyCSVID)) && applicable(attr, page)
}

// Convert returns the trimmed, non-blank values.
func (c *CSV) Convert(attr domain.AttributeDescriptor, page driven.Resource) any {
	value := rawValue(attr, page)
	if strings.TrimSpace(value) == "" {
		value = attr.DefaultValue
	}
	out := []any{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, FixValue(part))
		}
	}
	return out
}
