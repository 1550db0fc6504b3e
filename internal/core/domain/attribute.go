package domain

import (
	"fmt"
	"strings"
)

// AttributeDescriptor maps one CMS property to one JSON field.
// Two descriptors are the same mapping when source and target match.
type AttributeDescriptor struct {
	SourceName   string
	TargetName   string
	ConverterID  string
	DefaultValue string
}

// NewAttributeDescriptor validates and builds a descriptor.
func NewAttributeDescriptor(source, target, converterID, defaultValue string) (AttributeDescriptor, error) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" || target == "" {
		return AttributeDescriptor{}, fmt.Errorf("%w: attribute mapping needs a source and a target", ErrInvalidInput)
	}
	return AttributeDescriptor{
		SourceName:   source,
		TargetName:   target,
		ConverterID:  strings.TrimSpace(converterID),
		DefaultValue: defaultValue,
	}, nil
}

// Key identifies the mapping for set membership.
func (a AttributeDescriptor) Key() string {
	return a.SourceName + "\x00" + a.TargetName
}

// Equal reports whether both descriptors map the same source to the same target.
func (a AttributeDescriptor) Equal(other AttributeDescriptor) bool {
	return a.SourceName == other.SourceName && a.TargetName == other.TargetName
}

// HasDefault reports whether a default value is configured.
func (a AttributeDescriptor) HasDefault() bool {
	return a.DefaultValue != ""
}

// String renders the descriptor in its configuration syntax.
func (a AttributeDescriptor) String() string {
	return strings.Join([]string{a.SourceName, a.TargetName, a.ConverterID, a.DefaultValue}, ";")
}

// ParseAttributeDescriptors reads "source;target[;converter[;default]]" lines.
// Lines with fewer than two parts are reported through warn and skipped, lines
// with more than four parts are reported and their extra parts ignored.
func ParseAttributeDescriptors(lines []string, warn func(format string, args ...any)) ([]AttributeDescriptor, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	out := make([]AttributeDescriptor, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) < 2 {
			warn("Invalid attribute mapping %q, expected source;target[;converter[;default]]", line)
			continue
		}
		if len(parts) > 4 {
			warn("Attribute mapping %q has more than 4 parts, extra parts ignored", line)
		}
		var converter, def string
		if len(parts) > 2 {
			converter = parts[2]
		}
		if len(parts) > 3 {
			def = parts[3]
		}
		desc, err := NewAttributeDescriptor(parts[0], parts[1], converter, def)
		if err != nil {
			return nil, fmt.Errorf("parse attribute mapping %q: %w", line, err)
		}
		out = append(out, desc)
	}
	return out, nil
}

// AttributeSet holds descriptors unique by source and target.
// Adding a descriptor whose key is already present replaces the earlier one.
type AttributeSet struct {
	order []string
	items map[string]AttributeDescriptor
}

// NewAttributeSet builds a set from descriptors in registration order.
func NewAttributeSet(descriptors ...AttributeDescriptor) *AttributeSet {
	s := &AttributeSet{items: make(map[string]AttributeDescriptor)}
	s.Add(descriptors...)
	return s
}

// Add inserts or replaces descriptors.
func (s *AttributeSet) Add(descriptors ...AttributeDescriptor) {
	for _, d := range descriptors {
		key := d.Key()
		if _, exists := s.items[key]; !exists {
			s.order = append(s.order, key)
		}
		s.items[key] = d
	}
}

// Get returns the descriptor mapping source to target.
func (s *AttributeSet) Get(source, target string) (AttributeDescriptor, bool) {
	d, ok := s.items[source+"\x00"+target]
	return d, ok
}

// Len returns the number of descriptors.
func (s *AttributeSet) Len() int {
	return len(s.items)
}

// Values returns the descriptors in first-registration order.
func (s *AttributeSet) Values() []AttributeDescriptor {
	out := make([]AttributeDescriptor, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.items[key])
	}
	return out
}

// FolderAssignment scopes extra attribute mappings to pages in given folders.
type FolderAssignment struct {
	ID          string
	Order       int
	Folders     []string
	Descriptors []AttributeDescriptor
}

// Name returns the assignment id.
func (f *FolderAssignment) Name() string { return f.ID }

// Rank returns the merge order; higher ranks are merged later and win.
func (f *FolderAssignment) Rank() int { return f.Order }

// Applies reports whether any of folders is covered by the assignment.
func (f *FolderAssignment) Applies(folders []string) bool {
	for _, want := range f.Folders {
		for _, got := range folders {
			if strings.TrimSpace(got) == want {
				return true
			}
		}
	}
	return false
}
