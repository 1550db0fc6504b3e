package services

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// FolderAttributes resolves folder-scoped attribute mapping overrides.
type FolderAttributes struct {
	*RankedRegistry[*domain.FolderAssignment]
}

// NewFolderAttributes creates a lookup holding assignments.
func NewFolderAttributes(assignments ...*domain.FolderAssignment) *FolderAttributes {
	return &FolderAttributes{RankedRegistry: NewRankedRegistry(assignments...)}
}

// Descriptors returns the mappings of every assignment covering folders,
// in ascending rank so later assignments override earlier ones.
func (f *FolderAttributes) Descriptors(folders []string) []domain.AttributeDescriptor {
	if len(folders) == 0 {
		return nil
	}
	var out []domain.AttributeDescriptor
	for _, a := range f.Snapshot() {
		if a.Applies(folders) {
			out = append(out, a.Descriptors...)
		}
	}
	return out
}

// Merge combines global mappings with the folder overrides for folders.
// A folder mapping replaces a global one with the same source and target.
func (f *FolderAttributes) Merge(global []domain.AttributeDescriptor, folders []string) *domain.AttributeSet {
	set := domain.NewAttributeSet(global...)
	if f != nil {
		set.Add(f.Descriptors(folders)...)
	}
	return set
}
