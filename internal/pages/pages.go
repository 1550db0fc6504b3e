// Package pages provides page-level views over CMS resources.
//
// A page is a resource with a jcr:content child that holds its properties.
// Inherited lookups walk up the hierarchy and take the first ancestor whose
// content defines the property.
package pages

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// ContentNode is the name of the child holding page properties.
const ContentNode = "jcr:content"

// Well-known page properties.
const (
	PropTitle        = "jcr:title"
	PropDescription  = "jcr:description"
	PropLanguage     = "jcr:language"
	PropResourceType = "sling:resourceType"
	PropOnTime       = "onTime"
	PropOffTime      = "offTime"
	PropInstanceID   = "dwreInstanceId"
	PropSite         = "dwreSite"
	PropLibrary      = "dwreLibrary"
	PropFolder       = "dwreFolder"
	PropTemplatePath = "dwreTemplatePath"
)

// Content returns the jcr:content child of r, or nil.
func Content(r driven.Resource) driven.Resource {
	if r == nil {
		return nil
	}
	return r.Child(ContentNode)
}

// IsPage reports whether r has a content child.
func IsPage(r driven.Resource) bool {
	return Content(r) != nil
}

// Properties returns the properties a page or node defines itself.
func Properties(r driven.Resource) domain.Properties {
	if r == nil {
		return domain.Properties{}
	}
	if c := Content(r); c != nil {
		if p := c.Properties(); p != nil {
			return p
		}
		return domain.Properties{}
	}
	if p := r.Properties(); p != nil {
		return p
	}
	return domain.Properties{}
}

// Inherited returns the first value of name found on r or its ancestors.
func Inherited(r driven.Resource, name string) (any, bool) {
	for node := r; node != nil; node = node.Parent() {
		if v, ok := Properties(node).Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// InheritedProperties is a single-entry view for typed access to an
// inherited value.
func InheritedProperties(r driven.Resource, name string) domain.Properties {
	v, ok := Inherited(r, name)
	if !ok {
		return domain.Properties{}
	}
	return domain.Properties{name: v}
}

// InheritedString returns the inherited value of name as a string.
func InheritedString(r driven.Resource, name string) string {
	return InheritedProperties(r, name).String(name)
}

// InheritedStringOr returns the inherited string, or def when blank.
func InheritedStringOr(r driven.Resource, name, def string) string {
	return InheritedProperties(r, name).StringOr(name, def)
}

// FindDescendant returns the first descendant of r, depth first, whose
// resource type matches.
func FindDescendant(r driven.Resource, resourceType string) driven.Resource {
	if r == nil {
		return nil
	}
	for _, child := range r.Children() {
		if child.IsResourceType(resourceType) {
			return child
		}
		if found := FindDescendant(child, resourceType); found != nil {
			return found
		}
	}
	return nil
}
