package epub

import (
	"errors"
	"fmt"
)

// Resource-related errors.
var (
	ErrMediaTypeConflict  = errors.New("epub: resource registered with conflicting media types")
	ErrDanglingDependency = errors.New("epub: dependency on unregistered resource")
)

// Media types used by generated resources.
const (
	MediaTypeXHTML   = "application/xhtml+xml"
	MediaTypeCSS     = "text/css"
	MediaTypePackage = "application/oebps-package+xml"
	MediaTypeEPUB    = "application/epub+zip"
)

// Resource is a file destined for the package.
type Resource struct {
	// Path is the unique key and the archive entry name. It is
	// slash-separated and relative to the archive root.
	Path string

	// ID replaces the path-derived manifest identifier when non-empty.
	ID string

	MediaType string

	// Properties fills the manifest item's properties attribute (e.g. "nav").
	Properties string

	Content []byte

	// InSpine marks the resource as part of the default reading order.
	InSpine bool
}

// ManifestID returns the resource's identifier, deriving it from the path
// when no explicit ID was set.
func (r Resource) ManifestID() string {
	if r.ID != "" {
		return r.ID
	}
	return DeriveID(r.Path)
}

// merge folds later into r. Non-empty fields of later win, InSpine is sticky
// once set, and an empty media type on later keeps the stored one.
func (r Resource) merge(later Resource) (Resource, error) {
	if later.MediaType != "" && r.MediaType != "" && later.MediaType != r.MediaType {
		return r, fmt.Errorf("%w: %s is %s, cannot register as %s",
			ErrMediaTypeConflict, r.Path, r.MediaType, later.MediaType)
	}

	merged := r
	if later.MediaType != "" {
		merged.MediaType = later.MediaType
	}
	if later.ID != "" {
		merged.ID = later.ID
	}
	if later.Properties != "" {
		merged.Properties = later.Properties
	}
	if later.Content != nil {
		merged.Content = later.Content
	}
	merged.InSpine = r.InSpine || later.InSpine

	return merged, nil
}
