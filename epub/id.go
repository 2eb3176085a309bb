package epub

import "regexp"

var idSeparators = regexp.MustCompile(`[./_-]+`)

// DeriveID turns a root-relative resource path into a manifest identifier.
// Every run of path separators, dots, underscores and hyphens collapses into
// a single hyphen, so "epub/content/chapter-1.xhtml" and
// "epub//content//chapter-1.xhtml" both become "epub-content-chapter-1-xhtml".
//
// DeriveID gives no collision guarantee. Callers must avoid paths that only
// differ in separator characters.
func DeriveID(p string) string {
	return idSeparators.ReplaceAllString(p, "-")
}
