package query

import "github.com/kerfoot/uframe-m2m/pkg/uframe"

// Resolve returns the catalog instruments containing pattern as a
// substring, in catalog order. A fully-qualified reference designator
// matches exactly itself; an empty result is not an error.
func Resolve(catalog uframe.Catalog, pattern string) []string {
	return catalog.Match(pattern)
}
