package payload

import "github.com/oullin/profilesync/pkg/iri"

// CatalogItem is one entry of the read-only reference data: occupations and
// the provinces/cities/districts taxonomy.
type CatalogItem struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Province iri.Ref `json:"province"`
	City     iri.Ref `json:"city"`
}
