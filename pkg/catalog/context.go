package catalog

import (
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Context bundles the catalog and link index of one render request.
// It is read-only once constructed.
type Context struct {
	Catalog *Catalog
	Links   *Index
	Diag    *diag.Collector
}

// NewContext builds the catalog and link index for doc. The only error is
// a duplicate node id.
func NewContext(doc *mav.Document, c *diag.Collector) (*Context, error) {
	cat, err := Build(doc.Nodes, c)
	if err != nil {
		return nil, err
	}
	return &Context{
		Catalog: cat,
		Links:   NewIndex(cat, doc.Links, c),
		Diag:    c,
	}, nil
}
