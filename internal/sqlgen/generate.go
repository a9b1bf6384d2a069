package sqlgen

import (
	"merchantcleanup/internal/idset"
)

// Options controls rendering. Zero values select the products/id defaults
// and a lexical ID order.
type Options struct {
	Table     string
	KeyColumn string
	Order     idset.Order

	// Catalog overrides DefaultCatalog when non-nil.
	Catalog []Rule
}

// Generate renders one statement per catalog rule, in catalog order, all
// sharing the same ID tuple. An empty set still yields every statement with
// "IN ()", which matches no rows.
func Generate(ids *idset.Set, opt Options) []string {
	table := opt.Table
	if table == "" {
		table = "products"
	}
	key := opt.KeyColumn
	if key == "" {
		key = "id"
	}
	catalog := opt.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	tuple := ids.Render(opt.Order)
	out := make([]string, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r.Statement(table, key, tuple))
	}
	return out
}
