// Package sqlgen renders the fixed catalog of merchant cleanup statements.
//
// Every statement is an UPDATE restricted to "<key> IN <tuple>". The catalog
// rewrites book terminology in product titles and descriptions:
//
//	UPDATE products SET title = REPLACE(title, 'Edition', 'Version') WHERE id IN (3, 5);
//
// Values are spliced in literally. Nothing is escaped or validated.
package sqlgen

import "fmt"

// Rule is one statement template in the catalog.
type Rule interface {
	// Statement renders the rule for table, restricted to keyColumn IN tuple.
	Statement(table, keyColumn, tuple string) string
}

// Replace substitutes every occurrence of Find with With in Column.
// REPLACE is case-sensitive, which is why the catalog lists casing variants
// as separate rules.
type Replace struct {
	Column string
	Find   string
	With   string
}

// Statement implements Rule.
func (r Replace) Statement(table, keyColumn, tuple string) string {
	return fmt.Sprintf("UPDATE %s SET %s = REPLACE(%s, '%s', '%s') WHERE %s IN %s;",
		table, r.Column, r.Column, r.Find, r.With, keyColumn, tuple)
}

// Append concatenates Suffix onto Column for rows whose Column does not
// already contain Guard.
type Append struct {
	Column string
	Suffix string
	Guard  string
}

// Statement implements Rule.
func (a Append) Statement(table, keyColumn, tuple string) string {
	return fmt.Sprintf("UPDATE %s SET %s = %s || '%s' WHERE %s IN %s AND %s NOT LIKE '%%%s%%';",
		table, a.Column, a.Column, a.Suffix, keyColumn, tuple, a.Column, a.Guard)
}

// DefaultCatalog returns the twelve cleanup rules in execution order. Order
// matters: "This book" must be rewritten before the bare "book" rule would
// turn it into "This resource".
func DefaultCatalog() []Rule {
	return []Rule{
		// Titles
		Replace{Column: "title", Find: "Edition", With: "Version"},
		Replace{Column: "title", Find: "edition", With: "Version"},
		Replace{Column: "title", Find: "Book", With: "Educational Resource"},
		Append{Column: "title", Suffix: " - Interactive Educational Software", Guard: "Interactive Educational Software"},

		// Descriptions
		Replace{Column: "description", Find: "This book", With: "This interactive educational software"},
		Replace{Column: "description", Find: "this book", With: "this educational software"},
		Replace{Column: "description", Find: "the book", With: "the educational resource"},
		Replace{Column: "description", Find: "Book", With: "Resource"},
		Replace{Column: "description", Find: "book", With: "resource"},
		Replace{Column: "description", Find: "PDF", With: "Digital Resource"},
		Replace{Column: "description", Find: "eBook", With: "Digital Resource"},
		Replace{Column: "description", Find: "ebook", With: "digital resource"},
	}
}
