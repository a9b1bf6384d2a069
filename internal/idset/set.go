// Package idset holds the distinct product identifiers collected from an
// export and renders them as the parenthesized tuple embedded in each
// generated statement.
//
// A Set remembers first-seen order only for debugging; every rendering is
// sorted, so output depends on the set's contents and never on input order.
package idset

import (
	"sort"
	"strings"
)

// Order selects how IDs are sorted when rendered.
type Order int

const (
	// Lexical sorts by byte-wise string comparison, so "10" precedes "9".
	Lexical Order = iota
	// Numeric sorts digit strings by integer value. Callers are expected to
	// have admitted only IDs for which IsNumeric is true.
	Numeric
)

// String returns the lowercase name of the order.
func (o Order) String() string {
	switch o {
	case Numeric:
		return "numeric"
	default:
		return "lexical"
	}
}

// Set is a deduplicated collection of ID strings. The zero value is not
// usable; construct with New.
type Set struct {
	seen  map[string]struct{}
	first []string
}

// New returns an empty Set.
func New() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Of returns a Set containing ids.
func Of(ids ...string) *Set {
	s := New()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was not already present.
func (s *Set) Add(id string) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.first = append(s.first, id)
	return true
}

// Has reports whether id is in the set.
func (s *Set) Has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of distinct IDs.
func (s *Set) Len() int { return len(s.first) }

// Sorted returns a new slice of the IDs in the requested order.
func (s *Set) Sorted(order Order) []string {
	out := make([]string, len(s.first))
	copy(out, s.first)
	switch order {
	case Numeric:
		sort.Slice(out, func(i, j int) bool { return lessNumeric(out[i], out[j]) })
	default:
		sort.Strings(out)
	}
	return out
}

// Render returns the IDs joined by ", " inside parentheses, e.g. "(3, 5)".
// An empty set renders as "()".
func (s *Set) Render(order Order) string {
	return "(" + strings.Join(s.Sorted(order), ", ") + ")"
}

// IsNumeric reports whether id is a non-empty run of ASCII digits.
func IsNumeric(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// lessNumeric compares digit strings of any length by value. Equal values
// with different zero padding fall back to string order to stay total.
func lessNumeric(a, b string) bool {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	if ta != tb {
		return ta < tb
	}
	return a < b
}
