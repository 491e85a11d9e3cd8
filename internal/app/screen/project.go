package screen

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const (
	MsgEmptyCollection = "Nenhum registro cadastrado."
	MsgNoFilterMatch   = "Nenhum registro corresponde ao filtro selecionado."
)

// Query is the local UI state a view is derived from.
type Query struct {
	Term    string
	Status  string
	SortKey string
	Desc    bool
}

// Spec says how a collection is searched, filtered and sorted.
type Spec[T any] struct {
	// Fields are the strings searched by Term.
	Fields []func(T) string
	// Status, when set, is compared with Query.Status.
	Status   func(T) string
	SortKeys map[string]func(a, b T) int
	// DefaultSort is used when Query.SortKey is empty or unknown.
	DefaultSort string
}

// View is what a screen renders; Items never aliases the source slice.
type View[T any] struct {
	Items []T    `json:"items"`
	Total int    `json:"total"`
	Query Query  `json:"query"`
	Empty string `json:"empty,omitempty"`
}

// Matches reports whether any field contains term, ignoring case. An empty term matches.
func Matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Filter returns the items whose fields contain term. It never modifies items.
func Filter[T any](items []T, term string, fields ...func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		values := make([]string, len(fields))
		for i, f := range fields {
			values[i] = f(it)
		}
		if Matches(term, values...) {
			out = append(out, it)
		}
	}
	return out
}

// Project derives the rendered view from raw items and q.
func Project[T any](items []T, q Query, spec Spec[T]) View[T] {
	out := Filter(items, q.Term, spec.Fields...)
	filtered := q.Status != "" && spec.Status != nil
	if filtered {
		out = slices.DeleteFunc(out, func(it T) bool { return spec.Status(it) != q.Status })
	}

	q.SortKey = Sort(out, q.SortKey, q.Desc, spec)

	return View[T]{
		Items: out,
		Total: len(items),
		Query: q,
		Empty: EmptyMessage(len(items), len(out), q.Term, filtered),
	}
}

// Sort orders items in place by key, falling back to the spec's default key. It returns
// the key actually used.
func Sort[T any](items []T, key string, desc bool, spec Spec[T]) string {
	if _, ok := spec.SortKeys[key]; !ok {
		key = spec.DefaultSort
	}
	less, ok := spec.SortKeys[key]
	if !ok {
		return ""
	}
	slices.SortStableFunc(items, func(a, b T) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return key
}

// EmptyMessage distinguishes "nothing matched the search or the status filter" from
// "nothing exists".
func EmptyMessage(total, visible int, term string, filtered bool) string {
	switch {
	case visible > 0:
		return ""
	case total == 0:
		return MsgEmptyCollection
	case term != "":
		return fmt.Sprintf("Nenhum resultado para \"%s\".", term)
	case filtered:
		return MsgNoFilterMatch
	}
	return MsgEmptyCollection
}

// ByString builds a case-insensitive comparator on a string field.
func ByString[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// By builds a comparator on an ordered field.
func By[T any, K cmp.Ordered](field func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
}
