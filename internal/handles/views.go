package handles

import (
	"sort"
	"strings"
)

// Head returns the first n rows of the handle named name.
func (r *Registry) Head(name string, n int) ([]map[string]string, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, ErrNoSuchHandle{Name: name}
	}
	if n <= 0 || n > len(h.Rows) {
		n = len(h.Rows)
	}
	return h.Rows[:n], nil
}

// Sample returns up to n rows spread evenly across the handle, so a caller
// gets a representative cut rather than only the first rows.
func (r *Registry) Sample(name string, n int) ([]map[string]string, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, ErrNoSuchHandle{Name: name}
	}
	total := len(h.Rows)
	if n <= 0 || n >= total {
		return h.Rows, nil
	}
	stride := float64(total) / float64(n)
	out := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		idx := int(float64(i) * stride)
		out = append(out, h.Rows[idx])
	}
	return out, nil
}

// ValuePredicate tests one column value of a row.
type ValuePredicate func(value string) bool

// EqualsPredicate and ContainsPredicate are the predicate_over_value forms
// the tool surface exposes to callers (exact match and substring match).
func EqualsPredicate(want string) ValuePredicate {
	return func(value string) bool { return value == want }
}

func ContainsPredicate(substr string) ValuePredicate {
	return func(value string) bool { return strings.Contains(value, substr) }
}

// Where filters the handle's rows to those whose column value satisfies
// pred.
func (r *Registry) Where(name, column string, pred ValuePredicate) ([]map[string]string, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, ErrNoSuchHandle{Name: name}
	}
	var out []map[string]string
	for _, row := range h.Rows {
		if pred(row[column]) {
			out = append(out, row)
		}
	}
	return out, nil
}

// GroupEntry is one bucket of a res_group result.
type GroupEntry struct {
	Value string
	Count int
}

// Group buckets the handle's rows by their value in byColumn, returning
// buckets ordered by descending count.
func (r *Registry) Group(name, byColumn string) ([]GroupEntry, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, ErrNoSuchHandle{Name: name}
	}
	counts := map[string]int{}
	var order []string
	for _, row := range h.Rows {
		v := row[byColumn]
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	entries := make([]GroupEntry, 0, len(order))
	for _, v := range order {
		entries = append(entries, GroupEntry{Value: v, Count: counts[v]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries, nil
}

// Distinct returns the distinct values seen in column, in first-seen order.
func (r *Registry) Distinct(name, column string) ([]string, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, ErrNoSuchHandle{Name: name}
	}
	seen := map[string]bool{}
	var out []string
	for _, row := range h.Rows {
		v := row[column]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}
