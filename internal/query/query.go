// Package query evaluates filter options against todo records and orders
// results. Evaluation is pure and recomputed from scratch on every call;
// no incremental index is maintained since collections stay in the
// thousands, not millions.
package query

import (
	"sort"
	"strings"

	"github.com/tidytask/tidytask/internal/models"
)

// Matches reports whether a todo satisfies every predicate in f.
// String search is a case-insensitive substring match over title,
// description and each tag; the tag filter matches if the todo's tags
// intersect the filter's tags; the date range over createdAt is inclusive
// on both ends.
func Matches(t *models.Todo, f models.FilterOptions) bool {
	switch f.Status {
	case models.StatusActive:
		if t.Completed {
			return false
		}
	case models.StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}

	if len(f.Tags) > 0 {
		any := false
		for _, tag := range f.Tags {
			if t.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if f.Search != "" && !matchesSearch(t, f.Search) {
		return false
	}

	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}

	return true
}

func matchesSearch(t *models.Todo, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), term) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Filter returns the todos matching f, preserving input order
func Filter(todos []*models.Todo, f models.FilterOptions) []*models.Todo {
	out := make([]*models.Todo, 0, len(todos))
	for _, t := range todos {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Less returns the comparison function for a sort field and direction.
// Title comparison is case-insensitive; priority uses high > medium > low.
func Less(field models.SortField, dir models.SortDirection) func(a, b *models.Todo) bool {
	asc := dir != models.SortDesc
	var less func(a, b *models.Todo) bool
	switch field {
	case models.SortByTitle:
		less = func(a, b *models.Todo) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case models.SortByPriority:
		less = func(a, b *models.Todo) bool {
			return a.Priority.Rank() < b.Priority.Rank()
		}
	default:
		less = func(a, b *models.Todo) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	if asc {
		return less
	}
	return func(a, b *models.Todo) bool { return less(b, a) }
}

// Sort returns a new slice ordered by field and direction. The sort is
// stable: todos with equal keys keep their relative input order.
func Sort(todos []*models.Todo, field models.SortField, dir models.SortDirection) []*models.Todo {
	out := make([]*models.Todo, len(todos))
	copy(out, todos)
	less := Less(field, dir)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Paginate slices todos at offset with an optional positive limit
func Paginate(todos []*models.Todo, offset, limit int) []*models.Todo {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(todos) {
		return []*models.Todo{}
	}
	out := todos[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
