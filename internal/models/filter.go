package models

import "time"

// StatusFilter selects todos by completion state
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// Valid reports whether s is a known status filter. The zero value is
// treated as StatusAll by the query engine.
func (s StatusFilter) Valid() bool {
	switch s {
	case "", StatusAll, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

// SortField names the todo attribute results are ordered by
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
)

// Valid reports whether f is a known sort field
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByTitle, SortByPriority:
		return true
	default:
		return false
	}
}

// SortDirection is the order of sorted results
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid reports whether d is a known sort direction
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// FilterOptions is a conjunction of predicates over the todo collection.
// A zero-value field means "no constraint on this dimension". A todo
// matches only if it satisfies every specified predicate; within Tags,
// membership of any one tag suffices.
type FilterOptions struct {
	Status      StatusFilter `json:"status,omitempty"`
	Priority    Priority     `json:"priority,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Search      string       `json:"search,omitempty"`
	CreatedFrom *time.Time   `json:"createdFrom,omitempty"`
	CreatedTo   *time.Time   `json:"createdTo,omitempty"`
}

// IsZero reports whether no predicate is set
func (f FilterOptions) IsZero() bool {
	return (f.Status == "" || f.Status == StatusAll) &&
		f.Priority == "" &&
		len(f.Tags) == 0 &&
		f.Search == "" &&
		f.CreatedFrom == nil &&
		f.CreatedTo == nil
}
