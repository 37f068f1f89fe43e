package models

// TodoStats is derived from the full todo collection on demand and never
// persisted. CompletionRate is 0-100 with a zero-total guard.
type TodoStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Active         int     `json:"active"`
	CompletionRate float64 `json:"completionRate"`
	TodayAdded     int     `json:"todayAdded"`
	OverdueCount   int     `json:"overdueCount"`
}

// TagStats maps each tag to the number of todos carrying it, counted
// across all records independent of any active filter
type TagStats map[string]int

// PriorityStats maps each priority to the number of todos holding it
type PriorityStats map[Priority]int
