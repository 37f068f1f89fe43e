// Package stats derives aggregate statistics from the full, unfiltered
// todo collection. Everything here is recomputed on demand and never
// persisted; consumers combine these with filtered views only for display.
package stats

import (
	"math"
	"time"

	"github.com/tidytask/tidytask/internal/models"
)

// Compute derives TodoStats as of now. The completion rate is a 0-100
// percentage rounded to one decimal, exactly 0 for an empty collection.
// todayAdded uses the local calendar day boundary, not a rolling 24h
// window. overdueCount counts incomplete todos whose due day is before
// now's day; due dates carry day granularity, so a todo due today is not
// overdue yet.
func Compute(todos []*models.Todo, now time.Time) models.TodoStats {
	s := models.TodoStats{Total: len(todos)}

	today := dayOf(now)
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
			if t.DueDate != nil && dayOf(*t.DueDate).Before(today) {
				s.OverdueCount++
			}
		}
		if dayOf(t.CreatedAt).Equal(today) {
			s.TodayAdded++
		}
	}

	if s.Total > 0 {
		rate := float64(s.Completed) / float64(s.Total) * 100
		s.CompletionRate = math.Round(rate*10) / 10
	}
	return s
}

// dayOf truncates a timestamp to its local calendar day
func dayOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// TagCounts returns the tag-frequency map across all todos
func TagCounts(todos []*models.Todo) models.TagStats {
	counts := make(models.TagStats)
	for _, t := range todos {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	return counts
}

// PriorityCounts returns the priority-frequency map across all todos
func PriorityCounts(todos []*models.Todo) models.PriorityStats {
	counts := make(models.PriorityStats)
	for _, t := range todos {
		counts[t.Priority]++
	}
	return counts
}
